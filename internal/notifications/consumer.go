package notifications

import (
	"context"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox/idempotency"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox/registry"
)

const notificationConsumer = "notifications"

type sink interface {
	CreateMany(ctx context.Context, notifications []models.Notification) (int64, error)
}

type eventDecoder interface {
	Decode(eventType enums.OutboxEventType, raw []byte) (*outbox.PayloadEnvelope, any, error)
}

// Consumer turns domain events from Pub/Sub into in-app notifications.
type Consumer struct {
	repo          sink
	decoder       eventDecoder
	subscriptions []*pubsub.Subscriber
	idempotency   *idempotency.Manager
	logg          *logger.Logger
}

// NewConsumer builds a notification consumer over one or more subscriptions.
func NewConsumer(repo sink, decoder eventDecoder, manager *idempotency.Manager, logg *logger.Logger, subscriptions ...*pubsub.Subscriber) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if decoder == nil {
		return nil, fmt.Errorf("event decoder required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	for _, sub := range subscriptions {
		if sub == nil {
			return nil, fmt.Errorf("subscription required")
		}
	}
	return &Consumer{
		repo:          repo,
		decoder:       decoder,
		subscriptions: subscriptions,
		idempotency:   manager,
		logg:          logg,
	}, nil
}

// Run receives from every subscription until the context is canceled or one
// of them fails.
func (c *Consumer) Run(ctx context.Context) error {
	if len(c.subscriptions) == 0 {
		return fmt.Errorf("no subscriptions configured")
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, sub := range c.subscriptions {
		sub := sub
		g.Go(func() error {
			return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
				result := c.Handle(ctx, msg.ID, msg.Attributes["event_type"], msg.Data)
				if result.nack {
					msg.Nack()
					return
				}
				msg.Ack()
			})
		})
	}
	return g.Wait()
}

type processResult struct {
	ack     bool
	nack    bool
	created int64
}

// Handle processes one message body. Malformed or unknown events are acked so
// they do not loop; storage failures are nacked for redelivery.
func (c *Consumer) Handle(ctx context.Context, messageID, eventType string, data []byte) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	envelope, payload, err := c.decoder.Decode(enums.OutboxEventType(eventType), data)
	if err != nil {
		var nonRetryable registry.NonRetryableError
		if errors.As(err, &nonRetryable) {
			c.logg.Warn(logCtx, "dropping undecodable event: "+err.Error())
			return processResult{ack: true}
		}
		c.logg.Error(logCtx, "failed to decode event", err)
		return processResult{nack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}
	logCtx = c.logg.WithField(logCtx, "event_id", eventID.String())

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	rows, err := Build(enums.OutboxEventType(eventType), envelope, payload)
	if err != nil {
		c.logg.Error(logCtx, "notification mapping failed", err)
		return processResult{ack: true}
	}
	if len(rows) == 0 {
		c.logg.Debug(logCtx, "event produces no notifications")
		return processResult{ack: true}
	}

	created, err := c.repo.CreateMany(ctx, rows)
	if err != nil {
		c.logg.Error(logCtx, "notification insert failed", err)
		_ = c.idempotency.Release(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(c.logg.WithField(logCtx, "created", created), "notifications stored")
	return processResult{ack: true, created: created}
}
