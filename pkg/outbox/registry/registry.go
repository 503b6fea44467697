// Package registry maps outbox event types to their topic and payload schema.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/playerhire-backend/pkg/config"
	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate, topic and payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() any
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// NewEventRegistry registers every event the services emit. Order, listing,
// review and reward events go to the orders topic; wallet events to the wallet topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.OrdersTopic == "" {
		return nil, fmt.Errorf("orders topic is required")
	}
	if cfg.WalletTopic == "" {
		return nil, fmt.Errorf("wallet topic is required")
	}
	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}

	orderEvent := func() any { return &payloads.OrderEvent{} }
	for _, eventType := range []enums.OutboxEventType{
		enums.EventOrderCreated,
		enums.EventOrderConfirmed,
		enums.EventOrderRejected,
		enums.EventOrderCanceled,
		enums.EventOrderCompleted,
	} {
		reg.register(EventDescriptor{
			EventType:      eventType,
			AggregateType:  enums.AggregateOrder,
			Topic:          cfg.OrdersTopic,
			PayloadFactory: orderEvent,
		})
	}
	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventOrderReminder,
			AggregateType:  enums.AggregateOrder,
			Topic:          cfg.OrdersTopic,
			PayloadFactory: func() any { return &payloads.OrderReminderEvent{} },
		},
		{
			EventType:      enums.EventListingBanned,
			AggregateType:  enums.AggregateListing,
			Topic:          cfg.OrdersTopic,
			PayloadFactory: func() any { return &payloads.ListingBannedEvent{} },
		},
		{
			EventType:      enums.EventListingUnbanned,
			AggregateType:  enums.AggregateListing,
			Topic:          cfg.OrdersTopic,
			PayloadFactory: func() any { return &payloads.ListingUnbannedEvent{} },
		},
		{
			EventType:      enums.EventReviewSubmitted,
			AggregateType:  enums.AggregateReview,
			Topic:          cfg.OrdersTopic,
			PayloadFactory: func() any { return &payloads.ReviewSubmittedEvent{} },
		},
		{
			EventType:      enums.EventRewardGranted,
			AggregateType:  enums.AggregateListing,
			Topic:          cfg.OrdersTopic,
			PayloadFactory: func() any { return &payloads.RewardGrantedEvent{} },
		},
		{
			EventType:      enums.EventWalletTopupSettled,
			AggregateType:  enums.AggregateAccount,
			Topic:          cfg.WalletTopic,
			PayloadFactory: func() any { return &payloads.WalletEvent{} },
		},
		{
			EventType:      enums.EventWalletWithdrawn,
			AggregateType:  enums.AggregateAccount,
			Topic:          cfg.WalletTopic,
			PayloadFactory: func() any { return &payloads.WalletEvent{} },
		},
	} {
		reg.register(desc)
	}
	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Topics lists every distinct topic the registry publishes to.
func (r *EventRegistry) Topics() []string {
	seen := map[string]struct{}{}
	var topics []string
	for _, desc := range r.entries {
		if _, ok := seen[desc.Topic]; ok {
			continue
		}
		seen[desc.Topic] = struct{}{}
		topics = append(topics, desc.Topic)
	}
	return topics
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}
	envelope, payload, err := r.Decode(event.EventType, event.Payload)
	if err != nil {
		return nil, err
	}
	return &ResolvedEvent{Descriptor: desc, Envelope: *envelope, Payload: payload}, nil
}

// Decode parses a raw envelope of the given type. Consumers use it on
// message bodies received from Pub/Sub.
func (r *EventRegistry) Decode(eventType enums.OutboxEventType, raw []byte) (*outbox.PayloadEnvelope, any, error) {
	desc, ok := r.entries[eventType]
	if !ok {
		return nil, nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", eventType))
	}
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}
	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", eventType))
	}
	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", eventType, err))
	}
	return &envelope, payload, nil
}
