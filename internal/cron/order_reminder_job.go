package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox/payloads"
)

const defaultReminderWindow = 15 * time.Minute

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type reminderOrderReader interface {
	ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
	ListConfirmedEndingBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
	FindListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)
}

type reminderMarker interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	ReminderKey(orderID, kind string) string
}

// OrderReminderJobParams configure the upcoming/ending reminder job.
type OrderReminderJobParams struct {
	Logger *logger.Logger
	DB     txRunner
	Orders reminderOrderReader
	Outbox outboxEmitter
	Marker reminderMarker
	Window time.Duration
}

func NewOrderReminderJob(params OrderReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.Marker == nil {
		return nil, fmt.Errorf("reminder marker required")
	}
	window := params.Window
	if window <= 0 {
		window = defaultReminderWindow
	}
	return &orderReminderJob{
		logg:   params.Logger,
		db:     params.DB,
		orders: params.Orders,
		outbox: params.Outbox,
		marker: params.Marker,
		window: window,
		now:    time.Now,
	}, nil
}

type orderReminderJob struct {
	logg   *logger.Logger
	db     txRunner
	orders reminderOrderReader
	outbox outboxEmitter
	marker reminderMarker
	window time.Duration
	now    func() time.Time
}

func (j *orderReminderJob) Name() string { return "order-reminder" }

func (j *orderReminderJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	horizon := now.Add(j.window)

	starting, err := j.orders.ListConfirmedStartingBetween(ctx, now, horizon)
	if err != nil {
		return fmt.Errorf("list starting orders: %w", err)
	}
	ending, err := j.orders.ListConfirmedEndingBetween(ctx, now, horizon)
	if err != nil {
		return fmt.Errorf("list ending orders: %w", err)
	}

	var errs error
	sent := 0
	for _, o := range starting {
		ok, err := j.remind(ctx, o, payloads.ReminderUpcoming, o.WindowStart)
		errs = multierr.Append(errs, err)
		if ok {
			sent++
		}
	}
	for _, o := range ending {
		ok, err := j.remind(ctx, o, payloads.ReminderEnding, o.WindowEnd)
		errs = multierr.Append(errs, err)
		if ok {
			sent++
		}
	}
	if sent > 0 {
		j.logg.Info(j.logg.WithField(ctx, "reminders_sent", sent), "order reminders emitted")
	}
	return errs
}

// remind emits at most one reminder per (order, kind). The marker outlives the
// window so later ticks skip orders already reminded.
func (j *orderReminderJob) remind(ctx context.Context, order models.Order, kind string, at time.Time) (bool, error) {
	key := j.marker.ReminderKey(order.ID.String(), kind)
	first, err := j.marker.MarkOnce(ctx, key, 2*j.window)
	if err != nil {
		return false, fmt.Errorf("mark reminder %s: %w", order.ID, err)
	}
	if !first {
		return false, nil
	}

	listing, err := j.orders.FindListing(ctx, order.ListingID)
	if err == nil && listing == nil {
		err = fmt.Errorf("listing %s missing", order.ListingID)
	}
	if err == nil {
		err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
			return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderReminder,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data: payloads.OrderReminderEvent{
					OrderID:   order.ID,
					ListingID: order.ListingID,
					RenterID:  order.RenterAccountID,
					OwnerID:   listing.OwnerAccountID,
					Kind:      kind,
					At:        at.UTC(),
				},
			})
		})
	}
	if err != nil {
		_ = j.marker.Del(ctx, key)
		return false, fmt.Errorf("remind order %s: %w", order.ID, err)
	}
	return true, nil
}
