package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/playerhire-backend/internal/orders"
	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
)

const defaultReconcileBatch = 200

type endedOrderReader interface {
	ListConfirmedEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

type orderCompleter interface {
	Complete(ctx context.Context, orderID uuid.UUID, input orders.CompleteInput) (*orders.OrderDTO, error)
}

// OrderReconcileJobParams configure the auto-completion sweep.
type OrderReconcileJobParams struct {
	Logger    *logger.Logger
	Reader    endedOrderReader
	Orders    orderCompleter
	BatchSize int
}

// NewOrderReconcileJob builds the job that completes CONFIRMED orders whose
// window has closed.
func NewOrderReconcileJob(params OrderReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultReconcileBatch
	}
	return &orderReconcileJob{
		logg:   params.Logger,
		reader: params.Reader,
		orders: params.Orders,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type orderReconcileJob struct {
	logg   *logger.Logger
	reader endedOrderReader
	orders orderCompleter
	batch  int
	now    func() time.Time
}

func (j *orderReconcileJob) Name() string { return "order-reconcile" }

// Run completes one batch per tick. Each order settles in its own transaction;
// an order another actor already closed is skipped.
func (j *orderReconcileJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	due, err := j.reader.ListConfirmedEndedBefore(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("list ended orders: %w", err)
	}

	var (
		errs      error
		completed int
		skipped   int
	)
	for _, order := range due {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, ctx.Err())
			break
		}
		_, err := j.orders.Complete(ctx, order.ID, orders.CompleteInput{Trigger: enums.TriggerScheduler})
		switch {
		case err == nil:
			completed++
		case pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
			skipped++
		default:
			errs = multierr.Append(errs, fmt.Errorf("complete order %s: %w", order.ID, err))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"due":       len(due),
		"completed": completed,
		"skipped":   skipped,
		"failed":    len(multierr.Errors(errs)),
	})
	if len(due) > 0 {
		j.logg.Info(logCtx, "order reconcile sweep complete")
	}
	return errs
}
