package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/playerhire-backend/internal/orders"
	"github.com/angelmondragon/playerhire-backend/internal/testdb"
	dbpkg "github.com/angelmondragon/playerhire-backend/pkg/db"
	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox/payloads"
)

type fakeEndedReader struct {
	orders     []models.Order
	err        error
	lastCutoff time.Time
	lastLimit  int
}

func (f *fakeEndedReader) ListConfirmedEndedBefore(_ context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	f.lastCutoff = cutoff
	f.lastLimit = limit
	return f.orders, f.err
}

type fakeCompleter struct {
	results map[uuid.UUID]error
	inputs  []orders.CompleteInput
}

func (f *fakeCompleter) Complete(_ context.Context, orderID uuid.UUID, input orders.CompleteInput) (*orders.OrderDTO, error) {
	f.inputs = append(f.inputs, input)
	if err := f.results[orderID]; err != nil {
		return nil, err
	}
	return &orders.OrderDTO{ID: orderID}, nil
}

func TestOrderReconcileJobCompletesDueOrders(t *testing.T) {
	done, raced, broken := uuid.New(), uuid.New(), uuid.New()
	reader := &fakeEndedReader{orders: []models.Order{{ID: done}, {ID: raced}, {ID: broken}}}
	completer := &fakeCompleter{results: map[uuid.UUID]error{
		raced:  pkgerrors.New(pkgerrors.CodeStateConflict, "order is COMPLETED"),
		broken: errors.New("db down"),
	}}
	job, err := NewOrderReconcileJob(OrderReconcileJobParams{Logger: logger.Nop(), Reader: reader, Orders: completer, BatchSize: 50})
	require.NoError(t, err)
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	job.(*orderReconcileJob).now = func() time.Time { return now }

	err = job.Run(context.Background())
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 1, "state conflicts count as already done")
	assert.Contains(t, errs[0].Error(), broken.String())

	assert.Equal(t, now, reader.lastCutoff)
	assert.Equal(t, 50, reader.lastLimit)
	require.Len(t, completer.inputs, 3)
	for _, in := range completer.inputs {
		assert.Equal(t, enums.TriggerScheduler, in.Trigger)
		assert.Equal(t, uuid.Nil, in.ActorID)
	}
}

func TestOrderReconcileJobNothingDue(t *testing.T) {
	job, err := NewOrderReconcileJob(OrderReconcileJobParams{Logger: logger.Nop(), Reader: &fakeEndedReader{}, Orders: &fakeCompleter{}})
	require.NoError(t, err)
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, defaultReconcileBatch, job.(*orderReconcileJob).batch)

	failing, err := NewOrderReconcileJob(OrderReconcileJobParams{Logger: logger.Nop(), Reader: &fakeEndedReader{err: errors.New("boom")}, Orders: &fakeCompleter{}})
	require.NoError(t, err)
	assert.Error(t, failing.Run(context.Background()))

	_, err = NewOrderReconcileJob(OrderReconcileJobParams{Logger: logger.Nop()})
	assert.Error(t, err)
}

func TestOrderReminderJobEmitsOncePerKind(t *testing.T) {
	db := testdb.Open(t)
	owner := testdb.MustAccount(t, db, enums.AccountRolePlayer, 0)
	renter := testdb.MustAccount(t, db, enums.AccountRoleRenter, 0)
	// One CONFIRMED hire per listing at a time.
	listing := func() uuid.UUID { return testdb.MustListing(t, db, owner.ID).ID }

	now := time.Now().UTC().Truncate(time.Minute)
	soon := testdb.MustOrder(t, db, renter.ID, listing(), now.Add(10*time.Minute), now.Add(70*time.Minute), 600, enums.OrderStatusConfirmed)
	ending := testdb.MustOrder(t, db, renter.ID, listing(), now.Add(-50*time.Minute), now.Add(5*time.Minute), 500, enums.OrderStatusConfirmed)
	testdb.MustOrder(t, db, renter.ID, listing(), now.Add(3*time.Hour), now.Add(4*time.Hour), 600, enums.OrderStatusConfirmed)
	testdb.MustOrder(t, db, renter.ID, soon.ListingID, now.Add(2*time.Hour), now.Add(3*time.Hour), 600, enums.OrderStatusPending)

	store := newMemoryRedis()
	job, err := NewOrderReminderJob(OrderReminderJobParams{
		Logger: logger.Nop(),
		DB:     dbpkg.NewFromGorm(db),
		Orders: orders.NewRepository(db),
		Outbox: outbox.NewService(outbox.NewRepository(db), logger.Nop()),
		Marker: store,
	})
	require.NoError(t, err)
	job.(*orderReminderJob).now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	var rows []models.OutboxEvent
	require.NoError(t, db.Where("event_type = ?", enums.EventOrderReminder).Find(&rows).Error)
	require.Len(t, rows, 2)

	kinds := map[uuid.UUID]string{}
	for _, row := range rows {
		var env outbox.PayloadEnvelope
		require.NoError(t, json.Unmarshal(row.Payload, &env))
		var data payloads.OrderReminderEvent
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, owner.ID, data.OwnerID)
		assert.Equal(t, renter.ID, data.RenterID)
		kinds[data.OrderID] = data.Kind
	}
	assert.Equal(t, payloads.ReminderUpcoming, kinds[soon.ID])
	assert.Equal(t, payloads.ReminderEnding, kinds[ending.ID])
	assert.Contains(t, store.values, "ph:reminder:upcoming:"+soon.ID.String())
}

type fakePurger struct {
	cutoff time.Time
	err    error
}

func (f *fakePurger) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func (f *fakePurger) DeletePublishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 7, f.err
}

func TestRetentionJobsUseCutoff(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	purger := &fakePurger{}

	cleanup, err := NewNotificationCleanupJob(RetentionJobParams{Logger: logger.Nop(), Days: 7}, purger)
	require.NoError(t, err)
	assert.Equal(t, "notification-cleanup", cleanup.Name())
	cleanup.(*retentionJob).now = func() time.Time { return now }
	require.NoError(t, cleanup.Run(context.Background()))
	assert.Equal(t, now.AddDate(0, 0, -7), purger.cutoff)

	retention, err := NewOutboxRetentionJob(RetentionJobParams{Logger: logger.Nop()}, purger)
	require.NoError(t, err)
	assert.Equal(t, "outbox-retention", retention.Name())
	retention.(*retentionJob).now = func() time.Time { return now }
	require.NoError(t, retention.Run(context.Background()))
	assert.Equal(t, now.AddDate(0, 0, -defaultRetentionDays), purger.cutoff)

	purger.err = errors.New("boom")
	assert.Error(t, retention.Run(context.Background()))

	_, err = NewOutboxRetentionJob(RetentionJobParams{Logger: logger.Nop()}, nil)
	assert.Error(t, err)
}
