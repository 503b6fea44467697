package outbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/playerhire-backend/internal/testdb"
	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
)

func TestEmitWritesEnvelope(t *testing.T) {
	db := testdb.Open(t)
	svc := NewService(NewRepository(db), logger.Nop())
	orderID := uuid.New()
	actor := uuid.New()

	err := svc.Emit(context.Background(), db, DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Actor:         Actor(actor, "renter"),
		Data:          map[string]any{"order_id": orderID},
	})
	require.NoError(t, err)

	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "aggregate_id = ?", orderID).Error)
	assert.Nil(t, row.PublishedAt)

	var env PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &env))
	assert.Equal(t, 1, env.Version)
	assert.NotEmpty(t, env.EventID)
	require.NotNil(t, env.Actor)
	assert.Equal(t, actor, env.Actor.AccountID)
	assert.JSONEq(t, `{"order_id":"`+orderID.String()+`"}`, string(env.Data))
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{EventType: enums.EventOrderCreated, AggregateID: uuid.New()})
	assert.Error(t, err)
}

func TestEmitRejectsUnknownEventType(t *testing.T) {
	db := testdb.Open(t)
	svc := NewService(NewRepository(db), nil)
	err := svc.Emit(context.Background(), db, DomainEvent{EventType: "nope", AggregateID: uuid.New()})
	assert.Error(t, err)
}

func TestPublishLifecycle(t *testing.T) {
	db := testdb.Open(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Emit(ctx, db, DomainEvent{
			EventType:     enums.EventListingBanned,
			AggregateType: enums.AggregateListing,
			AggregateID:   uuid.New(),
			Data:          map[string]int{"n": i},
		}))
	}

	rows, err := repo.FetchUnpublishedForPublish(db, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.NoError(t, repo.MarkPublishedTx(db, rows[0].ID))
	require.NoError(t, repo.MarkFailedTx(db, rows[1].ID, assert.AnError))
	require.NoError(t, repo.MarkTerminalTx(db, rows[2].ID, assert.AnError, 5))

	pending, err := repo.FetchUnpublishedForPublish(db, 10, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, rows[1].ID, pending[0].ID)
	assert.Equal(t, 1, pending[0].AttemptCount)

	count, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
