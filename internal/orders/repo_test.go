package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/playerhire-backend/internal/testdb"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

func TestTransitionStatusIsCompareAndSet(t *testing.T) {
	db := testdb.Open(t)
	repo := NewRepository(db)
	renter := testdb.MustAccount(t, db, enums.AccountRoleRenter, 0)
	owner := testdb.MustAccount(t, db, enums.AccountRolePlayer, 0)
	listing := testdb.MustListing(t, db, owner.ID)
	start := time.Now().UTC().Add(time.Hour)
	order := testdb.MustOrder(t, db, renter.ID, listing.ID, start, start.Add(time.Hour), 100, enums.OrderStatusPending)

	ok, err := repo.TransitionStatus(context.Background(), order.ID, enums.OrderStatusPending, enums.OrderStatusCanceled, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionStatus(context.Background(), order.ID, enums.OrderStatusPending, enums.OrderStatusRejected, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCanceled, reloaded.Status)
}

func TestSchedulerQueries(t *testing.T) {
	db := testdb.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()
	renter := testdb.MustAccount(t, db, enums.AccountRoleRenter, 0)
	owner := testdb.MustAccount(t, db, enums.AccountRolePlayer, 0)
	now := time.Now().UTC()

	mk := func(start, end time.Time, status enums.OrderStatus) {
		listing := testdb.MustListing(t, db, owner.ID)
		testdb.MustOrder(t, db, renter.ID, listing.ID, start, end, 100, status)
	}
	mk(now.Add(-3*time.Hour), now.Add(-2*time.Hour), enums.OrderStatusConfirmed)
	mk(now.Add(-2*time.Hour), now.Add(-time.Hour), enums.OrderStatusConfirmed)
	mk(now.Add(-2*time.Hour), now.Add(-time.Hour), enums.OrderStatusPending)
	mk(now.Add(-time.Hour), now.Add(10*time.Minute), enums.OrderStatusConfirmed)
	mk(now.Add(10*time.Minute), now.Add(2*time.Hour), enums.OrderStatusConfirmed)

	ended, err := repo.ListConfirmedEndedBefore(ctx, now, 0)
	require.NoError(t, err)
	require.Len(t, ended, 2)
	assert.True(t, ended[0].WindowEnd.Before(ended[1].WindowEnd))

	limited, err := repo.ListConfirmedEndedBefore(ctx, now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	starting, err := repo.ListConfirmedStartingBetween(ctx, now, now.Add(15*time.Minute))
	require.NoError(t, err)
	assert.Len(t, starting, 1)

	ending, err := repo.ListConfirmedEndingBetween(ctx, now, now.Add(15*time.Minute))
	require.NoError(t, err)
	assert.Len(t, ending, 1)
}

func TestLockLiveForListing(t *testing.T) {
	db := testdb.Open(t)
	repo := NewRepository(db)
	renter := testdb.MustAccount(t, db, enums.AccountRoleRenter, 0)
	owner := testdb.MustAccount(t, db, enums.AccountRolePlayer, 0)
	listing := testdb.MustListing(t, db, owner.ID)
	start := time.Now().UTC().Add(time.Hour)

	testdb.MustOrder(t, db, renter.ID, listing.ID, start, start.Add(time.Hour), 100, enums.OrderStatusPending)
	testdb.MustOrder(t, db, renter.ID, listing.ID, start.Add(2*time.Hour), start.Add(3*time.Hour), 100, enums.OrderStatusConfirmed)
	testdb.MustOrder(t, db, renter.ID, listing.ID, start.Add(4*time.Hour), start.Add(5*time.Hour), 100, enums.OrderStatusRejected)

	live, err := repo.LockLiveForListing(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.Len(t, live, 2)
}
