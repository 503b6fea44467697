package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/playerhire-backend/internal/testdb"
	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/pagination"
)

type fakeRepository struct {
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, error)
	markReadFn    func(ctx context.Context, accountID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, accountID uuid.UUID, now time.Time) (int64, error)
	unread        int64
}

func (f *fakeRepository) WithTx(*gorm.DB) Repository { return f }

func (f *fakeRepository) CreateMany(context.Context, []models.Notification) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, accountID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, accountID, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, accountID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, accountID, now)
	}
	return 0, nil
}

func (f *fakeRepository) CountUnread(context.Context, uuid.UUID) (int64, error) {
	return f.unread, nil
}

func (f *fakeRepository) DeleteReadBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestServiceListTrimsAndReturnsCursor(t *testing.T) {
	accountID := uuid.New()
	base := time.Now().UTC()
	rows := make([]models.Notification, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, models.Notification{ID: uuid.New(), AccountID: accountID, CreatedAt: base.Add(-time.Duration(i) * time.Minute)})
	}
	repo := &fakeRepository{
		unread: 7,
		listFn: func(_ context.Context, params listNotificationsParams) ([]models.Notification, error) {
			assert.Equal(t, accountID, params.AccountID)
			assert.Equal(t, 2, params.Limit)
			assert.True(t, params.UnreadOnly)
			return rows, nil
		},
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	res, err := svc.List(context.Background(), ListParams{AccountID: accountID, Limit: 2, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(7), res.UnreadCount)
	require.NotEmpty(t, res.Cursor)

	cursor, err := pagination.ParseCursor(res.Cursor)
	require.NoError(t, err)
	assert.Equal(t, rows[1].ID, cursor.ID)
}

func TestServiceListValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), ListParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.List(context.Background(), ListParams{AccountID: uuid.New(), Cursor: "%%%"})
	assert.Error(t, err)
}

func TestServiceMarkRead(t *testing.T) {
	accountID, notificationID := uuid.New(), uuid.New()
	repo := &fakeRepository{
		markReadFn: func(_ context.Context, acct, id uuid.UUID, _ time.Time) (notificationMarkResult, error) {
			if acct == accountID && id == notificationID {
				return notificationMarkResult{Updated: true, Found: true}, nil
			}
			return notificationMarkResult{}, nil
		},
	}
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, svc.MarkRead(ctx, accountID, notificationID))

	err = svc.MarkRead(ctx, uuid.New(), notificationID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "another account's notification looks missing")

	err = svc.MarkRead(ctx, accountID, uuid.Nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceMarkAllReadWrapsRepoErrors(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(context.Context, uuid.UUID, time.Time) (int64, error) {
			return 0, errors.New("db down")
		},
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.MarkAllRead(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestRepositoryLifecycle(t *testing.T) {
	db := testdb.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()
	acct := testdb.MustAccount(t, db, enums.AccountRoleRenter, 0)
	eventID := uuid.New()

	rows := []models.Notification{
		{AccountID: acct.ID, EventID: &eventID, Type: enums.NotificationRentConfirmed, Title: "a", Message: "a"},
		{AccountID: acct.ID, Type: enums.NotificationTopup, Title: "b", Message: "b"},
	}
	created, err := repo.CreateMany(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), created)

	dup, err := repo.CreateMany(ctx, []models.Notification{
		{AccountID: acct.ID, EventID: &eventID, Type: enums.NotificationRentConfirmed, Title: "a", Message: "a"},
	})
	require.NoError(t, err)
	assert.Zero(t, dup, "redelivered events do not duplicate notifications")

	unread, err := repo.CountUnread(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	readAt := time.Now().UTC().Add(-48 * time.Hour)
	marked, err := repo.MarkAllRead(ctx, acct.ID, readAt)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	deleted, err := repo.DeleteReadBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	left, err := repo.List(ctx, listNotificationsParams{AccountID: acct.ID, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, left)
}
