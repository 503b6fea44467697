package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/metrics"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&testModel{}))
	return conn
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	client := NewFromGorm(conn, opts...)
	client.sleep = func(context.Context, time.Duration) error { return nil }
	return client, conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client, conn := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}))

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, conn.Model(&testModel{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestWithSerializableTx_RetriesSerializationFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	client, conn := newTestClient(t, WithTxMetrics(metrics.NewTxMetrics(reg)))

	attempts := 0
	err := client.WithSerializableTx(context.Background(), func(tx *gorm.DB) error {
		attempts++
		if err := tx.Create(&testModel{Name: fmt.Sprintf("attempt-%d", attempts)}).Error; err != nil {
			return err
		}
		if attempts < 3 {
			return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)

	var rows []testModel
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "attempt-3", rows[0].Name)
}

func TestWithSerializableTx_ExhaustsIntoConcurrencyError(t *testing.T) {
	client, _ := newTestClient(t, WithRetryPolicy(RetryPolicy{MaxAttempts: 2}))

	attempts := 0
	err := client.WithSerializableTx(context.Background(), func(tx *gorm.DB) error {
		attempts++
		return &pgconn.PgError{Code: "40P01"}
	})
	require.Equal(t, 2, attempts)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConcurrency))
	require.True(t, pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).Retryable)
}

func TestWithSerializableTx_DoesNotRetryDomainErrors(t *testing.T) {
	client, _ := newTestClient(t)

	attempts := 0
	err := client.WithSerializableTx(context.Background(), func(tx *gorm.DB) error {
		attempts++
		return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "short")
	})
	require.Equal(t, 1, attempts)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance))
}

func TestErrorClassification(t *testing.T) {
	require.True(t, IsSerializationFailure(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "40001"})))
	require.False(t, IsSerializationFailure(&pgconn.PgError{Code: "23505"}))
	require.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "reward_records_listing_milestone_key"}, "reward_records_listing_milestone_key"))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "other"}, "reward_records_listing_milestone_key"))
	require.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: reviews.order_id"), ""))
	require.False(t, IsUniqueViolation(nil, ""))
	require.True(t, IsExclusionViolation(&pgconn.PgError{Code: "23P01", ConstraintName: "orders_no_overlap"}, "orders_no_overlap"))
	require.False(t, IsExclusionViolation(&pgconn.PgError{Code: "23505"}, ""))
}

func TestPing(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Ping(context.Background()))
}
