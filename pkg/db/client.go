package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"time"

	"github.com/angelmondragon/playerhire-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/playerhire-backend/pkg/errors"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/metrics"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// RetryPolicy bounds the serializable retry loop.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func defaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: 20 * time.Millisecond, MaxDelay: time.Second}
}

// Client wraps the shared GORM connection.
type Client struct {
	conn    *gorm.DB
	retry   RetryPolicy
	metrics *metrics.TxMetrics
	logg    *logger.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option customises a Client.
type Option func(*Client)

// WithTxMetrics records retry outcomes for serializable transactions.
func WithTxMetrics(m *metrics.TxMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRetryPolicy overrides the serializable retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		if p.MaxAttempts > 0 {
			c.retry.MaxAttempts = p.MaxAttempts
		}
		if p.BaseDelay > 0 {
			c.retry.BaseDelay = p.BaseDelay
		}
		if p.MaxDelay > 0 {
			c.retry.MaxDelay = p.MaxDelay
		}
	}
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New boots a GORM client using the provided configuration.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", driverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		})
	case driverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	applyPoolSettings(sqlDB, cfg)

	policy := defaultRetryPolicy()
	if cfg.TxMaxRetries > 0 {
		policy.MaxAttempts = cfg.TxMaxRetries
	}
	policy.BaseDelay = cfg.TxRetryBase()

	client := NewFromGorm(conn, append([]Option{WithRetryPolicy(policy)}, opts...)...)
	client.logg = logg

	if logg != nil {
		logg.Info(ctx, "database connection established")
	}
	return client, nil
}

// NewFromGorm wraps an existing connection. Used by tests and tooling.
func NewFromGorm(conn *gorm.DB, opts ...Option) *Client {
	c := &Client{conn: conn, retry: defaultRetryPolicy(), sleep: sleepCtx}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func applyPoolSettings(sqlDB *sql.DB, cfg config.DBConfig) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts down the pooled connections.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx executes fn inside a transaction, rolling back on error/panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.runTx(ctx, nil, fn)
}

// WithSerializableTx runs fn at SERIALIZABLE isolation and replays it when the
// database aborts the transaction with a serialization failure or deadlock.
// fn may run more than once and must not perform side effects outside tx.
func (c *Client) WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var opts *sql.TxOptions
	if c.conn.Dialector.Name() != driverSQLite {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		lastErr = c.runTx(ctx, opts, fn)
		if lastErr == nil {
			if attempt > 1 {
				c.metrics.ObserveRetry(metrics.TxOutcomeRecovered)
			}
			return nil
		}
		if !IsSerializationFailure(lastErr) {
			return lastErr
		}
		c.metrics.ObserveRetry(metrics.TxOutcomeRetried)
		if attempt == c.retry.MaxAttempts {
			break
		}
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "attempt", attempt), "serializable transaction aborted, retrying")
		}
		if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
			return err
		}
	}

	c.metrics.ObserveRetry(metrics.TxOutcomeExhausted)
	return pkgerrors.Wrap(pkgerrors.CodeConcurrency, lastErr, "transaction aborted after repeated conflicts")
}

func (c *Client) runTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *gorm.DB) error) (err error) {
	var tx *gorm.DB
	if opts != nil {
		tx = c.conn.WithContext(ctx).Begin(opts)
	} else {
		tx = c.conn.WithContext(ctx).Begin()
	}
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.retry.BaseDelay << (attempt - 1)
	if c.retry.MaxDelay > 0 && delay > c.retry.MaxDelay {
		delay = c.retry.MaxDelay
	}
	jitter := time.Duration(rand.Int64N(int64(delay)/2 + 1))
	return delay/2 + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
