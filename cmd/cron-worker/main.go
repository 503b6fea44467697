package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/playerhire-backend/internal/app"
	"github.com/angelmondragon/playerhire-backend/internal/cron"
	"github.com/angelmondragon/playerhire-backend/pkg/config"
	"github.com/angelmondragon/playerhire-backend/pkg/db"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/metrics"
	"github.com/angelmondragon/playerhire-backend/pkg/migrate"
	"github.com/angelmondragon/playerhire-backend/pkg/redis"
)

const retentionEvery = 24 * time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg, db.WithTxMetrics(metrics.NewTxMetrics(prometheus.DefaultRegisterer)))
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	services, err := app.Build(cfg, dbClient, prometheus.DefaultRegisterer, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	registry, err := buildRegistry(cfg, logg, dbClient, redisClient, services)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	locker, err := cron.NewRedisLocker(redisClient, cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron locker", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Locker:   locker,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"jobs":        len(registry.Jobs()),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

// buildRegistry runs reconcile and reminders every tick and the purges daily.
func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, services *app.Services) (*cron.Registry, error) {
	reconcile, err := cron.NewOrderReconcileJob(cron.OrderReconcileJobParams{
		Logger:    logg,
		Reader:    services.OrdersRepo,
		Orders:    services.Orders,
		BatchSize: cfg.Cron.ReconcileBatchSize,
	})
	if err != nil {
		return nil, err
	}

	reminder, err := cron.NewOrderReminderJob(cron.OrderReminderJobParams{
		Logger: logg,
		DB:     dbClient,
		Orders: services.OrdersRepo,
		Outbox: services.Outbox,
		Marker: redisClient,
		Window: cfg.Cron.ReminderWindow,
	})
	if err != nil {
		return nil, err
	}

	notificationCleanup, err := cron.NewNotificationCleanupJob(cron.RetentionJobParams{
		Logger: logg,
		Days:   cfg.Cron.NotificationRetentionDays,
	}, services.NotificationsRepo)
	if err != nil {
		return nil, err
	}

	outboxRetention, err := cron.NewOutboxRetentionJob(cron.RetentionJobParams{
		Logger: logg,
		Days:   cfg.Cron.OutboxRetentionDays,
	}, services.OutboxRepo)
	if err != nil {
		return nil, err
	}

	registry := cron.NewRegistry(reconcile, reminder)
	registry.RegisterEvery(notificationCleanup, retentionEvery)
	registry.RegisterEvery(outboxRetention, retentionEvery)
	return registry, nil
}
