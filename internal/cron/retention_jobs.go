package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/playerhire-backend/pkg/logger"
)

const defaultRetentionDays = 30

type notificationPurger interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type outboxPurger interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJobParams configure a purge job. Days <= 0 falls back to 30.
type RetentionJobParams struct {
	Logger *logger.Logger
	Days   int
}

// NewNotificationCleanupJob deletes notifications read more than Days ago.
func NewNotificationCleanupJob(params RetentionJobParams, repo notificationPurger) (Job, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return newRetentionJob("notification-cleanup", params, repo.DeleteReadBefore)
}

// NewOutboxRetentionJob deletes outbox rows published more than Days ago.
// Unpublished and dead-lettered rows are never touched.
func NewOutboxRetentionJob(params RetentionJobParams, repo outboxPurger) (Job, error) {
	if repo == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	return newRetentionJob("outbox-retention", params, repo.DeletePublishedBefore)
}

func newRetentionJob(name string, params RetentionJobParams, purge func(context.Context, time.Time) (int64, error)) (*retentionJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	days := params.Days
	if days <= 0 {
		days = defaultRetentionDays
	}
	return &retentionJob{
		name:  name,
		logg:  params.Logger,
		purge: purge,
		days:  days,
		now:   time.Now,
	}, nil
}

type retentionJob struct {
	name  string
	logg  *logger.Logger
	purge func(context.Context, time.Time) (int64, error)
	days  int
	now   func() time.Time
}

func (j *retentionJob) Name() string { return j.name }

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.days)
	deleted, err := j.purge(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.days,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, j.name+" complete")
	return nil
}
