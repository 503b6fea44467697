package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/metrics"
)

type fakeLock struct {
	held     map[string]bool
	name     string
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held[f.name] {
		return false, nil
	}
	f.held[f.name] = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	delete(f.held, f.name)
	f.releases++
	return nil
}

type fakeLocker struct {
	held  map[string]bool
	locks []*fakeLock
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: map[string]bool{}} }

func (f *fakeLocker) Lock(job string) Lock {
	l := &fakeLock{held: f.held, name: job}
	f.locks = append(f.locks, l)
	return l
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Locker: newFakeLocker()})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Logger: logger.Nop()})
	assert.Error(t, err)

	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Locker: newFakeLocker()})
	require.NoError(t, err)
	assert.Equal(t, defaultInterval, svc.interval)
}

func TestRunCycleRunsEveryJobEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	failing := &testJob{name: "fail", err: errors.New("boom")}
	reg := prometheus.NewRegistry()
	m := metrics.NewCronJobMetrics(reg)
	locker := newFakeLocker()
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(ok, failing),
		Locker:   locker,
		Metrics:  m,
	})
	require.NoError(t, err)

	svc.runCycle(context.Background())

	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, failing.runs)
	require.Len(t, locker.locks, 2)
	for _, l := range locker.locks {
		assert.Equal(t, 1, l.releases)
	}
	assert.Empty(t, locker.held)

	count, err := testutil.GatherAndCount(reg, "playerhire_cron_job_failure_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunCycleSkipsJobsHeldElsewhere(t *testing.T) {
	job := &testJob{name: "order-reconcile"}
	locker := newFakeLocker()
	locker.held["order-reconcile"] = true
	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: NewRegistry(job), Locker: locker})
	require.NoError(t, err)

	svc.runCycle(context.Background())
	assert.Zero(t, job.runs)

	delete(locker.held, "order-reconcile")
	svc.runCycle(context.Background())
	assert.Equal(t, 1, job.runs)
}

func TestRunCycleHonorsCadence(t *testing.T) {
	everyTick := &testJob{name: "tick"}
	daily := &testJob{name: "daily"}
	registry := NewRegistry(everyTick)
	registry.RegisterEvery(daily, 24*time.Hour)

	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: registry, Locker: newFakeLocker()})
	require.NoError(t, err)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.runCycle(context.Background())
	now = now.Add(time.Minute)
	svc.runCycle(context.Background())
	assert.Equal(t, 2, everyTick.runs)
	assert.Equal(t, 1, daily.runs)

	now = now.Add(24 * time.Hour)
	svc.runCycle(context.Background())
	assert.Equal(t, 2, daily.runs)
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "tick"}
	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: NewRegistry(job), Locker: newFakeLocker(), Interval: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = svc.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, job.runs, "canceled before the first cycle")
}
