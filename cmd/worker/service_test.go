package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/playerhire-backend/pkg/logger"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type fakeSubscriptions struct{ err error }

func (f fakeSubscriptions) EnsureSubscriptions(context.Context) error { return f.err }

type fakeConsumer struct {
	runs int
	err  error
}

func (f *fakeConsumer) Run(context.Context) error {
	f.runs++
	return f.err
}

func healthy() pingFunc { return func(context.Context) error { return nil } }

func TestRunStartsConsumerWhenReady(t *testing.T) {
	consumer := &fakeConsumer{err: context.Canceled}
	svc, err := NewService(ServiceParams{
		Logger:        logger.Nop(),
		DB:            healthy(),
		Redis:         healthy(),
		Subscriptions: fakeSubscriptions{},
		Consumer:      consumer,
	})
	require.NoError(t, err)

	err = svc.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, consumer.runs)
}

func TestRunStopsOnMissingSubscription(t *testing.T) {
	consumer := &fakeConsumer{}
	svc, err := NewService(ServiceParams{
		Logger:        logger.Nop(),
		DB:            healthy(),
		Redis:         healthy(),
		Subscriptions: fakeSubscriptions{err: errors.New(`subscription "orders-notifications" does not exist`)},
		Consumer:      consumer,
	})
	require.NoError(t, err)

	err = svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pubsub subscriptions check failed")
	assert.Zero(t, consumer.runs)
}

func TestRunStopsOnDatabaseFailure(t *testing.T) {
	consumer := &fakeConsumer{}
	svc, err := NewService(ServiceParams{
		Logger:        logger.Nop(),
		DB:            pingFunc(func(context.Context) error { return errors.New("connection refused") }),
		Redis:         healthy(),
		Subscriptions: fakeSubscriptions{},
		Consumer:      consumer,
	})
	require.NoError(t, err)

	assert.Error(t, svc.Run(context.Background()))
	assert.Zero(t, consumer.runs)
}

func TestNewServiceRequiresConsumer(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: logger.Nop(), DB: healthy(), Redis: healthy(), Subscriptions: fakeSubscriptions{}})
	assert.Error(t, err)
}
