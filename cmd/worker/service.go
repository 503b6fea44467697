package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/playerhire-backend/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

type runner interface {
	Run(context.Context) error
}

type subscriptionChecker interface {
	EnsureSubscriptions(context.Context) error
}

// ServiceParams wires the notifications worker.
type ServiceParams struct {
	Logger        *logger.Logger
	DB            pinger
	Redis         pinger
	Subscriptions subscriptionChecker
	Consumer      runner
}

// Service checks its dependencies once and then runs the notification
// consumer until the context ends.
type Service struct {
	logg          *logger.Logger
	db            pinger
	redis         pinger
	subscriptions subscriptionChecker
	consumer      runner
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.Redis == nil:
		return nil, errors.New("redis client is required")
	case params.Subscriptions == nil:
		return nil, errors.New("pubsub client is required")
	case params.Consumer == nil:
		return nil, errors.New("notification consumer is required")
	}
	return &Service{
		logg:          params.Logger,
		db:            params.DB,
		redis:         params.Redis,
		subscriptions: params.Subscriptions,
		consumer:      params.Consumer,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"database", s.db.Ping},
		{"redis", s.redis.Ping},
		{"pubsub subscriptions", s.subscriptions.EnsureSubscriptions},
	}
	for _, check := range checks {
		if err := check.fn(ctx); err != nil {
			s.logg.Error(ctx, check.name+" check failed", err)
			return fmt.Errorf("%s check failed: %w", check.name, err)
		}
	}
	s.logg.Info(ctx, "worker dependencies ready")
	return nil
}

func (s *Service) Run(ctx context.Context) error {
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}
	err := s.consumer.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logg.Error(ctx, "notification consumer stopped unexpectedly", err)
	}
	return err
}
