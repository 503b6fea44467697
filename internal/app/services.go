// Package app assembles the domain services shared by the api and cron binaries.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/playerhire-backend/internal/availability"
	"github.com/angelmondragon/playerhire-backend/internal/bans"
	"github.com/angelmondragon/playerhire-backend/internal/notifications"
	"github.com/angelmondragon/playerhire-backend/internal/orders"
	"github.com/angelmondragon/playerhire-backend/internal/payments"
	"github.com/angelmondragon/playerhire-backend/internal/reviews"
	"github.com/angelmondragon/playerhire-backend/internal/rewards"
	"github.com/angelmondragon/playerhire-backend/internal/wallet"
	"github.com/angelmondragon/playerhire-backend/pkg/config"
	"github.com/angelmondragon/playerhire-backend/pkg/db"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	"github.com/angelmondragon/playerhire-backend/pkg/metrics"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox"
)

type Services struct {
	OrdersRepo        orders.Repository
	NotificationsRepo notifications.Repository
	OutboxRepo        *outbox.Repository
	Outbox            *outbox.Service

	Wallet        wallet.Service
	Orders        orders.Service
	Rewards       rewards.Service
	Reviews       reviews.Service
	Bans          bans.Service
	Payments      payments.Service
	Notifications notifications.Service
}

// Build wires every domain service against one database client. Escrow
// counters are registered on reg when it is non-nil.
func Build(cfg *config.Config, dbClient *db.Client, reg prometheus.Registerer, logg *logger.Logger) (*Services, error) {
	if cfg == nil || dbClient == nil {
		return nil, fmt.Errorf("config and database client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	var escrowMetrics *metrics.EscrowMetrics
	if reg != nil {
		escrowMetrics = metrics.NewEscrowMetrics(reg)
	}

	conn := dbClient.DB()
	out := &Services{
		OrdersRepo:        orders.NewRepository(conn),
		NotificationsRepo: notifications.NewRepository(conn),
		OutboxRepo:        outbox.NewRepository(conn),
	}
	out.Outbox = outbox.NewService(out.OutboxRepo, logg)

	walletRepo := wallet.NewRepository(conn)
	var err error
	if out.Wallet, err = wallet.NewService(walletRepo, cfg.Escrow.PlatformAccount(), escrowMetrics); err != nil {
		return nil, fmt.Errorf("wallet service: %w", err)
	}
	if out.Rewards, err = rewards.NewService(rewards.NewRepository(conn), out.Wallet, out.Outbox, logg); err != nil {
		return nil, fmt.Errorf("rewards service: %w", err)
	}
	if out.Reviews, err = reviews.NewService(reviews.NewRepository(conn), dbClient, out.Outbox); err != nil {
		return nil, fmt.Errorf("reviews service: %w", err)
	}
	if out.Orders, err = orders.NewService(orders.ServiceParams{
		Repo:         out.OrdersRepo,
		Tx:           dbClient,
		Wallet:       out.Wallet,
		Availability: availability.NewChecker(conn),
		Rewards:      out.Rewards,
		Reviews:      out.Reviews,
		Outbox:       out.Outbox,
		Rules:        availability.Rules{MinLead: cfg.Escrow.MinLead(), MinDuration: cfg.Escrow.MinDuration()},
		Metrics:      escrowMetrics,
		Logger:       logg,
	}); err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}
	if out.Bans, err = bans.NewService(bans.NewRepository(conn), out.OrdersRepo, dbClient, out.Wallet, out.Outbox, escrowMetrics, logg); err != nil {
		return nil, fmt.Errorf("bans service: %w", err)
	}
	if out.Payments, err = payments.NewService(walletRepo, out.Wallet, dbClient, out.Outbox, cfg.Gateway, logg); err != nil {
		return nil, fmt.Errorf("payments service: %w", err)
	}
	if out.Notifications, err = notifications.NewService(out.NotificationsRepo); err != nil {
		return nil, fmt.Errorf("notifications service: %w", err)
	}
	return out, nil
}
