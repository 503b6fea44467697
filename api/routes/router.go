package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/playerhire-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/playerhire-backend/api/controllers/orders"
	webhookcontrollers "github.com/angelmondragon/playerhire-backend/api/controllers/webhooks"
	"github.com/angelmondragon/playerhire-backend/api/middleware"
	"github.com/angelmondragon/playerhire-backend/internal/bans"
	"github.com/angelmondragon/playerhire-backend/internal/notifications"
	"github.com/angelmondragon/playerhire-backend/internal/orders"
	"github.com/angelmondragon/playerhire-backend/internal/payments"
	"github.com/angelmondragon/playerhire-backend/internal/reviews"
	"github.com/angelmondragon/playerhire-backend/internal/rewards"
	"github.com/angelmondragon/playerhire-backend/internal/wallet"
	"github.com/angelmondragon/playerhire-backend/pkg/config"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	"github.com/angelmondragon/playerhire-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/playerhire-backend/pkg/redis"
)

// redisStore is what the write limiter, idempotency layer and readiness probe need.
type redisStore interface {
	pkgredis.IdempotencyStore
	middleware.FixedWindowLimiter
	controllers.Pinger
}

// Deps carries everything the HTTP surface is wired to.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    redisStore
	Gatherer prometheus.Gatherer

	Orders        orders.Service
	Reviews       reviews.Service
	Rewards       rewards.Service
	Bans          bans.Service
	Wallet        wallet.Service
	Payments      payments.Service
	Notifications notifications.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	ready := map[string]controllers.Pinger{}
	if d.DB != nil {
		ready["db"] = d.DB
	}
	if d.Redis != nil {
		ready["redis"] = d.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	writePolicy := middleware.RateLimitPolicy{
		Name:   "write",
		Window: cfg.RateLimit.WriteWindow,
		Limit:  cfg.RateLimit.WriteLimit,
	}
	webhookPolicy := middleware.RateLimitPolicy{
		Name:   "webhook",
		Window: cfg.RateLimit.WriteWindow,
		Limit:  cfg.RateLimit.WriteLimit,
	}

	r.Route("/webhooks", func(r chi.Router) {
		r.Use(middleware.RateLimit(webhookPolicy, d.Redis, logg))
		r.Get("/topup", webhookcontrollers.TopupCallback(d.Payments, logg))
		r.Post("/topup", webhookcontrollers.TopupCallback(d.Payments, logg))
	})

	renter := middleware.RequireRole(logg, enums.AccountRoleRenter)
	player := middleware.RequireRole(logg, enums.AccountRolePlayer)
	admin := middleware.RequireRole(logg, enums.AccountRoleAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RateLimit(writePolicy, d.Redis, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(d.Orders, logg))
			r.With(renter).Post("/", ordercontrollers.Create(d.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(d.Orders, logg))
			r.With(player).Post("/{orderId}/confirm", ordercontrollers.Confirm(d.Orders, logg))
			r.With(player).Post("/{orderId}/reject", ordercontrollers.Reject(d.Orders, logg))
			r.Post("/{orderId}/cancel", ordercontrollers.Cancel(d.Orders, logg))
			r.Post("/{orderId}/complete", ordercontrollers.Complete(d.Orders, logg))
			r.With(renter).Post("/{orderId}/review", ordercontrollers.Review(d.Reviews, logg))
		})

		r.Route("/listings/{listingId}", func(r chi.Router) {
			r.Get("/orders", ordercontrollers.ListForListing(d.Orders, logg))
			r.Get("/rewards", controllers.ListingRewards(d.Rewards, logg))
			r.Get("/reviews", controllers.ListingReviews(d.Reviews, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.Wallet(d.Wallet, logg))
			r.Post("/topups", controllers.Topup(d.Payments, logg))
			r.With(player).Post("/withdrawals", controllers.Withdraw(d.Payments, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(d.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(d.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(d.Notifications, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(admin)
			r.Post("/listings/{listingId}/ban", controllers.BanListing(d.Bans, logg))
			r.Post("/listings/{listingId}/unban", controllers.UnbanListing(d.Bans, logg))
		})
	})

	return r
}
