package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Escrow       EscrowConfig
	Cron         CronConfig
	Gateway      GatewayConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Escrow.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PLAYERHIRE_APP_ENV" required:"true"`
	Port         string `envconfig:"PLAYERHIRE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PLAYERHIRE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PLAYERHIRE_LOG_WARN_STACK" default:"false"`

	// Comma separated browser origins allowed by CORS.
	CORSOrigins []string `envconfig:"PLAYERHIRE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PLAYERHIRE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PLAYERHIRE_DB_DSN"`
	Driver string `envconfig:"PLAYERHIRE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PLAYERHIRE_DB_HOST"`
	LegacyPort     int    `envconfig:"PLAYERHIRE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PLAYERHIRE_DB_USER"`
	LegacyPassword string `envconfig:"PLAYERHIRE_DB_PASSWORD"`
	LegacyName     string `envconfig:"PLAYERHIRE_DB_NAME"`
	LegacySSLMode  string `envconfig:"PLAYERHIRE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PLAYERHIRE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PLAYERHIRE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PLAYERHIRE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PLAYERHIRE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	TxMaxRetries  int `envconfig:"PLAYERHIRE_DB_TX_MAX_RETRIES" default:"5"`
	TxRetryBaseMS int `envconfig:"PLAYERHIRE_DB_TX_RETRY_BASE_MS" default:"20"`
}

// TxRetryBase returns the initial backoff used between serializable retries.
func (db DBConfig) TxRetryBase() time.Duration {
	if db.TxRetryBaseMS <= 0 {
		return 20 * time.Millisecond
	}
	return time.Duration(db.TxRetryBaseMS) * time.Millisecond
}

type RedisConfig struct {
	URL          string        `envconfig:"PLAYERHIRE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PLAYERHIRE_REDIS_ADDR"`
	Password     string        `envconfig:"PLAYERHIRE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PLAYERHIRE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PLAYERHIRE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PLAYERHIRE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PLAYERHIRE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PLAYERHIRE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PLAYERHIRE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PLAYERHIRE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PLAYERHIRE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PLAYERHIRE_JWT_EXPIRATION_MINUTES" required:"true"`
}

type RateLimitConfig struct {
	WriteWindow time.Duration `envconfig:"PLAYERHIRE_RATE_LIMIT_WRITE_WINDOW" default:"1m"`
	WriteLimit  int           `envconfig:"PLAYERHIRE_RATE_LIMIT_WRITE_LIMIT" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PLAYERHIRE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PLAYERHIRE_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"PLAYERHIRE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
	IdempotencyKeyTTL    time.Duration `envconfig:"PLAYERHIRE_IDEMPOTENCY_KEY_TTL" default:"24h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PLAYERHIRE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PLAYERHIRE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PLAYERHIRE_GOOGLE_APPLICATION_CREDENTIALS"`
	PubSubEmulatorHost     string `envconfig:"PUBSUB_EMULATOR_HOST"`
}

type PubSubConfig struct {
	OrdersTopic                    string `envconfig:"PLAYERHIRE_PUBSUB_ORDERS_TOPIC" default:"ph-order-events"`
	WalletTopic                    string `envconfig:"PLAYERHIRE_PUBSUB_WALLET_TOPIC" default:"ph-wallet-events"`
	// Each topic gets its own notification subscription.
	NotificationOrdersSubscription string `envconfig:"PLAYERHIRE_PUBSUB_NOTIFICATION_ORDERS_SUBSCRIPTION" default:"ph-notifications-orders"`
	NotificationWalletSubscription string `envconfig:"PLAYERHIRE_PUBSUB_NOTIFICATION_WALLET_SUBSCRIPTION" default:"ph-notifications-wallet"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PLAYERHIRE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PLAYERHIRE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PLAYERHIRE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// EscrowConfig holds the hire window rules and the platform revenue account.
type EscrowConfig struct {
	MinLeadMinutes     int    `envconfig:"PLAYERHIRE_ESCROW_MIN_LEAD_MINUTES" default:"15"`
	MinDurationMinutes int    `envconfig:"PLAYERHIRE_ESCROW_MIN_DURATION_MINUTES" default:"60"`
	PlatformAccountID  string `envconfig:"PLAYERHIRE_ESCROW_PLATFORM_ACCOUNT_ID" default:"00000000-0000-0000-0000-000000000001"`
}

func (e EscrowConfig) MinLead() time.Duration {
	return time.Duration(e.MinLeadMinutes) * time.Minute
}

func (e EscrowConfig) MinDuration() time.Duration {
	return time.Duration(e.MinDurationMinutes) * time.Minute
}

// PlatformAccount parses the configured platform account id.
func (e EscrowConfig) PlatformAccount() uuid.UUID {
	id, err := uuid.Parse(e.PlatformAccountID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func (e EscrowConfig) validate() error {
	if e.MinLeadMinutes < 0 {
		return fmt.Errorf("escrow min lead minutes must be >= 0")
	}
	if e.MinDurationMinutes <= 0 {
		return fmt.Errorf("escrow min duration minutes must be > 0")
	}
	if _, err := uuid.Parse(e.PlatformAccountID); err != nil {
		return fmt.Errorf("escrow platform account id: %w", err)
	}
	return nil
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"PLAYERHIRE_CRON_INTERVAL" default:"60s"`
	LockTTL                   time.Duration `envconfig:"PLAYERHIRE_CRON_LOCK_TTL" default:"5m"`
	ReminderWindow            time.Duration `envconfig:"PLAYERHIRE_CRON_REMINDER_WINDOW" default:"15m"`
	NotificationRetentionDays int           `envconfig:"PLAYERHIRE_CRON_NOTIFICATION_RETENTION_DAYS" default:"30"`
	OutboxRetentionDays       int           `envconfig:"PLAYERHIRE_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
	ReconcileBatchSize        int           `envconfig:"PLAYERHIRE_CRON_RECONCILE_BATCH_SIZE" default:"200"`
}

type GatewayConfig struct {
	TopupSecret    string `envconfig:"PLAYERHIRE_GATEWAY_TOPUP_SECRET"`
	CoinsPerUnit   int64  `envconfig:"PLAYERHIRE_GATEWAY_COINS_PER_UNIT" default:"1"`
	SuccessCode    string `envconfig:"PLAYERHIRE_GATEWAY_SUCCESS_CODE" default:"00"`
	MinTopupAmount int64  `envconfig:"PLAYERHIRE_GATEWAY_MIN_TOPUP" default:"10000"`
	MerchantCode   string `envconfig:"PLAYERHIRE_GATEWAY_MERCHANT_CODE"`
	PayURL         string `envconfig:"PLAYERHIRE_GATEWAY_PAY_URL"`
	ReturnURL      string `envconfig:"PLAYERHIRE_GATEWAY_RETURN_URL"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
