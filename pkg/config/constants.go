package config

const (
	EnvPrefix = "PLAYERHIRE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv      = "PLAYERHIRE_APP_ENV"
	EnvPort        = "PLAYERHIRE_APP_PORT"
	EnvDBDSN       = "PLAYERHIRE_DB_DSN"
	EnvDBHost      = "PLAYERHIRE_DB_HOST"
	EnvDBUser      = "PLAYERHIRE_DB_USER"
	EnvDBName      = "PLAYERHIRE_DB_NAME"
	EnvRedisURL    = "PLAYERHIRE_REDIS_URL"
	EnvJWTSecret   = "PLAYERHIRE_JWT_SECRET"
	EnvJWTIssuer   = "PLAYERHIRE_JWT_ISSUER"
	EnvJWTExpMins  = "PLAYERHIRE_JWT_EXPIRATION_MINUTES"
	EnvGCPProject  = "PLAYERHIRE_GCP_PROJECT_ID"
	EnvTopupSecret = "PLAYERHIRE_GATEWAY_TOPUP_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
