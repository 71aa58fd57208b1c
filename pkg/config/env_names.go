package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// STOCKKEEPER_ names so the prefix only matters for unannotated fields.
const EnvPrefix = "stockkeeper"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "STOCKKEEPER_APP_ENV"
	EnvPort       = "STOCKKEEPER_APP_PORT"
	EnvDBDSN      = "STOCKKEEPER_DB_DSN"
	EnvDBHost     = "STOCKKEEPER_DB_HOST"
	EnvDBUser     = "STOCKKEEPER_DB_USER"
	EnvDBName     = "STOCKKEEPER_DB_NAME"
	EnvRedisURL   = "STOCKKEEPER_REDIS_URL"
	EnvJWTSecret  = "STOCKKEEPER_JWT_SECRET"
	EnvJWTIssuer  = "STOCKKEEPER_JWT_ISSUER"
	EnvJWTExpMins = "STOCKKEEPER_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
