package config

const (
	EnvPrefix = "SALES"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultSQLiteDSN = "file:data/sales.sqlite?_busy_timeout=5000&_journal_mode=WAL"
)

const (
	EnvAppEnv   = "SALES_APP_ENV"
	EnvPort     = "SALES_APP_PORT"
	EnvLogLevel = "SALES_LOG_LEVEL"

	EnvDBDSN    = "SALES_DB_DSN"
	EnvDBDriver = "SALES_DB_DRIVER"
	EnvDBHost   = "SALES_DB_HOST"
	EnvDBUser   = "SALES_DB_USER"
	EnvDBName   = "SALES_DB_NAME"

	EnvRedisURL = "SALES_REDIS_URL"

	EnvCORSAllowedOrigins = "SALES_CORS_ALLOWED_ORIGINS"
	EnvIngestSource       = "SALES_INGEST_SOURCE"
	EnvIngestMaxRows      = "SALES_INGEST_MAX_ROWS"
)

var postgresDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
