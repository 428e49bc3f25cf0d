package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	DB        DBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Ingest    IngestConfig
	S3        S3Config
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SALES_APP_ENV" default:"dev"`
	Port         string `envconfig:"SALES_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"SALES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SALES_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"SALES_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type HTTPConfig struct {
	RequestTimeout     time.Duration `envconfig:"SALES_HTTP_REQUEST_TIMEOUT" default:"15s"`
	ReadHeaderTimeout  time.Duration `envconfig:"SALES_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	ShutdownTimeout    time.Duration `envconfig:"SALES_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSAllowedOrigins []string      `envconfig:"SALES_CORS_ALLOWED_ORIGINS" default:"*"`
}

type DBConfig struct {
	DSN         string `envconfig:"SALES_DB_DSN"`
	Driver      string `envconfig:"SALES_DB_DRIVER" default:"sqlite"`
	AutoMigrate bool   `envconfig:"SALES_AUTO_MIGRATE" default:"true"`

	Host     string `envconfig:"SALES_DB_HOST"`
	Port     int    `envconfig:"SALES_DB_PORT" default:"5432"`
	User     string `envconfig:"SALES_DB_USER"`
	Password string `envconfig:"SALES_DB_PASSWORD"`
	Name     string `envconfig:"SALES_DB_NAME"`
	SSLMode  string `envconfig:"SALES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SALES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SALES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SALES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SALES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"SALES_DB_SLOW_QUERY" default:"250ms"`
}

// IsSQLite reports whether the row store is the embedded SQLite database.
func (db DBConfig) IsSQLite() bool {
	return normalizeDriver(db.Driver) == DriverSQLite
}

// NormalizedDriver returns the canonical driver name (sqlite or postgres).
func (db DBConfig) NormalizedDriver() string {
	return normalizeDriver(db.Driver)
}

type RedisConfig struct {
	URL          string        `envconfig:"SALES_REDIS_URL"`
	Address      string        `envconfig:"SALES_REDIS_ADDR"`
	Password     string        `envconfig:"SALES_REDIS_PASSWORD"`
	DB           int           `envconfig:"SALES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SALES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SALES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SALES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SALES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SALES_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"SALES_REDIS_KEY_PREFIX" default:"sales"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// RateLimitConfig drives the per-IP limiter. TrustedProxies is the number of
// reverse proxies in front of the API; zero ignores forwarding headers.
type RateLimitConfig struct {
	Window         time.Duration `envconfig:"SALES_RATE_LIMIT_WINDOW" default:"1m"`
	Requests       int           `envconfig:"SALES_RATE_LIMIT_REQUESTS" default:"600"`
	TrustedProxies int           `envconfig:"SALES_RATE_LIMIT_TRUSTED_PROXIES" default:"0"`
}

type IngestConfig struct {
	Source      string        `envconfig:"SALES_INGEST_SOURCE" default:"https://drive.google.com/uc?id=1tzbyuxBmrBwMSXbL22r33FUMtO0V_lxb&export=download"`
	CachePath   string        `envconfig:"SALES_INGEST_CACHE_PATH" default:"data/sales_dataset.csv"`
	MaxRows     int           `envconfig:"SALES_INGEST_MAX_ROWS" default:"10000"`
	BatchSize   int           `envconfig:"SALES_INGEST_BATCH_SIZE" default:"500"`
	OnStart     bool          `envconfig:"SALES_INGEST_ON_START" default:"true"`
	HTTPTimeout time.Duration `envconfig:"SALES_INGEST_HTTP_TIMEOUT" default:"5m"`
	LockTTL     time.Duration `envconfig:"SALES_INGEST_LOCK_TTL" default:"10m"`
}

type S3Config struct {
	Region       string `envconfig:"SALES_S3_REGION" default:"us-east-1"`
	Endpoint     string `envconfig:"SALES_S3_ENDPOINT"`
	UsePathStyle bool   `envconfig:"SALES_S3_USE_PATH_STYLE" default:"false"`
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range postgresDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
