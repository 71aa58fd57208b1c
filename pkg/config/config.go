package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Auth          AuthConfig
	AuthRateLimit AuthRateLimitConfig
	Report        ReportConfig
	Forecast      ForecastConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Alerts        AlertsConfig
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
	Env          string `envconfig:"STOCKKEEPER_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKKEEPER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKKEEPER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKKEEPER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKKEEPER_DB_DSN"`
	Driver string `envconfig:"STOCKKEEPER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKKEEPER_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKKEEPER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKKEEPER_DB_USER"`
	LegacyPassword string `envconfig:"STOCKKEEPER_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKKEEPER_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKKEEPER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKKEEPER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKKEEPER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKKEEPER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKKEEPER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKKEEPER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOCKKEEPER_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKKEEPER_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKKEEPER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKKEEPER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKKEEPER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKKEEPER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKKEEPER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKKEEPER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOCKKEEPER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOCKKEEPER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOCKKEEPER_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOCKKEEPER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOCKKEEPER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOCKKEEPER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOCKKEEPER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOCKKEEPER_ARGON_KEY_LEN" default:"32"`
}

// AuthConfig carries the static operator credential list as
// "username:argon2idhash" pairs separated by commas.
type AuthConfig struct {
	Credentials []string `envconfig:"STOCKKEEPER_AUTH_CREDENTIALS"`
}

// CredentialFor returns the stored hash for a username, if present.
func (a AuthConfig) CredentialFor(username string) (string, bool) {
	for _, pair := range a.Credentials {
		name, hash, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(username)) {
			return hash, true
		}
	}
	return "", false
}

type AuthRateLimitConfig struct {
	LoginWindow    time.Duration `envconfig:"STOCKKEEPER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserLimit int           `envconfig:"STOCKKEEPER_AUTH_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	LoginIPLimit   int           `envconfig:"STOCKKEEPER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// ReportConfig tunes the reconciliation reporter. Timezone governs month and
// week boundaries; reports are bucketed in local calendar time, never UTC.
type ReportConfig struct {
	Timezone          string        `envconfig:"STOCKKEEPER_REPORT_TIMEZONE" default:"Local"`
	CacheTTL          time.Duration `envconfig:"STOCKKEEPER_REPORT_CACHE_TTL" default:"10m"`
	ClaimSubstrings   []string      `envconfig:"STOCKKEEPER_REPORT_CLAIM_SUBSTRINGS" default:"claim,クレーム"`
	FactorySubstrings []string      `envconfig:"STOCKKEEPER_REPORT_FACTORY_SUBSTRINGS" default:"factory,工場,調整"`
}

// Location resolves the configured timezone, falling back to the host zone.
func (r ReportConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(r.Timezone)
	if name == "" || strings.EqualFold(name, "Local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

type ForecastConfig struct {
	APIKey         string        `envconfig:"STOCKKEEPER_FORECAST_API_KEY"`
	BaseURL        string        `envconfig:"STOCKKEEPER_FORECAST_BASE_URL" default:"https://api.openai.com/v1"`
	Model          string        `envconfig:"STOCKKEEPER_FORECAST_MODEL" default:"gpt-4o-mini"`
	RequestTimeout time.Duration `envconfig:"STOCKKEEPER_FORECAST_REQUEST_TIMEOUT" default:"30s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOCKKEEPER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOCKKEEPER_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STOCKKEEPER_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"STOCKKEEPER_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STOCKKEEPER_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	AlertsTopic        string `envconfig:"STOCKKEEPER_PUBSUB_ALERTS_TOPIC" default:"sk-shortage-alerts"`
	AlertsSubscription string `envconfig:"STOCKKEEPER_PUBSUB_ALERTS_SUBSCRIPTION"`
}

type AlertsConfig struct {
	Interval    time.Duration `envconfig:"STOCKKEEPER_ALERTS_INTERVAL" default:"1h"`
	MetricsPort string        `envconfig:"STOCKKEEPER_ALERTS_METRICS_PORT" default:"9091"`
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
