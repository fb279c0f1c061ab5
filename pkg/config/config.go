package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	PubSub PubSubConfig
	Rollup RollupConfig
	Cache  CacheConfig
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
	Env          string `envconfig:"PROFITLENS_APP_ENV" required:"true"`
	Port         string `envconfig:"PROFITLENS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PROFITLENS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PROFITLENS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PROFITLENS_DB_DSN"`
	Driver string `envconfig:"PROFITLENS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PROFITLENS_DB_HOST"`
	Port     int    `envconfig:"PROFITLENS_DB_PORT" default:"5432"`
	User     string `envconfig:"PROFITLENS_DB_USER"`
	Password string `envconfig:"PROFITLENS_DB_PASSWORD"`
	Name     string `envconfig:"PROFITLENS_DB_NAME"`
	SSLMode  string `envconfig:"PROFITLENS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PROFITLENS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROFITLENS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROFITLENS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROFITLENS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PROFITLENS_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"PROFITLENS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROFITLENS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROFITLENS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROFITLENS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROFITLENS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PROFITLENS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PROFITLENS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PROFITLENS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PubSubConfig struct {
	ReportsTopic        string `envconfig:"PROFITLENS_PUBSUB_REPORTS_TOPIC" required:"true"`
	ReportsSubscription string `envconfig:"PROFITLENS_PUBSUB_REPORTS_SUBSCRIPTION" required:"true"`
	ProjectID           string `envconfig:"PROFITLENS_GCP_PROJECT_ID"`
}

// RollupConfig carries engine-level knobs. Cost percentages and rate tables
// live in the database; these are only the defaults and guard rails.
type RollupConfig struct {
	BaseCurrency         string `envconfig:"PROFITLENS_BASE_CURRENCY" default:"USD"`
	MaterialityThreshold string `envconfig:"PROFITLENS_MATERIALITY_THRESHOLD" default:"50"`
	MaxQueryLimit        int    `envconfig:"PROFITLENS_MAX_QUERY_LIMIT" default:"100"`
	DefaultQueryLimit    int    `envconfig:"PROFITLENS_DEFAULT_QUERY_LIMIT" default:"10"`
	AggregationWorkers   int    `envconfig:"PROFITLENS_AGGREGATION_WORKERS" default:"4"`
}

type CacheConfig struct {
	QueryResultTTL time.Duration `envconfig:"PROFITLENS_CACHE_QUERY_TTL" default:"5m"`
	IdempotencyTTL time.Duration `envconfig:"PROFITLENS_INGEST_IDEMPOTENCY_TTL" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
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
