package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Dispatch     DispatchConfig
	Cron         CronConfig
	Idempotency  IdempotencyConfig
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
	Env          string `envconfig:"CHEMTRADE_APP_ENV" required:"true"`
	Port         string `envconfig:"CHEMTRADE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CHEMTRADE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHEMTRADE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CHEMTRADE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CHEMTRADE_DB_DSN"`
	Driver string `envconfig:"CHEMTRADE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CHEMTRADE_DB_HOST"`
	LegacyPort     int    `envconfig:"CHEMTRADE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CHEMTRADE_DB_USER"`
	LegacyPassword string `envconfig:"CHEMTRADE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CHEMTRADE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CHEMTRADE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHEMTRADE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHEMTRADE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHEMTRADE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHEMTRADE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CHEMTRADE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CHEMTRADE_REDIS_ADDR"`
	Password     string        `envconfig:"CHEMTRADE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHEMTRADE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHEMTRADE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHEMTRADE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHEMTRADE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHEMTRADE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHEMTRADE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CHEMTRADE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CHEMTRADE_JWT_ISSUER" default:"chemtrade"`
	ExpirationMinutes int    `envconfig:"CHEMTRADE_JWT_EXPIRATION_MINUTES" default:"480"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CHEMTRADE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CHEMTRADE_AUTO_MIGRATE" default:"false"`
}

type DispatchConfig struct {
	OrderLockTTL time.Duration `envconfig:"CHEMTRADE_DISPATCH_ORDER_LOCK_TTL" default:"30s"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"CHEMTRADE_CRON_INTERVAL" default:"24h"`
	ApprovalReminderAge time.Duration `envconfig:"CHEMTRADE_CRON_APPROVAL_REMINDER_AGE" default:"72h"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"CHEMTRADE_IDEMPOTENCY_TTL" default:"24h"`
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
