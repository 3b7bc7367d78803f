package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Calculation  CalculationConfig
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
	Env          string `envconfig:"PRICEBENCH_APP_ENV" required:"true"`
	Port         string `envconfig:"PRICEBENCH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRICEBENCH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRICEBENCH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"PRICEBENCH_DB_DSN"`

	Host     string `envconfig:"PRICEBENCH_DB_HOST"`
	Port     int    `envconfig:"PRICEBENCH_DB_PORT" default:"5432"`
	User     string `envconfig:"PRICEBENCH_DB_USER"`
	Password string `envconfig:"PRICEBENCH_DB_PASSWORD"`
	Name     string `envconfig:"PRICEBENCH_DB_NAME"`
	SSLMode  string `envconfig:"PRICEBENCH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRICEBENCH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRICEBENCH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRICEBENCH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRICEBENCH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRICEBENCH_REDIS_URL"`
	Address      string        `envconfig:"PRICEBENCH_REDIS_ADDR"`
	Password     string        `envconfig:"PRICEBENCH_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRICEBENCH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRICEBENCH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRICEBENCH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRICEBENCH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRICEBENCH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRICEBENCH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PRICEBENCH_AUTO_MIGRATE" default:"false"`
}

type CalculationConfig struct {
	// RoundingPlaces controls the decimal precision of converted prices and
	// margin percentages on calculation snapshots.
	RoundingPlaces int32 `envconfig:"PRICEBENCH_CALC_ROUNDING_PLACES" default:"2"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		"PRICEBENCH_DB_HOST": db.Host,
		"PRICEBENCH_DB_USER": db.User,
		"PRICEBENCH_DB_NAME": db.Name,
	}
	for _, key := range []string{"PRICEBENCH_DB_HOST", "PRICEBENCH_DB_USER", "PRICEBENCH_DB_NAME"} {
		if parts[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either PRICEBENCH_DB_DSN or %s are required", strings.Join(missing, ", "))
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
