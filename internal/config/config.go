package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
	DriverRedis    = "redis"
)

// Config holds the whole application configuration, populated from the
// environment (optionally seeded from a .env file).
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Bolt     BoltConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
}

type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"Bookstore Management API"`
	Environment string `envconfig:"APP_ENV" default:"development"` // development, staging, production
	Port        string `envconfig:"APP_PORT" default:"3000"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

type ServerConfig struct {
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"postgres"`
}

type DatabaseConfig struct {
	Host              string        `envconfig:"DB_HOST" default:"localhost"`
	Port              int           `envconfig:"DB_PORT" default:"5432"`
	User              string        `envconfig:"DB_USER" default:"bookstore"`
	Password          string        `envconfig:"DB_PASSWORD" default:"secret"`
	Name              string        `envconfig:"DB_NAME" default:"bookstore_dev"`
	SSLMode           string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns          int32         `envconfig:"DB_MAX_CONNECTIONS" default:"25"`
	MinConns          int32         `envconfig:"DB_MIN_CONNECTIONS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"5m"`
	MaxConnIdleTime   time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"1m"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
	MaxRetries        int           `envconfig:"DB_MAX_RETRIES" default:"5"`
	RetryDelay        time.Duration `envconfig:"DB_RETRY_DELAY" default:"1s"`
	ConnectTimeout    time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`
	AutoMigrate       bool          `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

type BoltConfig struct {
	Path    string        `envconfig:"BOLT_PATH" default:"bookstore.db"`
	Timeout time.Duration `envconfig:"BOLT_TIMEOUT" default:"1s"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Prefix   string `envconfig:"REDIS_PREFIX" default:"bookstore"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	// Sections are processed one by one so that each variable keeps its flat
	// name (APP_PORT rather than APP_APP_PORT).
	sections := []interface{}{
		&cfg.App, &cfg.Server, &cfg.Store, &cfg.Database,
		&cfg.Bolt, &cfg.Redis, &cfg.CORS, &cfg.Log,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to load configurations from environment: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the application cannot start with.
func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case DriverPostgres, DriverBolt, DriverRedis:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: must be one of postgres, bolt, redis", c.Store.Driver)
	}

	if c.App.Port == "" {
		return errors.New("APP_PORT must not be empty")
	}

	if c.Store.Driver == DriverBolt && c.Bolt.Path == "" {
		return errors.New("BOLT_PATH must be set when STORE_DRIVER=bolt")
	}

	return nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
