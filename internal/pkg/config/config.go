// Package config loads process configuration from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Backend drivers accepted in STORE_DRIVER, DEVAPI_STORE and DEVAPI_REVOCATION.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	API     APIConfig
	Store   StoreConfig
	Refresh RefreshConfig
	DevAPI  DevAPIConfig

	Mongo MongoConfig
	Redis RedisConfig
}

// APIConfig points the portal at the backend's /auth endpoints.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:8081"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=10s"`
}

// StoreConfig selects where the session token and user survive restarts.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=file"`
	Path   string `env:"STORE_PATH,   default=.hms/session.json"`
	Prefix string `env:"STORE_PREFIX"`
}

type RefreshConfig struct {
	Before   time.Duration `env:"REFRESH_BEFORE,   default=2m"`
	Interval time.Duration `env:"REFRESH_INTERVAL, default=30s"`
}

// DevAPIConfig configures the development backend.
type DevAPIConfig struct {
	Port       string        `env:"DEVAPI_PORT,       default=8081"`
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,         default=1h"`
	Store      string        `env:"DEVAPI_STORE,      default=memory"`
	Revocation string        `env:"DEVAPI_REVOCATION, default=memory"`
	SeedUsers  bool          `env:"SEED_USERS,        default=true"`
	LoginRate  float64       `env:"LOGIN_RATE,        default=5"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=hms_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether ENV selects human-friendly defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverMongo:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.DevAPI.Store {
	case DriverMemory, DriverMongo:
	default:
		return fmt.Errorf("unknown DEVAPI_STORE %q", c.DevAPI.Store)
	}
	switch c.DevAPI.Revocation {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("unknown DEVAPI_REVOCATION %q", c.DevAPI.Revocation)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", c.Refresh.Interval)
	}
	return nil
}

// RequireJWTSecret fails when the development backend has no signing key.
// Only the devapi command needs one.
func (c *Config) RequireJWTSecret() error {
	if c.DevAPI.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	return nil
}
