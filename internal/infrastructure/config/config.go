package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	API     APIConfig
	Log     LogConfig
	Session SessionConfig
	Redis   RedisConfig

	MetricsTextfile string `env:"PMCTL_METRICS_TEXTFILE"`
	OTLPEndpoint    string `env:"PMCTL_OTLP_ENDPOINT" validate:"omitempty,url"`
}

type APIConfig struct {
	URL     string        `env:"PMCTL_API_URL, default=http://localhost:5000" validate:"required,http_url"`
	Timeout time.Duration `env:"PMCTL_API_TIMEOUT, default=0s"`
}

type LogConfig struct {
	Level  string `env:"PMCTL_LOG_LEVEL, default=warn" validate:"oneof=trace debug info warn error"`
	Pretty bool   `env:"PMCTL_LOG_PRETTY, default=true"`
}

// Session backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type SessionConfig struct {
	Backend string `env:"PMCTL_SESSION_BACKEND, default=file" validate:"oneof=file redis memory"`
	// Dir defaults to the user config directory when empty.
	Dir string `env:"PMCTL_SESSION_DIR"`
}

type RedisConfig struct {
	Addr     string `env:"PMCTL_REDIS_ADDR, default=localhost:6379" validate:"required_if=Enabled true"`
	Password string `env:"PMCTL_REDIS_PASSWORD"`
	DB       int    `env:"PMCTL_REDIS_DB, default=0" validate:"min=0"`
	Prefix   string `env:"PMCTL_REDIS_PREFIX, default=pmctl:session"`

	// Enabled is derived from Session.Backend.
	Enabled bool
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// LoadWithOverrides is Load over the process environment, with overrides
// taking precedence over both the environment and .env. Empty values are
// ignored.
func LoadWithOverrides(ctx context.Context, overrides map[string]string) (*Config, error) {
	_ = godotenv.Load()
	set := make(map[string]string, len(overrides))
	for k, v := range overrides {
		if v != "" {
			set[k] = v
		}
	}
	return Load(ctx, envconfig.MultiLookuper(envconfig.MapLookuper(set), envconfig.OsLookuper()))
}

// Load reads an optional .env file and then the environment. lookuper
// replaces the process environment when non-nil.
func Load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	if lookuper == nil {
		_ = godotenv.Load()
		lookuper = envconfig.OsLookuper()
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Redis.Enabled = cfg.Session.Backend == BackendRedis

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("config: %w: %w", ErrInvalid, err)
	}
	return nil
}
