package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"3000"`
	Host            string        `envconfig:"HOST" default:"127.0.0.1"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	// MaxConnections caps simultaneous connections; 0 means unlimited
	MaxConnections int `envconfig:"MAX_CONNECTIONS" default:"0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// StorageConfig holds app storage and archival configuration.
type StorageConfig struct {
	PublicDir         string        `envconfig:"PUBLIC_DIR" default:"public"`
	StorageDir        string        `envconfig:"STORAGE_DIR" default:"storage"`
	FreezeDelay       time.Duration `envconfig:"FREEZE_DELAY" default:"5s"`
	FreezeAfterThaw   bool          `envconfig:"FREEZE_AFTER_THAW" default:"true"`
	FreezeOnStartup   bool          `envconfig:"FREEZE_ON_STARTUP" default:"true"`
	FreezeOnShutdown  bool          `envconfig:"FREEZE_ON_SHUTDOWN" default:"false"`
	FreezeConcurrency int           `envconfig:"FREEZE_CONCURRENCY" default:"4"`
	CompressionLevel  int           `envconfig:"COMPRESSION_LEVEL" default:"-1"`
	MaxContentBytes   int64         `envconfig:"MAX_CONTENT_BYTES" default:"1048576"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// MetricsConfig holds Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects settings the storage layer cannot work with.
func (c *Config) Validate() error {
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("invalid config: MAX_CONNECTIONS must not be negative")
	}
	if c.Storage.PublicDir == "" || c.Storage.StorageDir == "" {
		return fmt.Errorf("invalid config: PUBLIC_DIR and STORAGE_DIR must be set")
	}
	if c.Storage.FreezeDelay < 0 {
		return fmt.Errorf("invalid config: FREEZE_DELAY must not be negative")
	}
	if c.Storage.FreezeConcurrency < 1 {
		return fmt.Errorf("invalid config: FREEZE_CONCURRENCY must be at least 1")
	}
	if c.Storage.CompressionLevel < -2 || c.Storage.CompressionLevel > 9 {
		return fmt.Errorf("invalid config: COMPRESSION_LEVEL must be between -2 and 9")
	}
	if c.Storage.MaxContentBytes <= 0 {
		return fmt.Errorf("invalid config: MAX_CONTENT_BYTES must be positive")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "3000",
			Host:            "127.0.0.1",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			PublicDir:         "public",
			StorageDir:        "storage",
			FreezeDelay:       5 * time.Second,
			FreezeAfterThaw:   true,
			FreezeOnStartup:   true,
			FreezeOnShutdown:  false,
			FreezeConcurrency: 4,
			CompressionLevel:  -1,
			MaxContentBytes:   1 << 20,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
