package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config for YAML and TOML files. Every field is a
// pointer so keys missing from the file leave the current value alone;
// durations are strings in time.ParseDuration syntax.
type fileConfig struct {
	Server struct {
		Port            *string `yaml:"port" toml:"port"`
		Host            *string `yaml:"host" toml:"host"`
		ShutdownTimeout *string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
		MaxConnections  *int    `yaml:"max_connections" toml:"max_connections"`
	} `yaml:"server" toml:"server"`
	Storage struct {
		PublicDir         *string `yaml:"public_dir" toml:"public_dir"`
		StorageDir        *string `yaml:"storage_dir" toml:"storage_dir"`
		FreezeDelay       *string `yaml:"freeze_delay" toml:"freeze_delay"`
		FreezeAfterThaw   *bool   `yaml:"freeze_after_thaw" toml:"freeze_after_thaw"`
		FreezeOnStartup   *bool   `yaml:"freeze_on_startup" toml:"freeze_on_startup"`
		FreezeOnShutdown  *bool   `yaml:"freeze_on_shutdown" toml:"freeze_on_shutdown"`
		FreezeConcurrency *int    `yaml:"freeze_concurrency" toml:"freeze_concurrency"`
		CompressionLevel  *int    `yaml:"compression_level" toml:"compression_level"`
		MaxContentBytes   *int64  `yaml:"max_content_bytes" toml:"max_content_bytes"`
	} `yaml:"storage" toml:"storage"`
	Logging struct {
		Level       *string `yaml:"level" toml:"level"`
		Development *bool   `yaml:"development" toml:"development"`
	} `yaml:"logging" toml:"logging"`
	RateLimit struct {
		RequestsPerSecond *int  `yaml:"requests_per_second" toml:"requests_per_second"`
		Burst             *int  `yaml:"burst" toml:"burst"`
		Enabled           *bool `yaml:"enabled" toml:"enabled"`
	} `yaml:"rate_limit" toml:"rate_limit"`
	Metrics struct {
		Enabled *bool `yaml:"enabled" toml:"enabled"`
	} `yaml:"metrics" toml:"metrics"`
}

// LoadFile applies the YAML (.yaml, .yml) or TOML (.toml) file at path on
// top of c and validates the result.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	default:
		return fmt.Errorf("unsupported config file type %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := fc.apply(c); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return c.Validate()
}

func (fc *fileConfig) apply(c *Config) error {
	setString(&c.Server.Port, fc.Server.Port)
	setString(&c.Server.Host, fc.Server.Host)
	if err := setDuration(&c.Server.ShutdownTimeout, fc.Server.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
		return err
	}
	set(&c.Server.MaxConnections, fc.Server.MaxConnections)

	setString(&c.Storage.PublicDir, fc.Storage.PublicDir)
	setString(&c.Storage.StorageDir, fc.Storage.StorageDir)
	if err := setDuration(&c.Storage.FreezeDelay, fc.Storage.FreezeDelay, "storage.freeze_delay"); err != nil {
		return err
	}
	set(&c.Storage.FreezeAfterThaw, fc.Storage.FreezeAfterThaw)
	set(&c.Storage.FreezeOnStartup, fc.Storage.FreezeOnStartup)
	set(&c.Storage.FreezeOnShutdown, fc.Storage.FreezeOnShutdown)
	set(&c.Storage.FreezeConcurrency, fc.Storage.FreezeConcurrency)
	set(&c.Storage.CompressionLevel, fc.Storage.CompressionLevel)
	set(&c.Storage.MaxContentBytes, fc.Storage.MaxContentBytes)

	setString(&c.Logging.Level, fc.Logging.Level)
	set(&c.Logging.Development, fc.Logging.Development)

	set(&c.RateLimit.RequestsPerSecond, fc.RateLimit.RequestsPerSecond)
	set(&c.RateLimit.Burst, fc.RateLimit.Burst)
	set(&c.RateLimit.Enabled, fc.RateLimit.Enabled)

	set(&c.Metrics.Enabled, fc.Metrics.Enabled)
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string, key string) error {
	if src == nil || *src == "" {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
