// Package config provides 12-factor configuration management for the app server.
//
// Configuration is loaded from environment variables with sensible defaults.
// An optional YAML or TOML file (LoadFile) overrides the environment, and CLI
// flags override both.
//
// Configuration Sections:
//   - Server: HTTP listen address and shutdown timeout
//   - Storage: public/storage roots, freeze scheduling, compression level, content limit
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Metrics: Prometheus exposition toggle
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Serving apps from %s on %s\n", cfg.Storage.PublicDir, cfg.Server.Addr())
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT, MAX_CONNECTIONS
//   - PUBLIC_DIR, STORAGE_DIR, FREEZE_DELAY, FREEZE_AFTER_THAW, FREEZE_ON_STARTUP,
//     FREEZE_ON_SHUTDOWN, FREEZE_CONCURRENCY, COMPRESSION_LEVEL, MAX_CONTENT_BYTES
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - METRICS_ENABLED
package config
