// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Subsystems get named children via Component so log lines can be filtered
// by origin ("lifecycle", "http", "tracing").
//
// Example Usage:
//
//	logger := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	lifecycleLog := logger.Component("lifecycle")
//	lifecycleLog.Info("app frozen", zap.String("app", "demo"))
package logging
