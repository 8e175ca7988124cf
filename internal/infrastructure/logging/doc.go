// Package logging provides structured logging for Gray Logic OSC.
//
// This package wraps Go's standard log/slog package so every component
// (receiver, router, switcher bridge, API) logs with the same shape.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Component("transport").Info("listening", "addr", cfg.ListenAddr())
//
// # Security
//
// Never log secrets, tokens or passwords. OSC argument values are logged
// in summarised form only (see osc.Arguments.Summary).
package logging
