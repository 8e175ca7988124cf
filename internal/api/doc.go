// Package api implements the diagnostics HTTP API and WebSocket stream for
// the OSC router.
//
// This package provides:
//   - Health and metrics endpoints covering the router, UDP receiver,
//     switcher bridge and diagnostics recorder
//   - The registered address catalogue and the recorded drop history
//   - A dispatch endpoint that injects an OSC message as if a control
//     surface had sent it, for commissioning and testing
//   - A WebSocket hub streaming drop and dispatch events live
//   - The audit trail of injected messages, and the browser drop monitor
//     served at /monitor/
//
// # Security
//
// Every endpoint except health and the monitor page requires a bearer JWT
// (see package auth).
// Viewers may read; only operators may dispatch. WebSocket connections
// authenticate with a single-use ticket so the JWT never appears in a URL.
//
// # Graceful Degradation
//
// Every dependency other than the router is optional. Missing components
// are reported as absent in metrics, and the drops and audit endpoints
// answer 503 when no repository is configured.
package api
