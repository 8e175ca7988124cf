// Package audit records operator actions taken through the HTTP API.
//
// Control surfaces talk to the router over UDP and are not audited; the
// drop log in package diagnostics covers them. The API is different: an
// authenticated caller can inject a message that moves a live switcher, so
// every injection is written here with the caller's subject and role and
// the router's verdict.
package audit
