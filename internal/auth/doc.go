// Package auth issues and verifies the bearer tokens that guard the
// diagnostics API.
//
// Tokens are HS256 JWTs carrying a role claim. Two roles exist:
//   - viewer: read router statistics, routes and recorded drops
//   - operator: everything a viewer can do, plus inject OSC messages
//     through the dispatch endpoint
//
// Verification is by signature and expiry only; there is no token store.
// Tokens are minted out of band with the "token" subcommand of the
// service binary.
package auth
