// Package endpoints registers the switcher's OSC address space with a Router.
//
// Each address is declared once as a template, for example
// "/atem/me/<me>/program", and expanded over the switcher topology known at
// registration time. Every concrete address gets a validator and an endpoint
// that translates the message into one switcher.Controller call.
//
// Validators that depend on the device (input numbers, macro slots, media
// pool indices) read the live switcher.State at dispatch time, and so does
// the check on every index in the path. A topology update from the switcher
// tightens or relaxes validation without re-registering; addresses beyond
// the configured capacity are never expanded.
//
// Usage:
//
//	n, err := endpoints.Register(router, endpoints.Options{
//	    Prefix:     "/atem",
//	    Controller: bridge,
//	    State:      bridge.State(),
//	})
package endpoints
