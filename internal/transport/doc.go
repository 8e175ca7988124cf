// Package transport receives OSC over UDP and feeds the Router.
//
// The Receiver reads datagrams one at a time, decodes them with go-osc and
// dispatches every contained message in arrival order on the read
// goroutine. Bundles are flattened; their timetags are ignored and their
// messages dispatch immediately.
//
// A datagram that fails to decode is logged and counted, and the loop
// continues. The loop ends when its context is cancelled.
//
// DispatcherAdapter exposes the same conversion as a go-osc Dispatcher,
// for callers that run go-osc's own Server.
package transport
