// Package panel serves the browser drop monitor as embedded assets.
//
// The monitor is a single static page that exchanges an API token for a
// WebSocket ticket and streams osc.drop (and optionally osc.dispatch)
// events as a live table. It lets an operator standing at a control surface
// see why a button press did not move the switcher.
package panel
