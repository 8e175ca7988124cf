// Package switcher is the device control facade behind the OSC router.
//
// The router never talks to the ATEM hardware. Endpoints call the Controller
// interface; the MQTT-backed Bridge turns each call into a CommandMessage,
// queues it and returns at once, so a slow or disconnected broker cannot
// stall OSC reception. A single worker goroutine publishes queued commands
// in order to graylogic/command/atem/{switcher_id}, where the ATEM bridge
// executes them.
//
// The Bridge also subscribes to graylogic/state/atem/{switcher_id} and keeps
// a State cache current. Validators consult the cache for bounds that depend
// on the connected model (number of inputs, macros, keyers).
//
//	Endpoint ──▶ Controller (Bridge) ──▶ queue ──▶ worker ──▶ MQTT command
//	                                                    ▲
//	Validator ◀── State ◀── MQTT state ─────────────────┘
//
// Indices (mix effect, keyer, aux, macro, media player, box, audio input)
// are 1-based, as they appear in OSC addresses, and are passed through
// unchanged in command parameters.
package switcher
