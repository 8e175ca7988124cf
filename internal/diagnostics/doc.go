// Package diagnostics records what the OSC router did with each message.
//
// The Recorder is the router's Reporter. It turns each osc.Drop into a
// DropEvent with a stable ID and hands it to a bounded queue; a single
// worker goroutine fans events out to the configured sinks:
//
//	Router.Dispatch ──▶ Recorder ──▶ queue ──▶ worker ──┬─▶ SQLiteRepository (history)
//	                                                    ├─▶ InfluxSink       (metrics)
//	                                                    ├─▶ MQTTSink         (graylogic/osc/{id}/drop)
//	                                                    └─▶ BroadcastSink    (WebSocket)
//
// Reporting never blocks dispatch. When the queue is full the event is
// counted in Stats.QueueFull and discarded; the router has already logged
// it.
//
// Deliveries are forwarded only to sinks that implement DeliverySink.
package diagnostics
