package diagnostics

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-osc/internal/infrastructure/mqtt"
)

// Live stream channels used by BroadcastSink.
const (
	ChannelDrop     = "osc.drop"
	ChannelDispatch = "osc.dispatch"
)

// MetricsWriter is the part of *influxdb.Client used by InfluxSink.
type MetricsWriter interface {
	WriteDrop(switcherID, address, reason string, at time.Time)
	WriteDelivery(switcherID, address string, validated bool, at time.Time)
}

// InfluxSink writes drop and delivery points to InfluxDB.
type InfluxSink struct {
	w MetricsWriter
}

// NewInfluxSink wraps w.
func NewInfluxSink(w MetricsWriter) *InfluxSink {
	return &InfluxSink{w: w}
}

func (s *InfluxSink) Name() string { return "influxdb" }

func (s *InfluxSink) WriteDrop(_ context.Context, ev DropEvent) error {
	s.w.WriteDrop(ev.SwitcherID, ev.Address, string(ev.Reason), ev.Timestamp)
	return nil
}

func (s *InfluxSink) WriteDelivery(_ context.Context, ev DeliveryEvent) error {
	s.w.WriteDelivery(ev.SwitcherID, ev.Address, ev.Validated, ev.Timestamp)
	return nil
}

// JSONPublisher is the part of *mqtt.Client used by MQTTSink.
type JSONPublisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// MQTTSink publishes drop events to graylogic/osc/{switcher_id}/drop so
// other Gray Logic services can react to rejected control input.
type MQTTSink struct {
	pub JSONPublisher
}

// NewMQTTSink wraps pub.
func NewMQTTSink(pub JSONPublisher) *MQTTSink {
	return &MQTTSink{pub: pub}
}

func (s *MQTTSink) Name() string { return "mqtt" }

func (s *MQTTSink) WriteDrop(_ context.Context, ev DropEvent) error {
	return s.pub.PublishJSON(mqtt.Topics{}.OSCDrop(ev.SwitcherID), ev, false)
}

// Broadcaster pushes a payload to live clients subscribed to a channel.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// BroadcastSink streams events to WebSocket clients.
type BroadcastSink struct {
	b Broadcaster
}

// NewBroadcastSink wraps b.
func NewBroadcastSink(b Broadcaster) *BroadcastSink {
	return &BroadcastSink{b: b}
}

func (s *BroadcastSink) Name() string { return "websocket" }

func (s *BroadcastSink) WriteDrop(_ context.Context, ev DropEvent) error {
	s.b.Broadcast(ChannelDrop, ev)
	return nil
}

func (s *BroadcastSink) WriteDelivery(_ context.Context, ev DeliveryEvent) error {
	s.b.Broadcast(ChannelDispatch, ev)
	return nil
}
