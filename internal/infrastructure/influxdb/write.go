package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementDrops    = "osc_drops"
	MeasurementDispatch = "osc_dispatch"
	MeasurementRouter   = "osc_router"
)

// WriteDrop records one dropped message. The address is a field rather
// than a tag to keep series cardinality bounded by reason.
func (c *Client) WriteDrop(switcherID, address, reason string, at time.Time) {
	c.writePoint(MeasurementDrops,
		map[string]string{"switcher_id": switcherID, "reason": reason},
		map[string]any{"address": address, "count": 1},
		at)
}

// WriteDelivery records one delivered message.
func (c *Client) WriteDelivery(switcherID, address string, validated bool, at time.Time) {
	c.writePoint(MeasurementDispatch,
		map[string]string{"switcher_id": switcherID, "validated": strconv.FormatBool(validated)},
		map[string]any{"address": address, "count": 1},
		at)
}

// WriteCounters records a snapshot of cumulative counters, such as router
// or bridge statistics, under MeasurementRouter.
func (c *Client) WriteCounters(switcherID string, counters map[string]uint64) {
	if len(counters) == 0 {
		return
	}
	fields := make(map[string]any, len(counters))
	for k, v := range counters {
		fields[k] = v
	}
	c.writePoint(MeasurementRouter, map[string]string{"switcher_id": switcherID}, fields, time.Now())
}

func (c *Client) writePoint(measurement string, tags map[string]string, fields map[string]any, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, at))
	c.written.Add(1)
}
