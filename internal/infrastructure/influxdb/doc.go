// Package influxdb records OSC routing metrics in InfluxDB v2.
//
// It wraps influxdb-client-go's non-blocking write API. Points are batched
// according to the influxdb section of config.yaml, so a write never waits
// on the network and never slows dispatch.
//
// Measurements:
//   - osc_drops: one point per dropped message, tagged by switcher and
//     reason, with the address as a field
//   - osc_dispatch: one point per delivered message, tagged by switcher and
//     whether it was validated
//   - osc_router: periodic counter snapshots
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteDrop("studio", "/atem/me/1/program", "validation_rejected", time.Now())
//
// Write errors surface asynchronously through SetOnError.
package influxdb
