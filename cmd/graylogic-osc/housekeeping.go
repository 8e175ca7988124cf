package main

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-osc/internal/osc"
	"github.com/nerrad567/gray-logic-osc/internal/switcher"
	"github.com/nerrad567/gray-logic-osc/internal/transport"
)

const (
	purgeInterval    = time.Hour
	countersInterval = 30 * time.Second
)

type purger interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// retained is a table pruned by the housekeeper.
type retained struct {
	name  string
	store purger
}

type counterWriter interface {
	WriteCounters(switcherID string, counters map[string]uint64)
}

type routerStats interface {
	Stats() osc.Stats
}

type receiverStats interface {
	Stats() transport.ReceiverStats
}

type bridgeStats interface {
	Stats() switcher.Stats
}

type housekeepingLogger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// housekeeper runs the periodic background jobs: pruning old drop and
// audit records, and exporting counter snapshots to InfluxDB.
type housekeeper struct {
	switcherID string
	retention  time.Duration
	stores     []retained
	metrics    counterWriter // nil when InfluxDB is disabled
	router     routerStats
	receiver   receiverStats
	bridge     bridgeStats
	logger     housekeepingLogger
	now        func() time.Time
}

func (h *housekeeper) run(ctx context.Context, purgeEvery, countersEvery time.Duration) {
	purge := time.NewTicker(purgeEvery)
	defer purge.Stop()
	counters := time.NewTicker(countersEvery)
	defer counters.Stop()

	h.purge(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-purge.C:
			h.purge(ctx)
		case <-counters.C:
			h.writeCounters()
		}
	}
}

// purge deletes records older than the retention window. A zero retention
// keeps everything.
func (h *housekeeper) purge(ctx context.Context) {
	if h.retention <= 0 {
		return
	}
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	cutoff := now().Add(-h.retention)
	for _, r := range h.stores {
		n, err := r.store.DeleteBefore(ctx, cutoff)
		if err != nil {
			if ctx.Err() == nil {
				h.logger.Error("purging old records failed", "table", r.name, "error", err)
			}
			continue
		}
		if n > 0 {
			h.logger.Info("purged old records", "table", r.name, "deleted", n, "retention", h.retention.String())
		}
	}
}

func (h *housekeeper) writeCounters() {
	if h.metrics == nil {
		return
	}
	h.metrics.WriteCounters(h.switcherID, h.counters())
}

// counters flattens router, receiver and bridge statistics into one set of
// InfluxDB fields.
func (h *housekeeper) counters() map[string]uint64 {
	out := make(map[string]uint64, 20)
	if h.router != nil {
		s := h.router.Stats()
		out["received"] = s.Received
		out["delivered"] = s.Delivered
		out["forwarded_unvalidated"] = s.Forwarded
		out["skipped_validation"] = s.Skipped
		out["dropped_no_validator"] = s.NoValidator
		out["dropped_validation_rejected"] = s.ValidationRejected
		out["dropped_no_endpoint"] = s.NoEndpoint
		out["endpoint_failed"] = s.EndpointFailed
		out["panics"] = s.Panics
	}
	if h.receiver != nil {
		s := h.receiver.Stats()
		out["udp_packets"] = s.Packets
		out["udp_messages"] = s.Messages
		out["udp_decode_errors"] = s.DecodeErrors
		out["udp_read_errors"] = s.ReadErrors
		out["udp_truncated_bundles"] = s.Truncated
	}
	if h.bridge != nil {
		s := h.bridge.Stats()
		out["commands_enqueued"] = s.Enqueued
		out["commands_published"] = s.Published
		out["commands_publish_failed"] = s.PublishFailed
		out["commands_queue_full"] = s.QueueFull
	}
	return out
}
