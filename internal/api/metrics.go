package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/gray-logic-osc/internal/diagnostics"
	"github.com/nerrad567/gray-logic-osc/internal/osc"
	"github.com/nerrad567/gray-logic-osc/internal/switcher"
	"github.com/nerrad567/gray-logic-osc/internal/transport"
)

// SystemMetrics represents the complete system metrics response.
// Absent components are omitted.
type SystemMetrics struct {
	Timestamp     string                   `json:"timestamp"`
	Version       string                   `json:"version"`
	UptimeSeconds int64                    `json:"uptime_seconds"`
	Runtime       RuntimeMetrics           `json:"runtime"`
	WebSocket     WSMetrics                `json:"websocket"`
	Router        RouterMetrics            `json:"router"`
	Receiver      *transport.ReceiverStats `json:"receiver,omitempty"`
	Switcher      *switcher.Stats          `json:"switcher,omitempty"`
	Recorder      *diagnostics.Stats       `json:"recorder,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// RouterMetrics contains router counters and configuration.
type RouterMetrics struct {
	osc.Stats
	Dropped uint64     `json:"dropped"`
	Routes  int        `json:"routes"`
	Policy  osc.Policy `json:"policy"`
}

// handleMetrics returns comprehensive system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	routerStats := s.router.Stats()
	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Router: RouterMetrics{
			Stats:   routerStats,
			Dropped: routerStats.Dropped(),
			Routes:  len(s.router.Routes()),
			Policy:  s.router.Policy(),
		},
	}

	if s.receiver != nil {
		st := s.receiver.Stats()
		metrics.Receiver = &st
	}
	if s.switcher != nil {
		st := s.switcher.Stats()
		metrics.Switcher = &st
	}
	if s.recorder != nil {
		st := s.recorder.Stats()
		metrics.Recorder = &st
	}

	writeJSON(w, http.StatusOK, metrics)
}
