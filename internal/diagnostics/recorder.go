package diagnostics

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-osc/internal/osc"
)

const (
	defaultQueueSize = 1024
	sinkTimeout      = 5 * time.Second
)

// Sink stores or forwards drop events. WriteDrop is called from the
// recorder's worker goroutine only.
type Sink interface {
	Name() string
	WriteDrop(ctx context.Context, ev DropEvent) error
}

// DeliverySink is implemented by sinks that also want deliveries.
type DeliverySink interface {
	WriteDelivery(ctx context.Context, ev DeliveryEvent) error
}

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Recorder.
type Options struct {
	// SwitcherID is stamped on every event.
	SwitcherID string

	// QueueSize bounds events waiting for the sinks. Defaults to 1024.
	QueueSize int

	// Sinks receive events in order.
	Sinks []Sink

	// Logger is optional.
	Logger Logger
}

// Stats holds recorder counters.
type Stats struct {
	Drops      uint64 `json:"drops"`
	Deliveries uint64 `json:"deliveries"`
	QueueFull  uint64 `json:"queue_full"`
	SinkErrors uint64 `json:"sink_errors"`
	QueueDepth int    `json:"queue_depth"`
}

// item is one queued event; exactly one field is set.
type item struct {
	drop     *DropEvent
	delivery *DeliveryEvent
}

// Recorder implements osc.Reporter and osc.DeliveryReporter.
type Recorder struct {
	switcherID string
	sinks      []Sink
	logger     Logger

	queue    chan item
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	drops, deliveries, queueFull, sinkErrors atomic.Uint64
}

var (
	_ osc.Reporter         = (*Recorder)(nil)
	_ osc.DeliveryReporter = (*Recorder)(nil)
)

// NewRecorder creates a Recorder. Call Start to begin writing to sinks.
func NewRecorder(opts Options) *Recorder {
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Recorder{
		switcherID: opts.SwitcherID,
		sinks:      opts.Sinks,
		logger:     logger,
		queue:      make(chan item, size),
		done:       make(chan struct{}),
	}
}

// ReportDrop queues a drop event. It never blocks.
func (r *Recorder) ReportDrop(d osc.Drop) {
	ev := NewDropEvent(r.switcherID, d)
	r.drops.Add(1)
	r.logger.Debug("drop event recorded", "id", ev.ID, "address", ev.Address, "reason", string(ev.Reason))
	r.enqueue(item{drop: &ev})
}

// ReportDelivery queues a delivery event for sinks that want it. It never
// blocks.
func (r *Recorder) ReportDelivery(d osc.Delivery) {
	r.deliveries.Add(1)
	if !r.wantsDeliveries() {
		return
	}
	ev := NewDeliveryEvent(r.switcherID, d)
	r.enqueue(item{delivery: &ev})
}

func (r *Recorder) wantsDeliveries() bool {
	for _, s := range r.sinks {
		if _, ok := s.(DeliverySink); ok {
			return true
		}
	}
	return false
}

func (r *Recorder) enqueue(it item) {
	select {
	case r.queue <- it:
	default:
		r.queueFull.Add(1)
	}
}

// Start launches the sink worker. It returns immediately.
func (r *Recorder) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.run(ctx)
}

// Stop writes queued events and waits for the worker to exit.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}

func (r *Recorder) run(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case it := <-r.queue:
			r.write(it)
		case <-ctx.Done():
			r.drain()
			return
		case <-r.done:
			r.drain()
			return
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case it := <-r.queue:
			r.write(it)
		default:
			return
		}
	}
}

// write delivers one item to every sink. Sink contexts are detached from
// the worker's context so queued events still reach storage during shutdown.
func (r *Recorder) write(it item) {
	for _, s := range r.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		err := r.writeOne(ctx, s, it)
		cancel()
		if err != nil {
			r.sinkErrors.Add(1)
			r.logger.Error("diagnostics sink write failed", "sink", s.Name(), "error", err)
		}
	}
}

func (r *Recorder) writeOne(ctx context.Context, s Sink, it item) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("sink panicked")
			r.logger.Error("recovered panic in diagnostics sink", "sink", s.Name(), "panic", p)
		}
	}()
	switch {
	case it.drop != nil:
		return s.WriteDrop(ctx, *it.drop)
	case it.delivery != nil:
		if ds, ok := s.(DeliverySink); ok {
			return ds.WriteDelivery(ctx, *it.delivery)
		}
	}
	return nil
}

// Stats returns a snapshot of recorder counters.
func (r *Recorder) Stats() Stats {
	return Stats{
		Drops:      r.drops.Load(),
		Deliveries: r.deliveries.Load(),
		QueueFull:  r.queueFull.Load(),
		SinkErrors: r.sinkErrors.Load(),
		QueueDepth: len(r.queue),
	}
}
