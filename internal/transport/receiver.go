package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	goosc "github.com/hypebeast/go-osc/osc"
)

const (
	// maxDatagramSize is the largest UDP payload.
	maxDatagramSize = 65535

	defaultReadTimeout = time.Second
)

// Logger defines the logging interface used by the Receiver.
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

// ReceiverOptions configures a Receiver.
type ReceiverOptions struct {
	// Addr is the UDP listen address, e.g. "0.0.0.0:9000".
	Addr string

	// ReadTimeout bounds each read so cancellation is noticed.
	// Defaults to one second.
	ReadTimeout time.Duration

	// Dispatcher receives every decoded message. Required.
	Dispatcher Dispatcher

	// Logger is optional.
	Logger Logger
}

// ReceiverStats holds receiver counters.
type ReceiverStats struct {
	Packets      uint64 `json:"packets"`
	Messages     uint64 `json:"messages"`
	DecodeErrors uint64 `json:"decode_errors"`
	ReadErrors   uint64 `json:"read_errors"`
	Truncated    uint64 `json:"truncated_bundles"`
}

// Receiver reads OSC datagrams and dispatches them sequentially.
type Receiver struct {
	addr        string
	readTimeout time.Duration
	adapter     *DispatcherAdapter
	logger      Logger

	local atomic.Value // net.Addr once bound

	packets, messages, decodeErrors, readErrors, truncated atomic.Uint64
}

// NewReceiver validates opts and creates a Receiver.
func NewReceiver(opts ReceiverOptions) (*Receiver, error) {
	if opts.Dispatcher == nil {
		return nil, errors.New("transport: dispatcher is required")
	}
	timeout := opts.ReadTimeout
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Receiver{
		addr:        opts.Addr,
		readTimeout: timeout,
		adapter:     NewDispatcherAdapter(opts.Dispatcher),
		logger:      logger,
	}, nil
}

// ListenAndServe binds the configured UDP address and serves until ctx is
// cancelled.
func (r *Receiver) ListenAndServe(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", r.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", r.addr, err)
	}
	return r.Serve(ctx, conn)
}

// Serve reads from conn until ctx is cancelled, then closes conn. It
// returns nil on cancellation and an error only if conn fails for good.
func (r *Receiver) Serve(ctx context.Context, conn net.PacketConn) error {
	defer conn.Close()
	r.local.Store(conn.LocalAddr())
	r.logger.Info("osc receiver listening", "addr", conn.LocalAddr().String())

	buf := make([]byte, maxDatagramSize)
	for {
		if ctx.Err() != nil {
			r.logger.Info("osc receiver stopped", "packets", r.packets.Load())
			return nil
		}
		if err := conn.SetReadDeadline(time.Now().Add(r.readTimeout)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}

		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			r.readErrors.Add(1)
			r.logger.Warn("osc read failed", "error", err)
			continue
		}
		r.handle(buf[:n], from)
	}
}

// handle decodes and dispatches one datagram.
func (r *Receiver) handle(data []byte, from net.Addr) {
	r.packets.Add(1)

	packet, err := parse(data)
	if err != nil {
		r.decodeErrors.Add(1)
		r.logger.Warn("osc packet decode failed",
			"from", addrString(from),
			"bytes", len(data),
			"error", err)
		return
	}

	n, truncated := r.adapter.dispatch(packet)
	r.messages.Add(uint64(n))
	if truncated {
		r.truncated.Add(1)
		r.logger.Warn("osc bundle nesting too deep, inner bundles ignored", "from", addrString(from))
	}
}

// parse decodes data, converting a decoder panic on malformed input into
// an error.
func parse(data []byte) (packet goosc.Packet, err error) {
	defer func() {
		if p := recover(); p != nil {
			packet, err = nil, fmt.Errorf("decoder panic: %v", p)
		}
	}()
	return goosc.ParsePacket(string(data))
}

// LocalAddr returns the bound address, or nil before Serve starts.
func (r *Receiver) LocalAddr() net.Addr {
	a, _ := r.local.Load().(net.Addr)
	return a
}

// Stats returns a snapshot of receiver counters.
func (r *Receiver) Stats() ReceiverStats {
	return ReceiverStats{
		Packets:      r.packets.Load(),
		Messages:     r.messages.Load(),
		DecodeErrors: r.decodeErrors.Load(),
		ReadErrors:   r.readErrors.Load(),
		Truncated:    r.truncated.Load(),
	}
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
