package switcher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nerrad567/gray-logic-osc/internal/infrastructure/mqtt"
)

// defaultQueueSize is used when BridgeOptions.QueueSize is not positive.
const defaultQueueSize = 256

// MQTTClient is the subset of *mqtt.Client the bridge uses.
// This allows mocking in tests.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	IsConnected() bool
}

// Logger defines the logging interface used by the Bridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// SwitcherID selects the command, state and ack topics.
	SwitcherID string

	// QueueSize bounds the number of commands waiting to be published.
	QueueSize int

	// QoS for command publishing and state subscriptions.
	QoS byte

	// MQTTClient is the broker connection.
	MQTTClient MQTTClient

	// State receives updates from the state topic. If nil a State with an
	// empty topology is created.
	State *State

	// Logger is optional.
	Logger Logger
}

// Stats holds bridge counters for the metrics endpoint.
type Stats struct {
	Enqueued      uint64 `json:"enqueued"`
	Published     uint64 `json:"published"`
	PublishFailed uint64 `json:"publish_failed"`
	QueueFull     uint64 `json:"queue_full"`
	QueueDepth    int    `json:"queue_depth"`
	AcksAccepted  uint64 `json:"acks_accepted"`
	AcksFailed    uint64 `json:"acks_failed"`
	StateUpdates  uint64 `json:"state_updates"`
	Connected     bool   `json:"connected"`
}

type bridgeStats struct {
	enqueued, published, publishFailed, queueFull atomic.Uint64
	acksAccepted, acksFailed, stateUpdates        atomic.Uint64
}

// Bridge implements Controller by publishing commands over MQTT.
//
// Commands are queued and published in order by a single worker started
// with Start. Thread Safety: all methods are safe for concurrent use.
type Bridge struct {
	switcherID string
	qos        byte
	mqtt       MQTTClient
	state      *State
	topics     mqtt.Topics

	queue    chan CommandMessage
	done     chan struct{}
	stopped  atomic.Bool
	wg       sync.WaitGroup
	stopOnce sync.Once

	stats bridgeStats

	logger   Logger
	loggerMu sync.RWMutex
}

var _ Controller = (*Bridge)(nil)

// NewBridge creates a bridge. Call Start to subscribe and begin publishing.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.SwitcherID == "" {
		return nil, fmt.Errorf("switcher id is required")
	}
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	state := opts.State
	if state == nil {
		state = NewState(Topology{})
	}

	return &Bridge{
		switcherID: opts.SwitcherID,
		qos:        opts.QoS,
		mqtt:       opts.MQTTClient,
		state:      state,
		queue:      make(chan CommandMessage, size),
		done:       make(chan struct{}),
		logger:     opts.Logger,
	}, nil
}

// State returns the cache the bridge keeps current.
func (b *Bridge) State() *State {
	return b.state
}

// Start subscribes to the switcher's state and ack topics and starts the
// publish worker. The worker runs until ctx is cancelled or Stop is called;
// either way the bridge stops accepting commands and Send returns ErrStopped.
func (b *Bridge) Start(ctx context.Context) error {
	stateTopic := b.topics.SwitcherState(b.switcherID)
	if err := b.mqtt.Subscribe(stateTopic, b.qos, b.handleState); err != nil {
		return fmt.Errorf("subscribe to state: %w", err)
	}
	ackTopic := b.topics.SwitcherAck(b.switcherID)
	if err := b.mqtt.Subscribe(ackTopic, b.qos, b.handleAck); err != nil {
		return fmt.Errorf("subscribe to acks: %w", err)
	}
	b.logInfo("subscribed to switcher topics", "state", stateTopic, "ack", ackTopic)

	b.wg.Add(1)
	go b.run(ctx)

	// Ask for a full state publish so validators have live bounds early.
	if err := b.RequestStatus(); err != nil {
		b.logError("failed to request initial status", err)
	}

	b.logInfo("switcher bridge started", "switcher_id", b.switcherID, "queue_size", cap(b.queue))
	return nil
}

// Stop stops accepting commands, publishes what is already queued and
// waits for the worker to exit.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.stopped.Store(true)
		close(b.done)
		b.wg.Wait()
		b.logInfo("switcher bridge stopped", "published", b.stats.published.Load())
	})
}

// run publishes queued commands until shutdown, then drains the queue.
func (b *Bridge) run(ctx context.Context) {
	defer b.wg.Done()
	for {
		select {
		case cmd := <-b.queue:
			b.publish(cmd)
		case <-ctx.Done():
			b.stopped.Store(true)
			b.drain()
			return
		case <-b.done:
			b.drain()
			return
		}
	}
}

func (b *Bridge) drain() {
	for {
		select {
		case cmd := <-b.queue:
			b.publish(cmd)
		default:
			return
		}
	}
}

func (b *Bridge) publish(cmd CommandMessage) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		b.stats.publishFailed.Add(1)
		b.logError("failed to marshal command", err)
		return
	}
	topic := b.topics.SwitcherCommand(b.switcherID)
	if err := b.mqtt.Publish(topic, payload, b.qos, false); err != nil {
		b.stats.publishFailed.Add(1)
		b.logError("failed to publish command", fmt.Errorf("%s %s: %w", cmd.Command, cmd.ID, err))
		return
	}
	b.stats.published.Add(1)
	b.logDebug("command published", "command", cmd.Command, "id", cmd.ID)
}

// Send queues an arbitrary command. It never blocks.
func (b *Bridge) Send(command string, params map[string]any) error {
	if b.stopped.Load() {
		return ErrStopped
	}
	cmd := NewCommand(b.switcherID, command, params)
	if err := cmd.Validate(); err != nil {
		return err
	}
	select {
	case b.queue <- cmd:
		b.stats.enqueued.Add(1)
		return nil
	default:
		b.stats.queueFull.Add(1)
		return fmt.Errorf("%w: %s dropped", ErrQueueFull, command)
	}
}

// handleState applies a state message from the ATEM bridge.
func (b *Bridge) handleState(_ string, payload []byte) error {
	if err := b.state.ApplyJSON(payload); err != nil {
		return err
	}
	b.stats.stateUpdates.Add(1)
	return nil
}

// handleAck records the outcome of a published command.
func (b *Bridge) handleAck(_ string, payload []byte) error {
	var ack AckMessage
	if err := json.Unmarshal(payload, &ack); err != nil {
		return fmt.Errorf("decode ack: %w", err)
	}
	if ack.Status == AckAccepted {
		b.stats.acksAccepted.Add(1)
		return nil
	}

	b.stats.acksFailed.Add(1)
	var code, msg string
	if ack.Error != nil {
		code, msg = ack.Error.Code, ack.Error.Message
	}
	b.logWarn("switcher rejected command",
		"command_id", ack.CommandID,
		"status", string(ack.Status),
		"code", code,
		"message", msg)
	return nil
}

// Stats returns a snapshot of bridge counters.
func (b *Bridge) Stats() Stats {
	return Stats{
		Enqueued:      b.stats.enqueued.Load(),
		Published:     b.stats.published.Load(),
		PublishFailed: b.stats.publishFailed.Load(),
		QueueFull:     b.stats.queueFull.Load(),
		QueueDepth:    len(b.queue),
		AcksAccepted:  b.stats.acksAccepted.Load(),
		AcksFailed:    b.stats.acksFailed.Load(),
		StateUpdates:  b.stats.stateUpdates.Load(),
		Connected:     b.mqtt.IsConnected(),
	}
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
}

func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

func (b *Bridge) logWarn(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Warn(msg, keysAndValues...)
	}
}

func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	if logger := b.getLogger(); logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}

func (b *Bridge) logError(msg string, err error) {
	if logger := b.getLogger(); logger != nil {
		logger.Error(msg, "error", err)
	}
}
