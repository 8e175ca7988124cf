package transport

import (
	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/nerrad567/gray-logic-osc/internal/osc"
)

// Dispatcher is the single entry point messages are delivered to.
// *osc.Router satisfies it.
type Dispatcher interface {
	Dispatch(msg osc.Message) osc.Result
}

// DispatcherAdapter lets a Dispatcher serve as a go-osc Dispatcher.
//
//	server := &goosc.Server{Addr: ":9000", Dispatcher: transport.NewDispatcherAdapter(router)}
type DispatcherAdapter struct {
	target Dispatcher
}

var _ goosc.Dispatcher = (*DispatcherAdapter)(nil)

// NewDispatcherAdapter wraps target.
func NewDispatcherAdapter(target Dispatcher) *DispatcherAdapter {
	return &DispatcherAdapter{target: target}
}

// Dispatch implements goosc.Dispatcher.
func (a *DispatcherAdapter) Dispatch(packet goosc.Packet) {
	a.dispatch(packet)
}

// dispatch delivers every message in packet and returns how many were
// delivered and whether nested bundles were cut off.
func (a *DispatcherAdapter) dispatch(packet goosc.Packet) (int, bool) {
	msgs, truncated := Flatten(packet)
	for _, m := range msgs {
		a.target.Dispatch(m)
	}
	return len(msgs), truncated
}
