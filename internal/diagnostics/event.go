package diagnostics

import (
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-osc/internal/osc"
)

// DropEvent is a persisted record of one undelivered message.
type DropEvent struct {
	ID         string         `json:"id"`
	SwitcherID string         `json:"switcher_id"`
	Address    string         `json:"address"`
	Arguments  string         `json:"arguments"`
	Reason     osc.ReasonKind `json:"reason"`
	Detail     string         `json:"detail,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewDropEvent converts a router Drop into a DropEvent with a fresh ID.
func NewDropEvent(switcherID string, d osc.Drop) DropEvent {
	at := d.At
	if at.IsZero() {
		at = time.Now()
	}
	return DropEvent{
		ID:         "drop-" + uuid.NewString(),
		SwitcherID: switcherID,
		Address:    d.Address,
		Arguments:  d.Arguments,
		Reason:     d.Reason,
		Detail:     d.Detail,
		Timestamp:  at.UTC(),
	}
}

// DeliveryEvent is a delivered message, used for live monitoring only.
type DeliveryEvent struct {
	SwitcherID string    `json:"switcher_id"`
	Address    string    `json:"address"`
	Arguments  string    `json:"arguments"`
	Validated  bool      `json:"validated"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewDeliveryEvent converts a router Delivery.
func NewDeliveryEvent(switcherID string, d osc.Delivery) DeliveryEvent {
	at := d.At
	if at.IsZero() {
		at = time.Now()
	}
	return DeliveryEvent{
		SwitcherID: switcherID,
		Address:    d.Address,
		Arguments:  d.Arguments,
		Validated:  d.Validated,
		Timestamp:  at.UTC(),
	}
}
