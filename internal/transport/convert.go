package transport

import (
	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/nerrad567/gray-logic-osc/internal/osc"
)

// maxBundleDepth bounds recursion into nested bundles.
const maxBundleDepth = 8

// ToMessage converts a decoded go-osc message.
func ToMessage(m *goosc.Message) osc.Message {
	return osc.Message{
		Address:   m.Address,
		Arguments: osc.Arguments(m.Arguments),
	}
}

// Flatten returns the messages in packet in delivery order. A bundle's own
// messages come before those of its nested bundles. Bundles nested deeper
// than maxBundleDepth are skipped and reported through truncated.
func Flatten(packet goosc.Packet) (msgs []osc.Message, truncated bool) {
	var walk func(p goosc.Packet, depth int)
	walk = func(p goosc.Packet, depth int) {
		switch v := p.(type) {
		case *goosc.Message:
			if v != nil {
				msgs = append(msgs, ToMessage(v))
			}
		case *goosc.Bundle:
			if v == nil {
				return
			}
			if depth >= maxBundleDepth {
				truncated = true
				return
			}
			for _, m := range v.Messages {
				walk(m, depth+1)
			}
			for _, b := range v.Bundles {
				walk(b, depth+1)
			}
		}
	}
	walk(packet, 0)
	return msgs, truncated
}
