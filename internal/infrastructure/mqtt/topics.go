package mqtt

import "fmt"

// Topic roots. Switcher traffic uses the flat bridge scheme shared with the
// rest of Gray Logic: graylogic/{category}/{protocol}/{switcher_id}.
const (
	// TopicPrefix is the base for all Gray Logic topics.
	TopicPrefix = "graylogic"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "graylogic/system"

	// TopicPrefixOSC is the base for topics published by the OSC router itself.
	TopicPrefixOSC = "graylogic/osc"

	// ProtocolATEM is the protocol segment for Blackmagic ATEM switchers.
	ProtocolATEM = "atem"
)

// Topics provides builders for the MQTT topics the OSC router uses.
//
//	topics := mqtt.Topics{}
//	topics.SwitcherCommand("atem-01")
//	// Returns: "graylogic/command/atem/atem-01"
type Topics struct{}

// SwitcherCommand returns the topic commands for a switcher are published to.
//
// Example: graylogic/command/atem/atem-01
func (Topics) SwitcherCommand(switcherID string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, ProtocolATEM, switcherID)
}

// SwitcherState returns the topic the switcher bridge publishes state on.
//
// Example: graylogic/state/atem/atem-01
func (Topics) SwitcherState(switcherID string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, ProtocolATEM, switcherID)
}

// SwitcherAck returns the topic the switcher bridge acknowledges commands on.
//
// Example: graylogic/ack/atem/atem-01
func (Topics) SwitcherAck(switcherID string) string {
	return fmt.Sprintf("%s/ack/%s/%s", TopicPrefix, ProtocolATEM, switcherID)
}

// SwitcherHealth returns the switcher bridge health topic.
//
// Example: graylogic/health/atem
func (Topics) SwitcherHealth() string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, ProtocolATEM)
}

// OSCDrop returns the topic drop events for a switcher are mirrored to.
//
// Example: graylogic/osc/atem-01/drop
func (Topics) OSCDrop(switcherID string) string {
	return fmt.Sprintf("%s/%s/drop", TopicPrefixOSC, switcherID)
}

// SystemStatus returns the system status topic used for online/offline and LWT.
//
// Example: graylogic/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllSwitcherStates returns a pattern matching state from every switcher.
//
// Pattern: graylogic/state/atem/+
func (Topics) AllSwitcherStates() string {
	return fmt.Sprintf("%s/state/%s/+", TopicPrefix, ProtocolATEM)
}

// AllSwitcherAcks returns a pattern matching acks from every switcher.
//
// Pattern: graylogic/ack/atem/+
func (Topics) AllSwitcherAcks() string {
	return fmt.Sprintf("%s/ack/%s/+", TopicPrefix, ProtocolATEM)
}
