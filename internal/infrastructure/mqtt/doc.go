// Package mqtt provides MQTT connectivity for Gray Logic OSC.
//
// The OSC router does not talk to the switcher directly. Validated commands
// are published to the Gray Logic bus, where the ATEM bridge executes them
// and reports state and acknowledgements back.
//
//	OSC Router ──command──▶ MQTT Broker ──▶ ATEM bridge ──▶ switcher
//	OSC Router ◀──state/ack── MQTT Broker ◀── ATEM bridge
//
// This package manages:
//   - Connection with auto-reconnect and subscription restoration
//   - Publishing with QoS and payload size limits
//   - Last Will and Testament on graylogic/system/status
//   - Topic builders for the switcher command, state and ack topics
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.SwitcherCommand(cfg.Switcher.ID)
//	err = client.PublishJSON(topic, cmd, false)
package mqtt
