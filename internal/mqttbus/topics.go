// Package mqttbus carries the two-topic protocol between the wheel
// daemon and the remote button controller over an MQTT broker.
package mqttbus

// Topic and payload strings shared by both ends of the bridge. Payloads
// are plain strings, not JSON; the protocol predates this codebase and
// the deployed button firmware depends on the exact bytes.
const (
	// TopicSpin carries button presses toward the wheel.
	TopicSpin = "wheel/spin"
	// TopicState carries wheel state announcements toward the button.
	TopicState = "wheel/state"

	PayloadPressed = "pressed"

	StateSpinning   = "spinning"
	StateFlashRed   = "flash_red"
	StateFlashGreen = "flash_green"
	StateFlashWhite = "flash_white"

	// StateFlashing is the legacy announcement older wheel builds
	// publish instead of a colored flash. Consumers treat it as white.
	StateFlashing = "flashing"
)
