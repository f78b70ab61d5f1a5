package mqtt

import "fmt"

// Topic prefixes for the signage MQTT namespace.
//
// All display topics use the flat scheme: signage/{category}/{display_id}
const (
	// TopicPrefix is the base for all signage topics.
	TopicPrefix = "signage"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "signage/system"
)

// Topics provides builders for signage MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.DisplayState("lobby")
//	// Returns: "signage/state/lobby"
type Topics struct{}

// DisplayState returns the topic for snapshot updates from a display bridge.
//
// Example: signage/state/lobby
func (Topics) DisplayState(displayID string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, displayID)
}

// DisplayCommand returns the topic for control commands to a display bridge.
//
// Example: signage/command/lobby
func (Topics) DisplayCommand(displayID string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefix, displayID)
}

// DisplayAck returns the topic for command acknowledgements from a display bridge.
//
// Example: signage/ack/lobby
func (Topics) DisplayAck(displayID string) string {
	return fmt.Sprintf("%s/ack/%s", TopicPrefix, displayID)
}

// DisplayHealth returns the topic for per-display health status.
//
// Example: signage/health/lobby
func (Topics) DisplayHealth(displayID string) string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, displayID)
}

// SystemStatus returns the daemon status topic.
//
// Example: signage/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDisplayCommands returns a pattern matching control commands for every display.
//
// Pattern: signage/command/+
func (Topics) AllDisplayCommands() string {
	return fmt.Sprintf("%s/command/+", TopicPrefix)
}

// AllDisplayStates returns a pattern matching snapshot updates for every display.
//
// Pattern: signage/state/+
func (Topics) AllDisplayStates() string {
	return fmt.Sprintf("%s/state/+", TopicPrefix)
}
