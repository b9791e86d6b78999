package mqtt

import "fmt"

// Topic prefixes for chassisd.
//
// Event topics use the scheme: chassisd/event/{group}/{endpoint}
const (
	// TopicPrefix is the base for all chassisd topics.
	TopicPrefix = "chassisd"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "chassisd/system"
)

// Topics provides builders for chassisd MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// PowerEvent returns the topic for power-action outcomes on one endpoint.
//
// Example: chassisd/event/rack-a/db-01
func (Topics) PowerEvent(group, endpoint string) string {
	return fmt.Sprintf("%s/event/%s/%s", TopicPrefix, group, endpoint)
}

// SystemStatus returns the topic carrying chassisd's online/offline status.
//
// Example: chassisd/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
