// Package mqtt wraps paho.mqtt.golang for chassisd's optional power-event
// publisher.
//
// chassisd only publishes: control outcomes go to
// chassisd/event/{group}/{endpoint} so a home-automation hub can react to
// power changes without polling the HTTP API. There is no subscribe surface.
//
// The client maintains its own connection state, reconnects automatically
// with exponential backoff, and publishes online/offline status (with a
// Last Will for crash detection) to chassisd/system/status.
//
// Thread Safety: all methods are safe for concurrent use from multiple
// goroutines.
package mqtt
