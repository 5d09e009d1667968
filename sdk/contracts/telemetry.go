package contracts

import "time"

// ConnectionStatus is a state of the connection lifecycle.
type ConnectionStatus string

const (
	Disconnected ConnectionStatus = "disconnected"
	Connecting   ConnectionStatus = "connecting"
	Connected    ConnectionStatus = "connected"
	Error        ConnectionStatus = "error"
)

// LoggerEventKind discriminates LoggerEvent variants.
type LoggerEventKind string

const (
	// ConnectionStatusKind carries a connection state transition.
	ConnectionStatusKind LoggerEventKind = "connectionStatus"
	// PingKind carries a measured round trip.
	PingKind LoggerEventKind = "ping"
)

// LoggerEvent is internal telemetry. It never goes over the wire.
type LoggerEvent struct {
	Kind   LoggerEventKind
	Status ConnectionStatus // set for ConnectionStatusKind
	Ping   time.Duration    // set for PingKind
}

// StatusEvent builds a connectionStatus LoggerEvent.
func StatusEvent(status ConnectionStatus) LoggerEvent {
	return LoggerEvent{Kind: ConnectionStatusKind, Status: status}
}

// PingEvent builds a ping LoggerEvent. Negative values are clamped to zero.
func PingEvent(rtt time.Duration) LoggerEvent {
	if rtt < 0 {
		rtt = 0
	}
	return LoggerEvent{Kind: PingKind, Ping: rtt}
}
