package contracts

// TransportMode selects the Transport implementation at startup.
type TransportMode string

const (
	// LocalMode loops events straight back into the Player.
	LocalMode TransportMode = "local"
	// NetworkMode exchanges events with remote peers over a websocket.
	NetworkMode TransportMode = "network"
)

// Telemetry is a subscribable stream of LoggerEvents.
type Telemetry interface {
	// Subscribe attaches fn and returns a function that detaches it.
	// fn is called synchronously in publish order and must not block.
	Subscribe(fn func(LoggerEvent)) (unsubscribe func())
}

// Connection is the handle returned by Transport.Connect.
type Connection interface {
	ID() string
	// Disconnect ends the session. Safe to call more than once.
	Disconnect()
}

// Transport abstracts how an event gets from the sender to the Player.
// Both implementations expose the same surface so callers stay agnostic.
type Transport interface {
	Send(event TransportEvent)
	Connect() Connection
	Events() Telemetry
}
