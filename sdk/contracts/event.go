package contracts

// EventType is the discriminator carried by every TransportEvent.
type EventType string

const (
	// MIDIType tags an event carrying one MIDIEvent.
	MIDIType EventType = "midi"
	// PingType tags a liveness probe.
	PingType EventType = "ping"
	// PongType tags a liveness response.
	PongType EventType = "pong"
)

// Known reports whether t is one of the recognized tags.
func (t EventType) Known() bool {
	switch t {
	case MIDIType, PingType, PongType:
		return true
	}
	return false
}

// MIDIEvent is the (status, pitch, velocity) triple exchanged between peers.
// Values are not validated here; range checks belong to the producer.
type MIDIEvent [3]int

// Status returns the status byte of the event.
func (e MIDIEvent) Status() int { return e[0] }

// Pitch returns the MIDI note number.
func (e MIDIEvent) Pitch() int { return e[1] }

// Velocity returns the key velocity.
func (e MIDIEvent) Velocity() int { return e[2] }

// IsNoteOn reports whether the status byte is exactly NoteOn.
func (e MIDIEvent) IsNoteOn() bool { return e.Status() == int(NoteOn) }

// TransportEvent is one wire-level message. MIDI is only meaningful when
// Type is MIDIType.
type TransportEvent struct {
	Type EventType
	MIDI MIDIEvent
}

// NewMIDIEvent builds a midi TransportEvent from a status/pitch/velocity triple.
func NewMIDIEvent(status, pitch, velocity int) TransportEvent {
	return TransportEvent{Type: MIDIType, MIDI: MIDIEvent{status, pitch, velocity}}
}

// Ping builds a keep-alive probe.
func Ping() TransportEvent { return TransportEvent{Type: PingType} }

// Pong builds a keep-alive response.
func Pong() TransportEvent { return TransportEvent{Type: PongType} }
