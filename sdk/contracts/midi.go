package contracts

// MIDI is a raw event captured from a local input device.
type MIDI struct {
	Timestamp uint64 // Timestamp indicates the time the event occurred.
	Command   byte   // Command is the status byte with the channel nibble cleared.
	Note      byte   // Note represents the MIDI note number (0-127).
	Velocity  byte   // Velocity indicates the strength of the note being played (0-127).
}

// Event converts a captured event into a midi TransportEvent.
func (m MIDI) Event() TransportEvent {
	return NewMIDIEvent(int(m.Command), int(m.Note), int(m.Velocity))
}

// ClientMIDI captures events from local MIDI hardware.
type ClientMIDI interface {
	Stop() error                         // Stops the MIDI client and releases resources.
	ListDevices() ([]DeviceInfo, error)  // Lists all available MIDI devices.
	SelectDevice(deviceID int) error     // Selects a MIDI device by its ID for communication.
	StartCapture(eventChannel chan MIDI) // Starts capturing MIDI events and sends them to the specified channel.
}

// Normalize builds a captured event from raw bytes. The channel nibble is
// cleared and a note-on with zero velocity becomes a note-off, so remote
// players never sound it.
func Normalize(status, data1, data2 byte) MIDI {
	command := status & 0xF0
	if command == byte(NoteOn) && data2 == 0 {
		command = byte(NoteOff)
	}
	return MIDI{Command: command, Note: data1, Velocity: data2}
}
