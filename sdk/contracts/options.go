package contracts

import "time"

// MIDICommand represents the types of MIDI commands for event filtering.
type MIDICommand byte

const (
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
)

// MIDIEventFilter allows users to specify which MIDI commands to forward.
type MIDIEventFilter struct {
	Commands []MIDICommand // List of MIDI commands to forward.
}

// Allows reports whether command passes the filter. A nil filter allows everything.
func (f *MIDIEventFilter) Allows(command byte) bool {
	if f == nil {
		return true
	}
	for _, c := range f.Commands {
		if command == byte(c) {
			return true
		}
	}
	return false
}

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// ClientOptions defines the configuration for transports and input clients.
type ClientOptions struct {
	Logger          Logger           // Logger for logging events and errors.
	LogLevel        LogLevel         // Level of logging to use.
	LogFilePath     string           // File path for logging if file logging is enabled.
	Mode            TransportMode    // Which transport NewTransport builds.
	ServerURL       string           // Base websocket URL, e.g. wss://host:8080.
	Room            string           // Path segment identifying the session.
	KeepAlive       time.Duration    // Interval between keep-alive probes.
	DialTimeout     time.Duration    // Upper bound on the websocket handshake.
	SendBufferSize  int              // Outbound events held while not connected.
	Player          Player           // Sink for received and looped-back events.
	MIDIEventFilter *MIDIEventFilter // Optional filter for captured MIDI events.
	CoreMIDIConfig  *CoreMIDIConfig  // Configuration specific to CoreMIDI.
	InputPort       string           // Substring of the input port name for the portable backend.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile directs log output to path.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithMode selects the transport implementation.
func WithMode(mode TransportMode) Option {
	return func(opts *ClientOptions) {
		opts.Mode = mode
	}
}

// WithServerURL sets the base websocket URL of the relay.
func WithServerURL(url string) Option {
	return func(opts *ClientOptions) {
		opts.ServerURL = url
	}
}

// WithRoom sets the session path segment appended to the server URL.
func WithRoom(room string) Option {
	return func(opts *ClientOptions) {
		opts.Room = room
	}
}

// WithKeepAliveInterval sets the keep-alive probe interval.
func WithKeepAliveInterval(d time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.KeepAlive = d
	}
}

// WithDialTimeout bounds the websocket handshake.
func WithDialTimeout(d time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.DialTimeout = d
	}
}

// WithSendBufferSize bounds how many events are held until the socket opens.
func WithSendBufferSize(n int) Option {
	return func(opts *ClientOptions) {
		opts.SendBufferSize = n
	}
}

// WithPlayer injects the Player every transport forwards events to.
func WithPlayer(p Player) Option {
	return func(opts *ClientOptions) {
		opts.Player = p
	}
}

// WithMIDIEventFilter sets the MIDI event filter for captured input.
func WithMIDIEventFilter(filter MIDIEventFilter) Option {
	return func(opts *ClientOptions) {
		opts.MIDIEventFilter = &filter
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithInputPort selects the input port used by the portable capture backend.
func WithInputPort(name string) Option {
	return func(opts *ClientOptions) {
		opts.InputPort = name
	}
}
