package contracts

import "time"

// Player turns transport events into audible notes.
type Player interface {
	Send(event TransportEvent)
}

// Note is a single time-bounded note handed to an Engine.
type Note struct {
	Pitch     uint8
	Velocity  uint8
	Frequency float64       // Hz, equal temperament, A4 = 440
	Duration  time.Duration // attack to release
}

// Engine produces sound. Trigger must return promptly and release the note
// on its own after Duration.
type Engine interface {
	Trigger(note Note) error
}
