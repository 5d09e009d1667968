// Package player turns transport events into notes on an audio engine.
package player

import (
	"math"
	"time"

	"github.com/leandrodaf/midilink/sdk/contracts"
)

// DefaultNoteDuration is the fixed attack-to-release length of a triggered note.
const DefaultNoteDuration = 250 * time.Millisecond

// Player triggers one time-bounded note per note-on event. It keeps no state
// between calls, so it can be shared by every transport in the process.
type Player struct {
	engine   contracts.Engine
	logger   contracts.Logger
	duration time.Duration
}

// New creates a Player driving engine.
func New(engine contracts.Engine, logger contracts.Logger) *Player {
	return &Player{engine: engine, logger: logger, duration: DefaultNoteDuration}
}

// WithDuration returns a copy of p using d as the note length.
func (p *Player) WithDuration(d time.Duration) *Player {
	cp := *p
	cp.duration = d
	return &cp
}

// Send plays event if it is a note-on. Everything else is dropped silently.
func (p *Player) Send(event contracts.TransportEvent) {
	if event.Type != contracts.MIDIType || !event.MIDI.IsNoteOn() {
		return
	}

	pitch := clamp7(event.MIDI.Pitch())
	note := contracts.Note{
		Pitch:     pitch,
		Velocity:  max(clamp7(event.MIDI.Velocity()), 1),
		Frequency: Frequency(pitch),
		Duration:  p.duration,
	}
	if err := p.engine.Trigger(note); err != nil {
		p.logger.Warn("Failed to trigger note",
			p.logger.Field().Uint8("pitch", pitch),
			p.logger.Field().Error("error", err))
	}
}

// Frequency converts a MIDI note number to Hz (A4 = 69 = 440Hz).
func Frequency(pitch uint8) float64 {
	return 440 * math.Pow(2, (float64(pitch)-69)/12)
}

func clamp7(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 127:
		return 127
	}
	return uint8(v)
}
