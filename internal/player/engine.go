package player

import (
	"sync"
	"time"

	"github.com/leandrodaf/midilink/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PortEngine plays notes on a MIDI output port (a synth, or a virtual port
// routed to one). Each note gets its own note-off timer.
type PortEngine struct {
	send    func(gomidi.Message) error
	channel uint8
	logger  contracts.Logger

	mu      sync.Mutex
	pending map[*time.Timer]uint8
	closed  bool
}

// NewPortEngine opens out and plays on the given MIDI channel (0-15).
func NewPortEngine(out drivers.Out, channel uint8, logger contracts.Logger) (*PortEngine, error) {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, err
	}
	return newPortEngine(send, channel, logger), nil
}

func newPortEngine(send func(gomidi.Message) error, channel uint8, logger contracts.Logger) *PortEngine {
	return &PortEngine{
		send:    send,
		channel: channel & 0x0F,
		logger:  logger,
		pending: make(map[*time.Timer]uint8),
	}
}

// Trigger sends note-on now and note-off after note.Duration.
func (e *PortEngine) Trigger(note contracts.Note) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	if err := e.send(gomidi.NoteOn(e.channel, note.Pitch, note.Velocity)); err != nil {
		return err
	}

	var t *time.Timer
	t = time.AfterFunc(note.Duration, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.pending[t]; !ok {
			return
		}
		delete(e.pending, t)
		e.release(note.Pitch)
	})
	e.pending[t] = note.Pitch
	return nil
}

// Close releases every sounding note and stops further output.
func (e *PortEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	for t, pitch := range e.pending {
		t.Stop()
		e.release(pitch)
	}
	e.pending = nil
	return nil
}

func (e *PortEngine) release(pitch uint8) {
	if err := e.send(gomidi.NoteOff(e.channel, pitch)); err != nil {
		e.logger.Warn("Failed to release note",
			e.logger.Field().Uint8("pitch", pitch),
			e.logger.Field().Error("error", err))
	}
}

// LogEngine only logs notes. Used when no output port is configured.
type LogEngine struct {
	Logger contracts.Logger
}

// Trigger logs note at debug level.
func (e LogEngine) Trigger(note contracts.Note) error {
	e.Logger.Debug("Note",
		e.Logger.Field().Uint8("pitch", note.Pitch),
		e.Logger.Field().Float64("frequency", note.Frequency),
		e.Logger.Field().Duration("duration", note.Duration))
	return nil
}
