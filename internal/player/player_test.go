package player

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/midilink/internal/logger"
	"github.com/leandrodaf/midilink/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap/zaptest"
)

type recordingEngine struct {
	mu    sync.Mutex
	notes []contracts.Note
	err   error
}

func (r *recordingEngine) Trigger(n contracts.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return r.err
}

func TestPlayerTriggersOnlyOnNoteOn(t *testing.T) {
	tests := []struct {
		name  string
		event contracts.TransportEvent
		want  int
	}{
		{"note on", contracts.NewMIDIEvent(144, 60, 100), 1},
		{"note off", contracts.NewMIDIEvent(128, 60, 0), 0},
		{"note on channel 2", contracts.NewMIDIEvent(145, 60, 100), 0},
		{"control change", contracts.NewMIDIEvent(176, 7, 100), 0},
		{"ping", contracts.Ping(), 0},
		{"pong", contracts.Pong(), 0},
		{"unknown tag", contracts.TransportEvent{Type: "chat"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &recordingEngine{}
			p := New(engine, logger.FromZap(zaptest.NewLogger(t)))

			p.Send(tt.event)

			if len(engine.notes) != tt.want {
				t.Errorf("got %d notes, want %d", len(engine.notes), tt.want)
			}
		})
	}
}

func TestPlayerNoteShape(t *testing.T) {
	engine := &recordingEngine{}
	p := New(engine, logger.FromZap(zaptest.NewLogger(t))).WithDuration(100 * time.Millisecond)

	p.Send(contracts.NewMIDIEvent(144, 69, 0))

	n := engine.notes[0]
	if n.Pitch != 69 || n.Frequency != 440 {
		t.Errorf("note = %+v, want pitch 69 at 440Hz", n)
	}
	if n.Velocity != 1 {
		t.Errorf("velocity = %d, want audible minimum 1", n.Velocity)
	}
	if n.Duration != 100*time.Millisecond {
		t.Errorf("duration = %v", n.Duration)
	}
}

func TestPlayerSwallowsEngineErrors(t *testing.T) {
	engine := &recordingEngine{err: errors.New("device gone")}
	p := New(engine, logger.FromZap(zaptest.NewLogger(t)))

	p.Send(contracts.NewMIDIEvent(144, 60, 100))

	if len(engine.notes) != 1 {
		t.Fatalf("engine not called")
	}
}

func TestFrequency(t *testing.T) {
	tests := []struct {
		pitch uint8
		want  float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6256},
	}
	for _, tt := range tests {
		if got := Frequency(tt.pitch); math.Abs(got-tt.want) > 0.001 {
			t.Errorf("Frequency(%d) = %f, want %f", tt.pitch, got, tt.want)
		}
	}
}

type sentMessages struct {
	mu   sync.Mutex
	msgs []gomidi.Message
}

func (s *sentMessages) send(m gomidi.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, m)
	return nil
}

func (s *sentMessages) snapshot() []gomidi.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gomidi.Message(nil), s.msgs...)
}

func TestPortEngineReleasesAfterDuration(t *testing.T) {
	out := &sentMessages{}
	e := newPortEngine(out.send, 2, logger.FromZap(zaptest.NewLogger(t)))

	if err := e.Trigger(contracts.Note{Pitch: 60, Velocity: 90, Duration: 20 * time.Millisecond}); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	var ch, key, vel uint8
	msgs := out.snapshot()
	if len(msgs) != 1 || !msgs[0].GetNoteOn(&ch, &key, &vel) {
		t.Fatalf("expected a single note-on, got %v", msgs)
	}
	if ch != 2 || key != 60 || vel != 90 {
		t.Errorf("note-on = ch %d key %d vel %d", ch, key, vel)
	}

	deadline := time.Now().Add(time.Second)
	for len(out.snapshot()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	msgs = out.snapshot()
	if len(msgs) != 2 || !msgs[1].GetNoteOff(&ch, &key, &vel) || key != 60 {
		t.Errorf("expected note-off for 60, got %v", msgs)
	}
}

func TestPortEngineCloseReleasesPending(t *testing.T) {
	out := &sentMessages{}
	e := newPortEngine(out.send, 0, logger.FromZap(zaptest.NewLogger(t)))

	_ = e.Trigger(contracts.Note{Pitch: 64, Velocity: 80, Duration: time.Hour})
	_ = e.Close()
	_ = e.Close()
	_ = e.Trigger(contracts.Note{Pitch: 65, Velocity: 80, Duration: time.Hour})

	msgs := out.snapshot()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want note-on and note-off", len(msgs))
	}
	var ch, key, vel uint8
	if !msgs[1].GetNoteOff(&ch, &key, &vel) || key != 64 {
		t.Errorf("second message = %v, want note-off 64", msgs[1])
	}
}
