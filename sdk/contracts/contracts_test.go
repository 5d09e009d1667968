package contracts

import (
	"testing"
	"time"
)

func TestEventTypeKnown(t *testing.T) {
	for _, tt := range []EventType{MIDIType, PingType, PongType} {
		if !tt.Known() {
			t.Errorf("%q not known", tt)
		}
	}
	if EventType("chat").Known() {
		t.Error("chat is known")
	}
}

func TestPingEventClampsNegative(t *testing.T) {
	if got := PingEvent(-time.Millisecond).Ping; got != 0 {
		t.Errorf("PingEvent(-1ms) = %v", got)
	}
	e := PingEvent(15 * time.Millisecond)
	if e.Kind != PingKind || e.Ping != 15*time.Millisecond {
		t.Errorf("PingEvent = %+v", e)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name           string
		status, d1, d2 byte
		wantCmd        byte
	}{
		{"note on ch1", 0x90, 60, 100, 0x90},
		{"note on ch10", 0x99, 36, 80, 0x90},
		{"zero velocity", 0x90, 60, 0, 0x80},
		{"note off ch3", 0x82, 60, 10, 0x80},
		{"control change", 0xB0, 7, 100, 0xB0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.status, tt.d1, tt.d2)
			if got.Command != tt.wantCmd || got.Note != tt.d1 || got.Velocity != tt.d2 {
				t.Errorf("Normalize = %+v", got)
			}
		})
	}
}

func TestFilterAllows(t *testing.T) {
	var none *MIDIEventFilter
	if !none.Allows(0xB0) {
		t.Error("nil filter rejected a command")
	}
	f := &MIDIEventFilter{Commands: []MIDICommand{NoteOn}}
	if !f.Allows(0x90) || f.Allows(0x80) {
		t.Error("filter did not match its commands")
	}
}

func TestMIDIEvent(t *testing.T) {
	e := MIDI{Command: 0x90, Note: 60, Velocity: 100}.Event()
	if e.Type != MIDIType || e.MIDI != (MIDIEvent{144, 60, 100}) || !e.MIDI.IsNoteOn() {
		t.Errorf("Event = %+v", e)
	}
}
