package midiport

import (
	"errors"
	"testing"

	"github.com/leandrodaf/midilink/internal/logger"
	"github.com/leandrodaf/midilink/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

func newTestClient(filter *contracts.MIDIEventFilter) *Client {
	return &Client{
		logger: logger.NewNopLogger(),
		filter: filter,
		ports:  func() []drivers.In { return nil },
	}
}

func TestHandleNormalizesAndFilters(t *testing.T) {
	c := newTestClient(&contracts.MIDIEventFilter{Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff}})
	events := make(chan contracts.MIDI, 8)
	c.StartCapture(events)

	c.handle(gomidi.NoteOn(3, 60, 100), 0)
	c.handle(gomidi.NoteOn(3, 60, 0), 0)
	c.handle(gomidi.ControlChange(3, 7, 100), 0)
	c.handle(gomidi.Message{0x90}, 0)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	on, off := <-events, <-events
	if on.Command != byte(contracts.NoteOn) || on.Note != 60 || on.Velocity != 100 {
		t.Errorf("note on = %+v", on)
	}
	if off.Command != byte(contracts.NoteOff) || off.Note != 60 {
		t.Errorf("zero-velocity note on = %+v, want note off", off)
	}
}

func TestHandleWithoutCaptureDrops(t *testing.T) {
	c := newTestClient(nil)
	c.handle(gomidi.NoteOn(0, 60, 100), 0)
	if err := c.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestNoPorts(t *testing.T) {
	c := newTestClient(nil)
	if _, err := c.ListDevices(); !errors.Is(err, ErrNoMIDIDevices) {
		t.Errorf("ListDevices err = %v", err)
	}
	if err := c.SelectDevice(0); !errors.Is(err, ErrInvalidMIDIDevice) {
		t.Errorf("SelectDevice err = %v", err)
	}
	if _, err := c.FindDevice("keystation"); !errors.Is(err, ErrInvalidMIDIDevice) {
		t.Errorf("FindDevice err = %v", err)
	}
}

type fakeIn struct {
	drivers.In
	name string
}

func (f fakeIn) String() string { return f.name }

func TestSelectDeviceByName(t *testing.T) {
	ports := []drivers.In{fakeIn{name: "Midi Through"}, fakeIn{name: "Keystation 49"}}
	var opened string
	c := &Client{
		logger: logger.NewNopLogger(),
		named:  "keystation",
		ports:  func() []drivers.In { return ports },
		listen: func(in drivers.In, _ func(gomidi.Message, int32)) (func(), error) {
			opened = in.String()
			return func() {}, nil
		},
	}

	if err := c.SelectDevice(-1); err != nil {
		t.Fatalf("SelectDevice: %v", err)
	}
	if opened != "Keystation 49" {
		t.Errorf("opened %q, want Keystation 49", opened)
	}

	c.named = "launchpad"
	if err := c.SelectDevice(-1); !errors.Is(err, ErrInvalidMIDIDevice) {
		t.Errorf("unknown name err = %v", err)
	}
}
