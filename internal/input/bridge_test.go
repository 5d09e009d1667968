package input

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/midilink/internal/logger"
	"github.com/leandrodaf/midilink/sdk/contracts"
	"go.uber.org/zap/zaptest"
)

type fakeClient struct {
	selectErr error
	events    chan contracts.MIDI
	stopped   int
}

func (f *fakeClient) Stop() error                                  { f.stopped++; return nil }
func (f *fakeClient) ListDevices() ([]contracts.DeviceInfo, error) { return nil, nil }
func (f *fakeClient) SelectDevice(int) error                       { return f.selectErr }
func (f *fakeClient) StartCapture(ch chan contracts.MIDI)          { f.events = ch }

type sink struct {
	mu   sync.Mutex
	sent []contracts.TransportEvent
}

func (s *sink) Send(e contracts.TransportEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, e)
}
func (s *sink) Connect() contracts.Connection { return nil }
func (s *sink) Events() contracts.Telemetry   { return nil }
func (s *sink) received() []contracts.TransportEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contracts.TransportEvent(nil), s.sent...)
}

func TestBridgeForwardsNotesOnly(t *testing.T) {
	client := &fakeClient{}
	out := &sink{}
	b := NewBridge(client, out, nil, logger.FromZap(zaptest.NewLogger(t)))

	if err := b.Start(0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	client.events <- contracts.MIDI{Command: 0x90, Note: 60, Velocity: 100}
	client.events <- contracts.MIDI{Command: 0xB0, Note: 7, Velocity: 100}
	client.events <- contracts.MIDI{Command: 0x80, Note: 60}

	want := []contracts.TransportEvent{
		contracts.NewMIDIEvent(144, 60, 100),
		contracts.NewMIDIEvent(128, 60, 0),
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(out.received()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := out.received(); !reflect.DeepEqual(got, want) {
		t.Errorf("sent %v, want %v", got, want)
	}

	if err := b.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	_ = b.Stop()
	if client.stopped != 1 {
		t.Errorf("client stopped %d times", client.stopped)
	}
}

func TestBridgeStartFailure(t *testing.T) {
	boom := errors.New("no such device")
	b := NewBridge(&fakeClient{selectErr: boom}, &sink{}, nil, logger.NewNopLogger())
	if err := b.Start(3); !errors.Is(err, boom) {
		t.Errorf("Start err = %v", err)
	}
}
