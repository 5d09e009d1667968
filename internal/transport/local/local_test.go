package local

import (
	"reflect"
	"testing"

	"github.com/leandrodaf/midilink/internal/logger"
	"github.com/leandrodaf/midilink/sdk/contracts"
	"go.uber.org/zap/zaptest"
)

type recordingPlayer struct {
	events []contracts.TransportEvent
}

func (p *recordingPlayer) Send(e contracts.TransportEvent) {
	p.events = append(p.events, e)
}

func TestSendReachesPlayerInOrder(t *testing.T) {
	p := &recordingPlayer{}
	tr := New(p, logger.FromZap(zaptest.NewLogger(t)))

	sent := []contracts.TransportEvent{
		contracts.NewMIDIEvent(144, 60, 100),
		contracts.NewMIDIEvent(144, 64, 100),
		contracts.NewMIDIEvent(128, 60, 0),
		contracts.NewMIDIEvent(128, 64, 0),
	}
	for i, e := range sent {
		tr.Send(e)
		if len(p.events) != i+1 {
			t.Fatalf("event %d not delivered synchronously", i)
		}
	}

	if !reflect.DeepEqual(p.events, sent) {
		t.Errorf("player got %v, want %v", p.events, sent)
	}
}

func TestConnectAndDisconnectTelemetry(t *testing.T) {
	tr := New(&recordingPlayer{}, logger.FromZap(zaptest.NewLogger(t)))

	var got []contracts.LoggerEvent
	unsubscribe := tr.Events().Subscribe(func(e contracts.LoggerEvent) { got = append(got, e) })
	defer unsubscribe()

	conn := tr.Connect()
	if conn.ID() == "" {
		t.Error("connection has no id")
	}
	conn.Disconnect()
	conn.Disconnect()

	want := []contracts.LoggerEvent{
		contracts.StatusEvent(contracts.Connected),
		contracts.StatusEvent(contracts.Disconnected),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("telemetry = %v, want %v", got, want)
	}
}

func TestImplementsTransport(t *testing.T) {
	var _ contracts.Transport = New(&recordingPlayer{}, logger.NewNopLogger())
}
