package codec

import (
	"errors"
	"testing"

	"github.com/leandrodaf/midilink/sdk/contracts"
)

func TestEncodeMIDIFrame(t *testing.T) {
	data, err := Encode(contracts.NewMIDIEvent(144, 60, 100))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got, want := string(data), `{"type":"midi","midi":[144,60,100]}`; got != want {
		t.Errorf("Encode = %s, want %s", got, want)
	}
}

func TestEncodeProbes(t *testing.T) {
	ping, _ := Encode(contracts.Ping())
	pong, _ := Encode(contracts.Pong())
	if string(ping) != `{"type":"ping"}` {
		t.Errorf("ping = %s", ping)
	}
	if string(pong) != `{"type":"pong"}` {
		t.Errorf("pong = %s", pong)
	}
}

func TestMIDIRoundTrip(t *testing.T) {
	triples := []contracts.MIDIEvent{
		{144, 60, 100},
		{128, 60, 0},
		{176, 7, 127},
		{144, 0, 1},
		{144, 127, 127},
	}
	for _, m := range triples {
		in := contracts.TransportEvent{Type: contracts.MIDIType, MIDI: m}
		data, err := Encode(in)
		if err != nil {
			t.Fatalf("Encode(%v): %v", m, err)
		}
		out, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(%s): %v", data, err)
		}
		if out != in {
			t.Errorf("round trip %v -> %v", in, out)
		}
	}
}

func TestDecodeRejectsBadFrames(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `hello`, ErrMalformedFrame},
		{"empty", ``, ErrMalformedFrame},
		{"array", `[1,2,3]`, ErrMalformedFrame},
		{"no type", `{"midi":[144,60,100]}`, ErrMalformedFrame},
		{"midi without payload", `{"type":"midi"}`, ErrMalformedFrame},
		{"midi short", `{"type":"midi","midi":[144,60]}`, ErrMalformedFrame},
		{"midi strings", `{"type":"midi","midi":["a","b","c"]}`, ErrMalformedFrame},
		{"unknown", `{"type":"chat","text":"hi"}`, ErrUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode(%q) err = %v, want %v", tt.data, err, tt.want)
			}
		})
	}
}

func TestDecodeIgnoresExtraFields(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"pong","sentAt":12345}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Type != contracts.PongType {
		t.Errorf("type = %q", ev.Type)
	}
}

func TestEncodeUnknownType(t *testing.T) {
	if _, err := Encode(contracts.TransportEvent{Type: "chat"}); !errors.Is(err, ErrUnknownType) {
		t.Errorf("err = %v, want ErrUnknownType", err)
	}
}
