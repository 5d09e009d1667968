// Package codec converts TransportEvents to and from wire frames.
//
// A frame is a JSON object with a required "type" discriminator; midi
// frames also carry "midi": [status, pitch, velocity].
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/leandrodaf/midilink/sdk/contracts"
)

var (
	// ErrMalformedFrame is returned for payloads that are not a valid frame.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrUnknownType is returned for well-formed frames with an unrecognized tag.
	ErrUnknownType = errors.New("unknown frame type")
)

type frame struct {
	Type contracts.EventType `json:"type"`
	MIDI *[3]int             `json:"midi,omitempty"`
}

// Encode serializes event into a single frame.
func Encode(event contracts.TransportEvent) ([]byte, error) {
	if !event.Type.Known() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, event.Type)
	}

	f := frame{Type: event.Type}
	if event.Type == contracts.MIDIType {
		triple := [3]int(event.MIDI)
		f.MIDI = &triple
	}
	return json.Marshal(f)
}

// Decode parses one frame. The returned error wraps ErrMalformedFrame or
// ErrUnknownType; callers drop the frame in either case.
func Decode(data []byte) (contracts.TransportEvent, error) {
	var raw struct {
		Type *contracts.EventType `json:"type"`
		MIDI json.RawMessage      `json:"midi"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return contracts.TransportEvent{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if raw.Type == nil {
		return contracts.TransportEvent{}, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}

	switch *raw.Type {
	case contracts.PingType:
		return contracts.Ping(), nil
	case contracts.PongType:
		return contracts.Pong(), nil
	case contracts.MIDIType:
		var triple []int
		if len(raw.MIDI) == 0 {
			return contracts.TransportEvent{}, fmt.Errorf("%w: midi frame without payload", ErrMalformedFrame)
		}
		if err := json.Unmarshal(raw.MIDI, &triple); err != nil {
			return contracts.TransportEvent{}, fmt.Errorf("%w: midi payload: %v", ErrMalformedFrame, err)
		}
		if len(triple) != 3 {
			return contracts.TransportEvent{}, fmt.Errorf("%w: midi payload has %d values", ErrMalformedFrame, len(triple))
		}
		return contracts.NewMIDIEvent(triple[0], triple[1], triple[2]), nil
	default:
		return contracts.TransportEvent{}, fmt.Errorf("%w: %q", ErrUnknownType, *raw.Type)
	}
}
