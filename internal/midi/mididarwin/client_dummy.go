//go:build !darwin
// +build !darwin

package mididarwin

import (
	"errors"

	"github.com/leandrodaf/midilink/sdk/contracts"
)

// ErrUnavailable is returned by every call on non-macOS systems.
var ErrUnavailable = errors.New("CoreMIDI is not available on this platform")

// NewMIDIClient always fails outside macOS; the factory never selects it there.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return nil, ErrUnavailable
}
