//go:build !windows
// +build !windows

package midiwindows

import (
	"errors"

	"github.com/leandrodaf/midilink/sdk/contracts"
)

// ErrUnavailable is returned by every call on non-Windows systems.
var ErrUnavailable = errors.New("WinMM MIDI is not available on this platform")

// NewMIDIClient always fails outside Windows; the factory never selects it there.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return nil, ErrUnavailable
}
