package midilink

import (
	"github.com/leandrodaf/midilink/internal/player"
	"github.com/leandrodaf/midilink/sdk/contracts"
)

// NewTransport creates the transport selected by WithMode (local by default).
// The transport is idle until Connect is called.
//
// opts ...contracts.Option: A variadic list of option functions to customize the transport.
//
// Returns:
//   - contracts.Transport: The local or network transport.
//   - error: An error if the options are invalid (unknown mode, bad endpoint).
func NewTransport(opts ...contracts.Option) (contracts.Transport, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return newTransport(&options)
}

// NewInputClient creates the capture backend for the current operating system.
func NewInputClient(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return newInputClient(&options)
}

// NewPlayer creates a Player that triggers notes on engine.
func NewPlayer(engine contracts.Engine, logger contracts.Logger) contracts.Player {
	return player.New(engine, logger)
}
