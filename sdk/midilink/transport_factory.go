package midilink

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midilink/internal/midi/mididarwin"
	"github.com/leandrodaf/midilink/internal/midi/midiport"
	"github.com/leandrodaf/midilink/internal/midi/midiwindows"
	"github.com/leandrodaf/midilink/internal/transport/local"
	"github.com/leandrodaf/midilink/internal/transport/network"
	"github.com/leandrodaf/midilink/sdk/contracts"
)

var (
	// ErrUnknownMode is returned for a transport mode with no implementation.
	ErrUnknownMode = errors.New("unknown transport mode")
	// ErrUnsupportedOS is returned when no native capture backend exists for the OS.
	ErrUnsupportedOS = errors.New("unsupported operating system")
)

// transportInitializers maps modes to transport constructors.
var transportInitializers = map[contracts.TransportMode]func(*contracts.ClientOptions) (contracts.Transport, error){
	contracts.LocalMode:   newLocalTransport,
	contracts.NetworkMode: newNetworkTransport,
}

// inputInitializers maps OS names to native capture backends.
var inputInitializers = map[string]func(*contracts.ClientOptions) (contracts.ClientMIDI, error){
	"darwin":  mididarwin.NewMIDIClient,  // macOS (CoreMIDI).
	"windows": midiwindows.NewMIDIClient, // Windows (WinMM).
}

func newTransport(opts *contracts.ClientOptions) (contracts.Transport, error) {
	if initializer, exists := transportInitializers[opts.Mode]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
}

func newLocalTransport(opts *contracts.ClientOptions) (contracts.Transport, error) {
	return local.New(opts.Player, opts.Logger), nil
}

func newNetworkTransport(opts *contracts.ClientOptions) (contracts.Transport, error) {
	endpoint, err := network.Endpoint(opts.ServerURL, opts.Room)
	if err != nil {
		return nil, err
	}
	return network.New(network.Config{
		URL:         endpoint,
		KeepAlive:   opts.KeepAlive,
		DialTimeout: opts.DialTimeout,
		SendBuffer:  opts.SendBufferSize,
	}, opts.Player, opts.Logger), nil
}

// newInputClient prefers the native backend for the OS. A named input port
// (WithInputPort) is only resolved by the gomidi backend, so it selects that
// one on every OS. Elsewhere it falls back to gomidi ports and reports the
// missing native backend as a warning; the transport keeps working either way.
func newInputClient(opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	if opts.InputPort != "" {
		opts.Logger.Info("Using portable input for named port",
			opts.Logger.Field().String("port", opts.InputPort))
		return midiport.NewMIDIClient(opts)
	}
	if initializer, exists := inputInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	opts.Logger.Warn("No native MIDI backend; using portable input",
		opts.Logger.Field().Error("error", fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)))
	return midiport.NewMIDIClient(opts)
}
