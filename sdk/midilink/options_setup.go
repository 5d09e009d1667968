package midilink

import (
	"github.com/leandrodaf/midilink/internal/logger"
	"github.com/leandrodaf/midilink/internal/player"
	"github.com/leandrodaf/midilink/internal/transport/network"
	"github.com/leandrodaf/midilink/sdk/contracts"
)

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.Mode == "" {
		options.Mode = contracts.LocalMode
	}
	if options.KeepAlive <= 0 {
		options.KeepAlive = network.DefaultKeepAlive
	}
	if options.DialTimeout <= 0 {
		options.DialTimeout = network.DefaultDialTimeout
	}
	if options.SendBufferSize <= 0 {
		options.SendBufferSize = network.DefaultSendBuffer
	}
	if options.Player == nil {
		options.Player = player.New(player.LogEngine{Logger: options.Logger}, options.Logger)
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "midilink"}
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
	return *options, nil
}
