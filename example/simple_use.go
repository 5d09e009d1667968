package main

import (
	"fmt"
	"time"

	"github.com/leandrodaf/midilink/internal/logger"
	"github.com/leandrodaf/midilink/internal/player"
	"github.com/leandrodaf/midilink/sdk/contracts"
	"github.com/leandrodaf/midilink/sdk/midilink"
)

func main() {
	log := logger.NewDevelopmentLogger()

	transport, err := midilink.NewTransport(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.DebugLevel),
		contracts.WithMode(contracts.LocalMode),
		contracts.WithPlayer(midilink.NewPlayer(player.LogEngine{Logger: log}, log)),
	)
	if err != nil {
		log.Error("Failed to create transport", log.Field().Error("error", err))
		return
	}

	unsubscribe := transport.Events().Subscribe(func(e contracts.LoggerEvent) {
		fmt.Println("telemetry:", e.Kind, e.Status)
	})
	defer unsubscribe()

	conn := transport.Connect()
	defer conn.Disconnect()

	// C major arpeggio.
	for _, pitch := range []int{60, 64, 67, 72} {
		transport.Send(contracts.NewMIDIEvent(int(contracts.NoteOn), pitch, 100))
		time.Sleep(200 * time.Millisecond)
		transport.Send(contracts.NewMIDIEvent(int(contracts.NoteOff), pitch, 0))
	}
}
