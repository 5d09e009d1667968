// Package input forwards locally captured MIDI into a Transport.
package input

import (
	"sync"

	"github.com/leandrodaf/midilink/sdk/contracts"
)

// DefaultFilter forwards only note-on and note-off.
var DefaultFilter = contracts.MIDIEventFilter{
	Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
}

// Bridge reads a capture client and calls Transport.Send for each note event.
type Bridge struct {
	client    contracts.ClientMIDI
	transport contracts.Transport
	filter    *contracts.MIDIEventFilter
	logger    contracts.Logger

	events chan contracts.MIDI
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewBridge creates a bridge. A nil filter means DefaultFilter.
func NewBridge(client contracts.ClientMIDI, transport contracts.Transport, filter *contracts.MIDIEventFilter, logger contracts.Logger) *Bridge {
	if filter == nil {
		f := DefaultFilter
		filter = &f
	}
	return &Bridge{
		client:    client,
		transport: transport,
		filter:    filter,
		logger:    logger,
		events:    make(chan contracts.MIDI, 128),
		done:      make(chan struct{}),
	}
}

// Start selects deviceID and begins forwarding.
func (b *Bridge) Start(deviceID int) error {
	if err := b.client.SelectDevice(deviceID); err != nil {
		return err
	}
	b.client.StartCapture(b.events)

	b.wg.Add(1)
	go b.forward()
	return nil
}

// Stop stops the capture client and the forwarding goroutine.
func (b *Bridge) Stop() error {
	var err error
	b.once.Do(func() {
		err = b.client.Stop()
		close(b.done)
		b.wg.Wait()
	})
	return err
}

func (b *Bridge) forward() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case ev := <-b.events:
			if !b.filter.Allows(ev.Command) {
				b.logger.Debug("Input event filtered", b.logger.Field().Uint8("command", ev.Command))
				continue
			}
			b.transport.Send(ev.Event())
		}
	}
}
