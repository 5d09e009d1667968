// Package local implements the loopback Transport: events never leave the
// process and go straight to the Player.
package local

import (
	"sync"

	"github.com/google/uuid"
	"github.com/leandrodaf/midilink/internal/bus"
	"github.com/leandrodaf/midilink/sdk/contracts"
)

// Transport delivers every sent event synchronously to its Player.
type Transport struct {
	player contracts.Player
	logger contracts.Logger
	events *bus.Bus[contracts.LoggerEvent]
}

// New creates a loopback transport around player.
func New(player contracts.Player, logger contracts.Logger) *Transport {
	return &Transport{
		player: player,
		logger: logger,
		events: bus.New[contracts.LoggerEvent](),
	}
}

// Send hands event to the Player before returning.
func (t *Transport) Send(event contracts.TransportEvent) {
	t.player.Send(event)
}

// Connect reports connected immediately. It cannot fail.
func (t *Transport) Connect() contracts.Connection {
	c := &connection{id: uuid.NewString(), t: t}
	t.logger.Info("Local transport connected", t.logger.Field().String("connection", c.id))
	t.events.Publish(contracts.StatusEvent(contracts.Connected))
	return c
}

// Events returns the telemetry stream.
func (t *Transport) Events() contracts.Telemetry {
	return t.events
}

type connection struct {
	id   string
	t    *Transport
	once sync.Once
}

func (c *connection) ID() string { return c.id }

func (c *connection) Disconnect() {
	c.once.Do(func() {
		c.t.logger.Info("Local transport disconnected", c.t.logger.Field().String("connection", c.id))
		c.t.events.Publish(contracts.StatusEvent(contracts.Disconnected))
	})
}
