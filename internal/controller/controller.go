// Package controller consumes transport telemetry and keeps the observable
// connection state (status and latency) that a display renders.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/leandrodaf/midilink/sdk/contracts"
)

// State is a snapshot of what the status display shows.
type State struct {
	Status     contracts.ConnectionStatus
	Latency    time.Duration
	HasLatency bool
	Reconnects int
}

// Option configures a Controller.
type Option func(*Controller)

// WithReconnect makes the controller call Connect again after an error,
// waiting initial, then doubling up to max between attempts.
func WithReconnect(initial, max time.Duration) Option {
	return func(c *Controller) {
		c.reconnect = true
		c.initial = initial
		c.max = max
	}
}

// Controller drives a Transport's connection and mirrors its telemetry.
type Controller struct {
	transport contracts.Transport
	logger    contracts.Logger

	reconnect bool
	initial   time.Duration
	max       time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	errs    chan struct{}
	updates chan State

	mu          sync.Mutex
	state       State
	conn        contracts.Connection
	attempt     int
	unsubscribe func()
	closed      bool
}

// New creates a controller for transport. Call Start to connect.
func New(transport contracts.Transport, logger contracts.Logger, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		transport: transport,
		logger:    logger,
		initial:   time.Second,
		max:       30 * time.Second,
		ctx:       ctx,
		cancel:    cancel,
		errs:      make(chan struct{}, 1),
		updates:   make(chan State, 1),
		state:     State{Status: contracts.Disconnected},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes to telemetry and opens the first connection.
func (c *Controller) Start() {
	unsubscribe := c.transport.Events().Subscribe(c.onEvent)

	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	if c.reconnect {
		c.wg.Add(1)
		go c.reconnectLoop()
	}
	c.connect()
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Updates delivers the latest State after each change. Intermediate states
// may be skipped if the reader falls behind. Closed by Close.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// Close stops reconnecting, detaches from telemetry and disconnects.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	close(c.updates)
	conn := c.conn
	c.conn = nil
	c.state.Status = contracts.Disconnected
	c.mu.Unlock()

	if conn != nil {
		conn.Disconnect()
	}
}

func (c *Controller) connect() {
	conn := c.transport.Connect()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
}

func (c *Controller) onEvent(e contracts.LoggerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	switch e.Kind {
	case contracts.ConnectionStatusKind:
		c.state.Status = e.Status
		switch e.Status {
		case contracts.Connected:
			c.attempt = 0
		case contracts.Error:
			if c.reconnect {
				select {
				case c.errs <- struct{}{}:
				default:
				}
			}
		}
	case contracts.PingKind:
		c.state.Latency = e.Ping
		c.state.HasLatency = true
	default:
		return
	}
	c.publishLocked()
}

// publishLocked replaces any unread State with the current one.
func (c *Controller) publishLocked() {
	select {
	case <-c.updates:
	default:
	}
	c.updates <- c.state
}

func (c *Controller) reconnectLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.errs:
		}

		c.mu.Lock()
		delay := c.delay(c.attempt)
		c.attempt++
		c.mu.Unlock()

		c.logger.Info("Reconnecting", c.logger.Field().Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-c.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		c.mu.Lock()
		c.state.Reconnects++
		c.mu.Unlock()
		c.connect()
	}
}

func (c *Controller) delay(attempt int) time.Duration {
	d := c.initial
	for i := 0; i < attempt && d < c.max; i++ {
		d *= 2
	}
	if d > c.max {
		d = c.max
	}
	return d
}
