package network

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/leandrodaf/midilink/internal/codec"
	"github.com/leandrodaf/midilink/sdk/contracts"
)

// connection is one socket session. It is never reused: after Disconnect or a
// socket failure the Transport builds a new one on the next Connect.
type connection struct {
	id       string
	t        *Transport
	ctx      context.Context
	cancel   context.CancelFunc
	outbound chan contracts.TransportEvent
	probe    atomic.Pointer[time.Time] // when the last ping was written
	readDone chan struct{}             // closed when readLoop exits
	done     chan struct{}             // closed when run has returned unsent events

	mu     sync.Mutex
	status contracts.ConnectionStatus
	ws     *websocket.Conn
	closed bool // Disconnect was called
}

func newConnection(t *Transport) *connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &connection{
		id:       uuid.NewString(),
		t:        t,
		ctx:      ctx,
		cancel:   cancel,
		outbound: make(chan contracts.TransportEvent, t.cfg.SendBuffer),
		readDone: make(chan struct{}),
		done:     make(chan struct{}),
		status:   contracts.Disconnected,
	}
}

func (c *connection) ID() string { return c.id }

func (c *connection) start() {
	c.mu.Lock()
	c.setStatusLocked(contracts.Connecting)
	c.mu.Unlock()

	go c.run()
}

// enqueue reports false once the connection is finished, so the Transport
// can hold the event for the next one.
func (c *connection) enqueue(event contracts.TransportEvent) bool {
	if c.ctx.Err() != nil {
		return false
	}
	select {
	case c.outbound <- event:
	default:
		c.t.logger.Warn("Outbound queue full; event discarded",
			c.t.logger.Field().String("connection", c.id),
			c.t.logger.Field().String("type", string(event.Type)))
	}
	return true
}

// setStatusLocked publishes a transition. Staying in the same state emits nothing.
func (c *connection) setStatusLocked(status contracts.ConnectionStatus) {
	if c.status == status {
		return
	}
	c.t.logger.Info("Connection status changed",
		c.t.logger.Field().String("connection", c.id),
		c.t.logger.Field().String("from", string(c.status)),
		c.t.logger.Field().String("to", string(status)))
	c.status = status
	c.t.events.Publish(contracts.StatusEvent(status))
}

// run dials, then serves the socket until the connection ends. Whatever was
// queued but not written goes back to the Transport for the next connection.
func (c *connection) run() {
	var unsent []contracts.TransportEvent
	defer func() {
		c.t.reclaim(c, unsent)
		close(c.done)
	}()

	ws, err := c.dial()
	if err != nil {
		c.fail(err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		ws.Close()
		return
	}
	c.ws = ws
	c.setStatusLocked(contracts.Connected)
	c.mu.Unlock()

	go c.readLoop(ws)
	unsent = c.writeLoop(ws)
}

// dial opens the socket. Cancelling the connection aborts a stalled
// handshake as well as the TCP connect.
func (c *connection) dial() (*websocket.Conn, error) {
	ctx, cancel := context.WithTimeout(c.ctx, c.t.cfg.DialTimeout)
	defer cancel()

	dialer := *c.t.cfg.Dialer
	netDial := dialer.NetDialContext
	if netDial == nil {
		netDial = (&net.Dialer{}).DialContext
	}
	var stop func() bool
	dialer.NetDialContext = func(dctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := netDial(dctx, network, addr)
		if err == nil {
			stop = context.AfterFunc(ctx, func() { conn.Close() })
		}
		return conn, err
	}

	ws, resp, err := dialer.DialContext(ctx, c.t.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if stop != nil && !stop() && err == nil {
		ws.Close()
		return nil, ctx.Err()
	}
	return ws, err
}

// writeLoop is the only writer on ws. It owns the keep-alive ticker, so the
// ticker dies with the loop whenever the connection leaves connected. It
// returns the event it was holding when the connection ended, if any.
func (c *connection) writeLoop(ws *websocket.Conn) []contracts.TransportEvent {
	ticker := time.NewTicker(c.t.cfg.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return nil
		case <-ticker.C:
			if c.ctx.Err() != nil {
				return nil
			}
			now := time.Now()
			c.probe.Store(&now)
			if err := c.write(ws, contracts.Ping()); err != nil {
				c.writeFailed(err)
				return nil
			}
		case event := <-c.outbound:
			if c.ctx.Err() != nil {
				return []contracts.TransportEvent{event}
			}
			if err := c.write(ws, event); err != nil {
				c.writeFailed(err)
				return []contracts.TransportEvent{event}
			}
		}
	}
}

func (c *connection) write(ws *websocket.Conn, event contracts.TransportEvent) error {
	data, err := codec.Encode(event)
	if err != nil {
		c.t.logger.Warn("Dropping unencodable event",
			c.t.logger.Field().String("connection", c.id),
			c.t.logger.Field().Error("error", err))
		return nil
	}
	if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return ws.WriteMessage(websocket.TextMessage, data)
}

// writeFailed lets the reader report first: a peer that closes cleanly can
// break the socket under a write before its close frame has been read.
func (c *connection) writeFailed(err error) {
	select {
	case <-c.readDone:
	case <-time.After(closeGrace):
	}
	c.fail(err)
}

func (c *connection) readLoop(ws *websocket.Conn) {
	defer close(c.readDone)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.fail(err)
			return
		}
		if c.ctx.Err() != nil {
			return
		}
		c.handleFrame(data)
	}
}

func (c *connection) handleFrame(data []byte) {
	event, err := codec.Decode(data)
	if err != nil {
		c.t.logger.Debug("Dropping inbound frame",
			c.t.logger.Field().String("connection", c.id),
			c.t.logger.Field().Int("size", len(data)),
			c.t.logger.Field().Error("error", err))
		return
	}

	c.t.player.Send(event)

	if event.Type == contracts.PongType {
		c.reportLatency()
	}
}

func (c *connection) reportLatency() {
	sent := c.probe.Load()
	if sent == nil {
		return
	}
	rtt := time.Since(*sent)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != contracts.Connected {
		return
	}
	c.t.logger.Debug("Round trip measured",
		c.t.logger.Field().String("connection", c.id),
		c.t.logger.Field().Duration("rtt", rtt))
	c.t.events.Publish(contracts.PingEvent(rtt))
}

// fail converts a socket failure into a state transition. A clean close from
// the peer ends in disconnected; anything else ends in error.
func (c *connection) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.status == contracts.Error || c.status == contracts.Disconnected {
		return
	}

	c.cancel()
	if c.ws != nil {
		c.ws.Close()
	}

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.setStatusLocked(contracts.Disconnected)
		return
	}
	c.t.logger.Error("Connection failed",
		c.t.logger.Field().String("connection", c.id),
		c.t.logger.Field().String("endpoint", c.t.cfg.URL),
		c.t.logger.Field().Error("error", err))
	c.setStatusLocked(contracts.Error)
}

// Disconnect closes the socket, stops the keep-alive ticker and both loops.
// It is safe to call more than once and from any goroutine.
func (c *connection) Disconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	ws := c.ws
	c.setStatusLocked(contracts.Disconnected)
	c.mu.Unlock()

	if ws != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = ws.Close()
	}
	c.t.detach(c)
}
