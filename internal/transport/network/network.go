// Package network implements the websocket Transport.
//
// A Transport owns at most one live connection. Each connection runs its
// own state machine (disconnected, connecting, connected, error), a writer
// that also drives the keep-alive ticker, and a reader that feeds the Player.
package network

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leandrodaf/midilink/internal/bus"
	"github.com/leandrodaf/midilink/sdk/contracts"
)

const (
	// DefaultKeepAlive is the interval between ping probes.
	DefaultKeepAlive = 5 * time.Second
	// DefaultSendBuffer bounds events queued while the socket is not open.
	DefaultSendBuffer = 256
	// DefaultDialTimeout bounds the websocket handshake.
	DefaultDialTimeout = 10 * time.Second

	writeWait  = 10 * time.Second
	closeGrace = 500 * time.Millisecond
)

var (
	// ErrEmptyEndpoint is returned when no server URL was configured.
	ErrEmptyEndpoint = errors.New("empty endpoint")
	// ErrBadScheme is returned for endpoints that are not ws, wss, http or https.
	ErrBadScheme = errors.New("unsupported endpoint scheme")
)

// Config configures a network Transport.
type Config struct {
	URL         string
	KeepAlive   time.Duration
	DialTimeout time.Duration
	SendBuffer  int
	Dialer      *websocket.Dialer
}

func (c Config) withDefaults() Config {
	if c.KeepAlive <= 0 {
		c.KeepAlive = DefaultKeepAlive
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	if c.Dialer == nil {
		c.Dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: c.DialTimeout,
		}
	}
	return c
}

// Endpoint joins the server URL and the room segment into one websocket URL.
// http and https are rewritten to ws and wss.
func Endpoint(server, room string) (string, error) {
	if server == "" {
		return "", ErrEmptyEndpoint
	}
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: %q", ErrBadScheme, u.Scheme)
	}
	if room != "" {
		u = u.JoinPath(room)
	}
	return u.String(), nil
}

// Transport exchanges events with remote peers over a websocket.
type Transport struct {
	cfg    Config
	player contracts.Player
	logger contracts.Logger
	events *bus.Bus[contracts.LoggerEvent]

	connectMu sync.Mutex // serializes Connect

	mu      sync.Mutex
	conn    *connection
	pending []contracts.TransportEvent
}

// New creates a disconnected Transport. Nothing is dialed until Connect.
func New(cfg Config, player contracts.Player, logger contracts.Logger) *Transport {
	return &Transport{
		cfg:    cfg.withDefaults(),
		player: player,
		logger: logger,
		events: bus.New[contracts.LoggerEvent](),
	}
}

// Endpoint returns the URL the transport dials.
func (t *Transport) Endpoint() string {
	return t.cfg.URL
}

// Events returns the telemetry stream.
func (t *Transport) Events() contracts.Telemetry {
	return t.events
}

// Send queues event for the wire. Events sent while no connection is live
// are held (up to the send buffer size) and flushed in order once the next
// connection opens. Overflow drops the newest event.
func (t *Transport) Send(event contracts.TransportEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil && t.conn.enqueue(event) {
		return
	}
	if len(t.pending) >= t.cfg.SendBuffer {
		t.logger.Warn("Send buffer full; event discarded",
			t.logger.Field().String("type", string(event.Type)))
		return
	}
	t.pending = append(t.pending, event)
}

// Connect replaces any live connection with a fresh one and starts dialing.
// It returns immediately; progress is reported on Events.
func (t *Transport) Connect() contracts.Connection {
	t.connectMu.Lock()
	defer t.connectMu.Unlock()

	t.mu.Lock()
	old := t.conn
	t.mu.Unlock()
	if old != nil {
		old.Disconnect()
		<-old.done
	}

	c := newConnection(t)

	t.mu.Lock()
	for _, ev := range t.pending {
		c.outbound <- ev
	}
	t.pending = nil
	t.conn = c
	t.mu.Unlock()

	c.start()
	return c
}

// reclaim puts events c queued but never wrote ahead of the pending buffer,
// keeping send order. It runs once c's context is cancelled, so no Send can
// enqueue on c afterwards. Events past the send buffer are dropped newest first.
func (t *Transport) reclaim(c *connection, unsent []contracts.TransportEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

drain:
	for {
		select {
		case ev := <-c.outbound:
			unsent = append(unsent, ev)
		default:
			break drain
		}
	}
	if len(unsent) == 0 {
		return
	}

	events := append(unsent, t.pending...)
	if dropped := len(events) - t.cfg.SendBuffer; dropped > 0 {
		t.logger.Warn("Send buffer full; unsent events discarded",
			t.logger.Field().String("connection", c.id),
			t.logger.Field().Int("dropped", dropped))
		events = events[:t.cfg.SendBuffer]
	}
	t.pending = events
	t.logger.Debug("Unsent events held for the next connection",
		t.logger.Field().String("connection", c.id),
		t.logger.Field().Int("count", len(events)))
}

// detach forgets c if it is still the current connection.
func (t *Transport) detach(c *connection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == c {
		t.conn = nil
	}
}
