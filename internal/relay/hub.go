// Package relay is a minimal websocket relay: peers connecting to the same
// path join the same room, midi frames are fanned out to the other peers of
// the room, and pings are answered with pongs.
package relay

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/leandrodaf/midilink/internal/codec"
	"github.com/leandrodaf/midilink/sdk/contracts"
)

const (
	writeWait    = 10 * time.Second
	peerBuffer   = 256
	maxFrameSize = 4096
)

// ErrRoomNotFound is returned when a room has no peers.
var ErrRoomNotFound = errors.New("room not found")

type peer struct {
	id   string
	room string
	ws   *websocket.Conn
	send chan []byte
}

// Hub groups websocket peers into rooms.
type Hub struct {
	logger   contracts.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[string]*peer
}

// NewHub creates an empty hub.
func NewHub(logger contracts.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		rooms: make(map[string]map[string]*peer),
	}
}

// ServeHTTP upgrades the request and joins the room named by the path.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	room := strings.Trim(r.URL.Path, "/")
	if room == "" {
		http.Error(w, "room required", http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Upgrade failed", h.logger.Field().Error("error", err))
		return
	}
	ws.SetReadLimit(maxFrameSize)

	p := &peer{id: uuid.NewString(), room: room, ws: ws, send: make(chan []byte, peerBuffer)}
	h.register(p)
	defer h.unregister(p)

	go h.writePump(p)
	h.readPump(p)
}

// Rooms lists rooms that currently have peers.
func (h *Hub) Rooms() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		rooms = append(rooms, id)
	}
	sort.Strings(rooms)
	return rooms
}

// Peers returns the number of peers in room.
func (h *Hub) Peers(room string) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	peers, ok := h.rooms[room]
	if !ok {
		return 0, ErrRoomNotFound
	}
	return len(peers), nil
}

// Close disconnects every peer.
func (h *Hub) Close() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, peers := range h.rooms {
		for _, p := range peers {
			_ = p.ws.Close()
		}
	}
	return nil
}

func (h *Hub) register(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	peers, ok := h.rooms[p.room]
	if !ok {
		peers = make(map[string]*peer)
		h.rooms[p.room] = peers
	}
	peers[p.id] = p
	h.logger.Info("Peer joined",
		h.logger.Field().String("room", p.room),
		h.logger.Field().String("peer", p.id),
		h.logger.Field().Int("peers", len(peers)))
}

func (h *Hub) unregister(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	peers := h.rooms[p.room]
	if _, ok := peers[p.id]; !ok {
		return
	}
	delete(peers, p.id)
	if len(peers) == 0 {
		delete(h.rooms, p.room)
	}
	close(p.send)
	h.logger.Info("Peer left",
		h.logger.Field().String("room", p.room),
		h.logger.Field().String("peer", p.id))
}

func (h *Hub) readPump(p *peer) {
	for {
		_, data, err := p.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("Peer read failed",
					h.logger.Field().String("peer", p.id),
					h.logger.Field().Error("error", err))
			}
			return
		}

		event, err := codec.Decode(data)
		if err != nil {
			h.logger.Debug("Dropping frame",
				h.logger.Field().String("peer", p.id),
				h.logger.Field().Error("error", err))
			continue
		}

		switch event.Type {
		case contracts.PingType:
			h.deliver(p, contracts.Pong())
		case contracts.MIDIType:
			h.broadcast(p, event)
		}
	}
}

func (h *Hub) writePump(p *peer) {
	defer p.ws.Close()

	for data := range p.send {
		if err := p.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := p.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	_ = p.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (h *Hub) deliver(p *peer, event contracts.TransportEvent) {
	data, err := codec.Encode(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.enqueueLocked(p, data)
}

// broadcast sends event to every peer in from's room except from.
func (h *Hub) broadcast(from *peer, event contracts.TransportEvent) {
	data, err := codec.Encode(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, p := range h.rooms[from.room] {
		if id == from.id {
			continue
		}
		h.enqueueLocked(p, data)
	}
}

// enqueueLocked must be called with h.mu held so p.send cannot be closed concurrently.
func (h *Hub) enqueueLocked(p *peer, data []byte) {
	if _, ok := h.rooms[p.room][p.id]; !ok {
		return
	}
	select {
	case p.send <- data:
	default:
		h.logger.Warn("Peer too slow; frame dropped", h.logger.Field().String("peer", p.id))
	}
}
