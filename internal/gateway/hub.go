// Package gateway streams verdicts to WebSocket clients. Each client gets
// the latest verdict on connect (or everything after the seq it last saw)
// and every verdict broadcast afterwards.
package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"niftysignal/internal/model"
)

// Hub manages WebSocket clients and verdict fan-out.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	seq     int64
	history *History

	onCount func(int) // client count observer, e.g. a gauge
	log     *slog.Logger
	now     func() time.Time
}

// NewHub creates a hub retaining historySize envelopes for backfill.
func NewHub(historySize int, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients: make(map[*Client]bool),
		history: NewHistory(historySize),
		onCount: func(int) {},
		log:     log,
		now:     time.Now,
	}
}

// OnClientCount registers fn to observe the connected client count.
func (h *Hub) OnClientCount(fn func(int)) {
	h.mu.Lock()
	h.onCount = fn
	h.mu.Unlock()
}

// PublishVerdict broadcasts v to all connected clients.
func (h *Hub) PublishVerdict(_ context.Context, v model.Verdict) error {
	seq := h.broadcast(v.JSON())
	h.log.Debug("[gateway] verdict broadcast",
		slog.Int64("seq", seq),
		slog.String("signal", string(v.Signal)),
	)
	return nil
}

// Relay broadcasts an already encoded verdict, as received from Redis.
func (h *Hub) Relay(data []byte) {
	h.broadcast(data)
}

// Register attaches an upgraded connection. since > 0 replays every
// envelope after that seq; otherwise only the latest one is sent.
func (h *Hub) Register(conn *websocket.Conn, since int64) *Client {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}

	h.mu.Lock()
	// Initial state is queued under the lock so a concurrent broadcast
	// cannot slip in ahead of it.
	if since > 0 {
		for _, env := range h.history.Since(since) {
			select {
			case client.send <- env:
			default:
			}
		}
	} else if latest := h.history.Latest(); latest != nil {
		client.send <- latest
	}
	h.clients[client] = true
	count := len(h.clients)
	onCount := h.onCount
	h.mu.Unlock()

	onCount(count)
	h.log.Info("[gateway] ws client connected", slog.Int("clients", count))

	go client.writePump()
	go client.readPump()
	return client
}

// RemoveClient detaches c and closes its queue. Safe to call twice.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	count := len(h.clients)
	onCount := h.onCount
	h.mu.Unlock()

	onCount(count)
	h.log.Info("[gateway] ws client disconnected", slog.Int("clients", count))
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Seq returns the seq of the newest broadcast.
func (h *Hub) Seq() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seq
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		h.RemoveClient(c)
	}
}
