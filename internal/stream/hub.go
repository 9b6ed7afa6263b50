// Package stream carries data across the two websocket edges of the
// relay: a client pulling raw ticks from the upstream feed and a hub
// pushing session snapshots out to browser clients.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/paperkite/paperkite/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans a single snapshot stream out to every connected client. A
// client that cannot keep up is dropped rather than allowed to stall
// the broadcast loop.
type Hub struct {
	log logger.Interface

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	broadcast chan []byte
}

// NewHub creates a hub. Run must be started before Broadcast is useful.
func NewHub(log logger.Interface) *Hub {
	return &Hub{
		log:       log,
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan []byte, 64),
	}
}

// Run delivers broadcast payloads until the context is cancelled, then
// closes every client connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case payload := <-h.broadcast:
			h.deliver(payload)
		}
	}
}

// Broadcast marshals v and queues it for every connected client. When
// the queue is full the payload is dropped; the next snapshot
// supersedes it anyway.
func (h *Hub) Broadcast(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.Error(err, logger.NewField("op", "hub_marshal"))
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("hub broadcast queue full, dropping snapshot")
	}
}

// Handler upgrades an HTTP request and registers the connection. The
// read loop exists only to observe the close handshake.
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(err, logger.NewField("op", "hub_upgrade"))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	h.log.Info("stream client connected", logger.NewField("remote", conn.RemoteAddr().String()))

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(conn)
				return
			}
		}
	}()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) deliver(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
			h.log.Warn("stream client dropped", logger.NewField("remote", conn.RemoteAddr().String()))
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; ok {
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
