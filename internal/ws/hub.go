package ws

import (
	"encoding/json"
	"sync"
)

// Client represents a single WebSocket connection.
type Client struct {
	Send   chan []byte
	hub    *Hub
	mu     sync.Mutex
	closed bool
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// Hub maintains the set of connected statistics listeners and fans
// snapshots out to them. Slow listeners are skipped, not waited for.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *Hub) BroadcastAll(payload interface{}) {
	data, _ := json.Marshal(payload)
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
