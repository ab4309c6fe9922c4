package server

import (
	"context"
	"encoding/json"
	"sync"
)

// Hub fans snapshot frames out to every connected websocket client.
type Hub struct {
	clients map[string]*Client

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns

	mu sync.RWMutex
}

// NewHub creates a Hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast requests until ctx is done,
// then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.ID] = c
			n := len(h.clients)
			h.mu.Unlock()
			log.WithField("client", c.ID).Infof("websocket client connected (%d total)", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.ID]; ok {
				delete(h.clients, c.ID)
				close(c.send)
				log.WithField("client", c.ID).Infof("websocket client disconnected (%d remaining)", len(h.clients))
			}
			h.mu.Unlock()

		case frame := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				select {
				case c.send <- frame:
				default:
					// slow reader: drop it rather than stall the frame loop
					close(c.send)
					delete(h.clients, id)
					log.WithField("client", id).Warn("client buffer full, disconnecting")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds c to the hub. Returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues v as one JSON frame. Frames are dropped when the hub is
// behind so the simulation never waits on the network.
func (h *Hub) Broadcast(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	default:
		log.Debug("broadcast queue full, dropping frame")
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
