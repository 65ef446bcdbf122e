// Package websocket provides WebSocket connection management and pushes
// collection snapshots to subscribed clients.
package websocket

import (
	"sync"

	"go.uber.org/zap"

	"github.com/roomportal/backend/internal/session"
)

// Renderer produces the message for one client, or false to skip it.
// It lets a single publication carry per-viewer content.
type Renderer func(c *Client) ([]byte, bool)

type delivery struct {
	topic  string  // empty: every client
	target *Client // nil: every matching client
	data   []byte
	render Renderer
}

// Hub maintains the set of active WebSocket clients and routes messages to them.
type Hub struct {
	clients map[*Client]bool

	deliveries chan delivery
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once

	mu     sync.RWMutex
	logger *zap.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		deliveries: make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main event loop. Call it in a goroutine; it returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("websocket client connected",
				zap.String("user_id", client.viewer.UserID), zap.Int("total", total))

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("websocket client disconnected", zap.Int("total", total))

		case d := <-h.deliveries:
			h.deliver(d)

		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop closes every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// drop removes a client and closes its send channel. Callers hold h.mu.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if d.target != nil && client != d.target {
			continue
		}
		if d.topic != "" && !client.IsSubscribed(d.topic) {
			continue
		}

		data := d.data
		if d.render != nil {
			var ok bool
			if data, ok = d.render(client); !ok {
				continue
			}
		}

		select {
		case client.send <- data:
		default:
			// Slow consumer: drop it rather than stall every other client.
			h.logger.Warn("websocket client send buffer full, closing",
				zap.String("user_id", client.viewer.UserID))
			h.drop(client)
		}
	}
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.deliveries <- d:
	default:
		h.logger.Warn("websocket delivery queue full, dropping message", zap.String("topic", d.topic))
	}
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(message []byte) {
	h.enqueue(delivery{data: message})
}

// Publish sends a message to the clients subscribed to topic.
func (h *Hub) Publish(topic string, message []byte) {
	h.enqueue(delivery{topic: topic, data: message})
}

// PublishRendered renders and sends a message for each client subscribed to topic.
// render runs on the hub goroutine and must not block.
func (h *Hub) PublishRendered(topic string, render Renderer) {
	h.enqueue(delivery{topic: topic, render: render})
}

// SendTo sends a message to a single client.
func (h *Hub) SendTo(client *Client, message []byte) {
	h.enqueue(delivery{target: client, data: message})
}

// SendRenderedTo renders and sends a message to a single client.
func (h *Hub) SendRenderedTo(client *Client, render Renderer) {
	h.enqueue(delivery{target: client, render: render})
}

// Register adds a client to the hub.
// After Stop the client is closed instead.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

// Unregister removes a client from the hub.
// It does not block once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client represents a WebSocket client connection.
type Client struct {
	hub    *Hub
	send   chan []byte
	viewer session.Session

	subMu         sync.RWMutex
	subscriptions map[string]bool
}

// NewClient creates a new WebSocket client for the given viewer.
func NewClient(hub *Hub, viewer session.Session) *Client {
	return &Client{
		hub:           hub,
		send:          make(chan []byte, 256),
		viewer:        viewer,
		subscriptions: make(map[string]bool),
	}
}

// Send returns the send channel for the client.
func (c *Client) Send() chan []byte {
	return c.send
}

// Viewer returns the session the client connected with.
func (c *Client) Viewer() session.Session {
	return c.viewer
}

// Subscribe adds topic to the client's subscriptions.
func (c *Client) Subscribe(topic string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subscriptions[topic] = true
}

// Unsubscribe removes topic from the client's subscriptions.
func (c *Client) Unsubscribe(topic string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	delete(c.subscriptions, topic)
}

// IsSubscribed reports whether the client subscribed to topic.
func (c *Client) IsSubscribed(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return c.subscriptions[topic]
}
