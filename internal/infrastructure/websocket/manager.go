package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"valluvarvaasal/pkg/logger"
)

// Client is one connected browser session. Besides the socket itself it
// tracks the live store subscriptions opened on its behalf, keyed by
// subscription name, so a re-subscribe tears down its predecessor and a
// disconnect tears down everything exactly once.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu      sync.Mutex
	closed  bool
	cancels map[string]func()
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan []byte, 16),
		cancels: make(map[string]func()),
	}
}

// TrackSubscription registers cancel under key, cancelling any previous
// subscription held under the same key first.
func (c *Client) TrackSubscription(key string, cancel func()) {
	c.mu.Lock()
	prev := c.cancels[key]
	c.cancels[key] = cancel
	c.mu.Unlock()

	if prev != nil {
		prev()
	}
}

func (c *Client) CancelSubscription(key string) {
	c.mu.Lock()
	cancel := c.cancels[key]
	delete(c.cancels, key)
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// TrySend queues a frame without blocking. Returns false when the queue
// is full or the client has shut down; subscription forwarders may still
// hold a final snapshot after the socket is gone, so the closed check and
// the send share one lock.
func (c *Client) TrySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.Send)
	c.mu.Unlock()

	c.CancelAll()
}

func (c *Client) CancelAll() {
	c.mu.Lock()
	cancels := c.cancels
	c.cancels = make(map[string]func())
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Manager manages all active WebSocket connections.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				logger.Debug("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if current, ok := m.clients[client.UserID]; ok && current == client {
					delete(m.clients, client.UserID)
				}
				m.mutex.Unlock()
				client.shutdown()
				logger.Debug("Client unregistered: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendToUser sends a frame to a connected user; a no-op when the user has
// no open socket.
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return
	}

	if !client.TrySend(message) {
		logger.Warn("Dropping frame for slow client %s", userID)
	}
}

// WritePump sends queued frames to the socket until the Send channel
// closes.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Debug("Write to %s failed: %v", c.UserID, err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
