package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"go-reseller-ws/internal/notify"
)

const (
	broadcastBuffer = 256
	clientBuffer    = 32
	writeWait       = 10 * time.Second
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one socket plus the scopes (reseller or cart ids) it listens to.
// Unscoped events reach every client.
type Client struct {
	conn   Conn
	scopes map[string]bool
	send   chan []byte
}

func NewClient(conn Conn, scopes ...string) *Client {
	c := &Client{
		conn:   conn,
		scopes: make(map[string]bool, len(scopes)),
		send:   make(chan []byte, clientBuffer),
	}
	for _, s := range scopes {
		if s != "" {
			c.scopes[s] = true
		}
	}
	return c
}

func (c *Client) Wants(evt notify.Event) bool {
	return evt.Scope == "" || c.scopes[evt.Scope]
}

// writeLoop owns all writes to the socket. It exits when the hub closes send
// or a write fails, and closes the socket either way.
func (c *Client) writeLoop(h *Hub) {
	defer c.conn.Close()
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Debug("ws write failed", "error", err)
			h.Leave(c)
			return
		}
	}
}

// Hub fans notifications out to sockets. Only Run touches the client set's
// membership and each client's send channel.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan notify.Event

	clients map[*Client]bool
	mutex   sync.Mutex
	done    chan struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan notify.Event, broadcastBuffer),
		done:       make(chan struct{}),
		logger:     logger.With("component", "ws_hub"),
	}
}

// Join registers c. After the hub stopped it closes the socket instead.
func (h *Hub) Join(c *Client) {
	select {
	case h.Register <- c:
	case <-h.done:
		c.conn.Close()
	}
}

// Leave unregisters c. It never blocks once the hub has stopped.
func (h *Hub) Leave(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// Notify queues the event without blocking; it is dropped when the queue is full.
func (h *Hub) Notify(evt notify.Event) {
	select {
	case h.Broadcast <- evt:
	default:
		h.logger.Warn("dropping notification, broadcast queue full", "event", string(evt.Type))
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for c := range h.clients {
				h.remove(c)
			}
			h.mutex.Unlock()
			return

		case c := <-h.Register:
			h.mutex.Lock()
			h.clients[c] = true
			h.mutex.Unlock()
			go c.writeLoop(h)
			h.logger.Debug("ws client connected", "scopes", len(c.scopes))

		case c := <-h.Unregister:
			h.mutex.Lock()
			h.remove(c)
			h.mutex.Unlock()

		case evt := <-h.Broadcast:
			message, err := json.Marshal(evt)
			if err != nil {
				h.logger.Error("encode notification", "error", err)
				continue
			}
			h.mutex.Lock()
			for c := range h.clients {
				if !c.Wants(evt) {
					continue
				}
				select {
				case c.send <- message:
				default:
					// a slow socket loses this event instead of stalling the rest
					h.logger.Warn("dropping notification for slow client", "event", string(evt.Type))
				}
			}
			h.mutex.Unlock()
		}
	}
}
