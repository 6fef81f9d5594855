package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket" //nolint:staticcheck // TODO: migrate to github.com/coder/websocket

	"github.com/ekstrand/ludex/internal/engine"
)

// ProgressHub manages WebSocket connections and broadcasts pipeline
// progress events to them. It implements engine.Notifier, so it can be
// passed straight into a pipeline run.
type ProgressHub struct {
	clients        map[clientInterface]bool
	broadcast      chan interface{}
	register       chan clientInterface
	unregister     chan clientInterface
	allowedOrigins map[string]bool
	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
}

// clientInterface allows for both real clients and mock clients.
type clientInterface interface {
	getSendChannel() chan []byte
	close()
}

// Client represents a WebSocket connection.
type Client struct {
	hub  *ProgressHub
	conn *websocket.Conn //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	send chan []byte
}

func (c *Client) getSendChannel() chan []byte {
	return c.send
}

func (c *Client) close() {
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}
}

// progressMessage is the wire format for broadcast events.
type progressMessage struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Event     engine.ProgressEvent `json:"event"`
}

// NewProgressHub creates a new progress hub. allowedOrigins lists the
// browser origins permitted to connect; requests without an Origin header
// (non-browser clients) are always accepted.
func NewProgressHub(allowedOrigins []string) *ProgressHub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ProgressHub{
		clients:        make(map[clientInterface]bool),
		broadcast:      make(chan interface{}, 256),
		register:       make(chan clientInterface),
		unregister:     make(chan clientInterface),
		allowedOrigins: origins,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Run starts the hub's message processing loop.
func (h *ProgressHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client connected (total: %d)", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.getSendChannel())
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected (total: %d)", count)

		case message := <-h.broadcast:
			// Full Lock because we may delete from the map in the default branch.
			h.mu.Lock()
			data, err := json.Marshal(message)
			if err != nil {
				log.Printf("ERROR: Failed to marshal WebSocket message: %v", err)
				h.mu.Unlock()
				continue
			}

			for client := range h.clients {
				sendChan := client.getSendChannel()
				select {
				case sendChan <- data:
				default:
					// Client's send channel is full, disconnect them
					close(sendChan)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			log.Println("WebSocket hub stopping...")
			return
		}
	}
}

// Stop gracefully shuts down the hub.
func (h *ProgressHub) Stop() {
	h.cancel()

	h.mu.Lock()
	for client := range h.clients {
		close(client.getSendChannel())
		client.close()
	}
	h.clients = make(map[clientInterface]bool)
	h.mu.Unlock()
}

// Notify implements engine.Notifier. Events are wrapped with a type tag and
// timestamp and broadcast to all connected clients without blocking.
func (h *ProgressHub) Notify(event engine.ProgressEvent) {
	h.Broadcast(progressMessage{
		Type:      "pipeline_progress",
		Timestamp: time.Now().UTC(),
		Event:     event,
	})
}

// Broadcast sends a message to all connected clients.
func (h *ProgressHub) Broadcast(message interface{}) {
	select {
	case h.broadcast <- message:
	default:
		log.Println("WARNING: WebSocket broadcast channel full, dropping message")
	}
}

// Register adds a client to the hub.
func (h *ProgressHub) Register(client clientInterface) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *ProgressHub) Unregister(client clientInterface) {
	h.unregister <- client
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ProgressHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && len(h.allowedOrigins) > 0 && !h.allowedOrigins[origin] {
		http.Error(w, "Forbidden: invalid origin", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{ //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		InsecureSkipVerify: true, // origin is checked before the upgrade
	})
	if err != nil {
		log.Printf("ERROR: WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.Register(client)

	go client.writePump()
	go client.readPump()
}

// writePump sends messages to the WebSocket connection.
func (c *Client) writePump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}()

	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, message) //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		cancel()

		if err != nil {
			log.Printf("ERROR: WebSocket write failed: %v", err)
			return
		}
	}
}

// readPump reads messages from the WebSocket connection.
// Currently just drains messages to detect disconnections.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}()

	for {
		_, _, err := c.conn.Read(context.Background()) //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		if err != nil {
			return
		}
	}
}

// MockClient is a mock client for testing.
type MockClient struct {
	SendChan chan []byte
}

func (m *MockClient) getSendChannel() chan []byte {
	return m.SendChan
}

func (m *MockClient) close() {
	// No-op for mock client
}
