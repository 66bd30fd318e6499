package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event represents a real-time message pushed to WebSocket clients.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// wsClient is a connected WebSocket consumer.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *WSHub
}

// WSHub fans out engine events to connected WebSocket clients. Slow clients
// are disconnected rather than allowed to block the broadcast loop.
type WSHub struct {
	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte

	maxClients   int
	writeTimeout time.Duration
	readTimeout  time.Duration
	pingInterval time.Duration

	log    logrus.FieldLogger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
}

// NewWSHub creates a WebSocket hub with default limits.
func NewWSHub(log logrus.FieldLogger) *WSHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &WSHub{
		clients:      make(map[*wsClient]bool),
		register:     make(chan *wsClient, 64),
		unregister:   make(chan *wsClient, 64),
		broadcast:    make(chan []byte, 256),
		maxClients:   100,
		writeTimeout: 10 * time.Second,
		readTimeout:  60 * time.Second,
		pingInterval: 54 * time.Second,
		log:          log.WithField("component", "websocket-hub"),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Run starts the hub loop.
func (h *WSHub) Run() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runHub()
	}()
	h.log.Info("WebSocket hub started")
}

// Stop closes all client connections and shuts down the hub loop.
func (h *WSHub) Stop() {
	h.log.Info("Stopping WebSocket hub")
	h.cancel()

	h.mu.Lock()
	for client := range h.clients {
		close(client.send)
		client.conn.Close()
	}
	h.clients = make(map[*wsClient]bool)
	h.mu.Unlock()

	h.wg.Wait()
	h.log.Info("WebSocket hub stopped")
}

// Broadcast queues an event for delivery to every connected client. It never
// blocks, which makes it safe to call from engine code holding locks.
func (h *WSHub) Broadcast(event string, payload interface{}) {
	msg := Event{
		Type:      event,
		Data:      payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal broadcast event")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.WithField("event", event).Warn("Broadcast channel full, dropping event")
	}
}

// ClientCount returns the number of connected clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection returns an HTTP handler that upgrades requests and
// registers the resulting connection with the hub.
func (h *WSHub) HandleConnection(upgrader *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.WithError(err).Error("Failed to upgrade WebSocket connection")
			return
		}

		client := &wsClient{
			id:   newClientID(),
			conn: conn,
			send: make(chan []byte, 64),
			hub:  h,
		}

		select {
		case h.register <- client:
		case <-h.ctx.Done():
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()

		h.log.WithFields(logrus.Fields{
			"client_id":   client.id,
			"remote_addr": r.RemoteAddr,
		}).Info("WebSocket connection established")
	}
}

// runHub owns the clients map mutations and message fan-out.
func (h *WSHub) runHub() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if len(h.clients) >= h.maxClients {
				h.mu.Unlock()
				h.log.Warn("Maximum client limit reached, rejecting connection")
				client.conn.Close()
				continue
			}
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			wsClientsGauge.Set(float64(total))
			h.log.WithFields(logrus.Fields{
				"client_id":     client.id,
				"total_clients": total,
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				client.conn.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			wsClientsGauge.Set(float64(total))
			h.log.WithFields(logrus.Fields{
				"client_id":     client.id,
				"total_clients": total,
			}).Info("WebSocket client disconnected")

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it on the next unregister pass.
					go func(c *wsClient) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()

		case <-h.ctx.Done():
			return
		}
	}
}

// readPump drains inbound frames so control messages are processed, and
// unregisters the client when the connection drops.
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.readTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.hub.readTimeout))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).WithField("client_id", c.id).Error("WebSocket read error")
			}
			return
		}
	}
}

// writePump delivers queued messages and keeps the connection alive with
// periodic pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(c.hub.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.hub.ctx.Done():
			return
		}
	}
}

// newClientID creates a unique client identifier.
func newClientID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format("20060102150405")))
	}
	return hex.EncodeToString(bytes)
}
