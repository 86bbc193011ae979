package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/xpkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 << 10
	sendBuffer     = 32
)

// Hub keeps the connected browsers and broadcasts order events to them.
// A client whose send buffer is full is disconnected instead of slowing the hub down.
type Hub struct {
	upgrader websocket.Upgrader
	mylog    logger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	userID string
}

// inbound is what browsers may send; only "authenticate" is understood.
type inbound struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

func NewHub(allowedOrigins []string, mylog logger.Logger) *Hub {
	h := &Hub{
		mylog:   mylog,
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			return slices.Contains(allowedOrigins, origin) || slices.Contains(allowedOrigins, "*")
		},
	}
	return h
}

func (h *Hub) Name() string { return "websocket" }

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.mylog.Action("ws_upgrade_failed").Warn("Failed to upgrade connection", "error", err.Error())
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(c) {
		conn.Close()
		return
	}
	h.mylog.Action("ws_connected").Debug("Observer connected", "remote", r.RemoteAddr)

	go h.writePump(c)
	go h.readPump(c)
}

// Send broadcasts the event to every connected client without blocking.
func (h *Hub) Send(_ context.Context, event dto.Event) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.mylog.Action("ws_slow_client").Warn("Dropping slow observer", "user_id", c.user())
			h.removeLocked(c)
		}
	}
	return nil
}

// Clients reports the number of connected observers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
	return nil
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.mylog.Action("ws_read_failed").Debug("Observer connection closed", "error", err.Error())
			}
			return
		}
		if msg.Type == "authenticate" && msg.UserID != "" {
			c.mu.Lock()
			c.userID = msg.UserID
			c.mu.Unlock()
			h.mylog.Action("ws_authenticated").Debug("Observer authenticated", "user_id", msg.UserID)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) user() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}
