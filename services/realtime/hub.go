// File: services/realtime/hub.go
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"flowdesk/models"
	"flowdesk/utils"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is the frame pushed to clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Event types pushed after the connected acknowledgment.
const (
	EventConnected    = "connected"
	EventNotification = "notification"
	EventUnreadCount  = "unread_count"
)

// UnreadCountPayload is the body of an unread_count event.
type UnreadCountPayload struct {
	Count int64 `json:"count"`
}

// sendBuffer bounds the per-connection outbound queue. A slow client
// drops frames rather than blocking dispatchers.
const sendBuffer = 16

// Connection is one live websocket belonging to a user. A user may hold
// several (multiple devices or tabs).
type Connection struct {
	ID     string
	UserID string

	conn     *websocket.Conn
	send     chan []byte
	closed   sync.Once
	mu       sync.Mutex
	lastSeen time.Time
}

// Touch records client liveness; called from the pong handler.
func (c *Connection) Touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *Connection) seen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// enqueue hands a frame to the write pump without blocking; frames to a
// saturated connection are dropped (the persisted row is the record).
func (c *Connection) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
	}
}

func (c *Connection) close() {
	c.closed.Do(func() {
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Connection) writePump() {
	for frame := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}

// Hub is the in-process session registry: user id to live connection
// set. State is ephemeral and lost on restart; real-time delivery is
// best-effort.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*Connection]struct{}
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]map[*Connection]struct{}),
	}
}

// Register adds a connection for the user, starts its write pump and
// emits the connected acknowledgment.
func (h *Hub) Register(userID string, ws *websocket.Conn) *Connection {
	c := &Connection{
		ID:       uuid.NewString(),
		UserID:   userID,
		conn:     ws,
		send:     make(chan []byte, sendBuffer),
		lastSeen: time.Now(),
	}

	h.mu.Lock()
	if _, ok := h.connections[userID]; !ok {
		h.connections[userID] = make(map[*Connection]struct{})
	}
	h.connections[userID][c] = struct{}{}
	total := len(h.connections[userID])
	h.mu.Unlock()

	if ws != nil {
		go c.writePump()
	}

	utils.GetLogger().Debug("realtime: connection registered",
		zap.String("userId", userID), zap.Int("connections", total))

	if frame, err := json.Marshal(Event{Type: EventConnected}); err == nil {
		c.enqueue(frame)
	}
	return c
}

// Unregister removes the connection and prunes the user's entry once its
// set is empty.
func (h *Hub) Unregister(c *Connection) {
	h.mu.Lock()
	if conns, ok := h.connections[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.connections, c.UserID)
		}
	}
	h.mu.Unlock()

	c.close()
	utils.GetLogger().Debug("realtime: connection removed",
		zap.String("userId", c.UserID))
}

// ConnectionsFor returns the IDs of the user's live connections.
func (h *Hub) ConnectionsFor(userID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.connections[userID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(conns))
	for c := range conns {
		ids = append(ids, c.ID)
	}
	return ids
}

// sendToUser pushes one event to every live connection of the user.
// Fire-and-forget: no delivery acknowledgment, no retry.
func (h *Hub) sendToUser(userID string, e Event) {
	frame, err := json.Marshal(e)
	if err != nil {
		utils.GetLogger().Error("realtime: failed to encode event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections[userID] {
		c.enqueue(frame)
	}
}

// PublishNotification pushes the full notification object.
func (h *Hub) PublishNotification(userID string, n *models.Notification) {
	h.sendToUser(userID, Event{Type: EventNotification, Data: n})
}

// PublishUnreadCount pushes the user's current unread counter.
func (h *Hub) PublishUnreadCount(userID string, count int64) {
	h.sendToUser(userID, Event{Type: EventUnreadCount, Data: UnreadCountPayload{Count: count}})
}

// Heartbeat pings all connections periodically and reaps the ones that
// stopped answering.
func (h *Hub) Heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		var stale []*Connection

		h.mu.RLock()
		for _, conns := range h.connections {
			for c := range conns {
				if time.Since(c.seen()) > 2*interval {
					stale = append(stale, c)
					continue
				}
				if c.conn != nil {
					_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
				}
			}
		}
		h.mu.RUnlock()

		for _, c := range stale {
			h.Unregister(c)
		}
	}
}
