package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced at the HTTP layer
		return true
	},
}

// Client is one websocket session. Events on a session are handled to
// completion in arrival order by the read pump; different sessions run
// concurrently.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	userID    uint
	isAdmin   bool
	rooms     map[string]struct{}

	// mu guards closed. The hub closes send while the read pump may still
	// be emitting; both sides must agree before anything touches the channel.
	mu     sync.Mutex
	closed bool
}

// closeSend closes the outbound channel exactly once. Only the hub
// goroutine calls this.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ServeWS upgrades an authenticated request to a websocket session.
// Unauthenticated callers are rejected before the upgrade (RequireAuth
// runs first), matching the connect contract.
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Authentication required",
				},
			})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Websocket upgrade failed: %v", err)
			return
		}

		isAdmin, _ := c.Get("is_admin")
		client := &Client{
			hub:       hub,
			conn:      conn,
			send:      make(chan []byte, 64),
			sessionID: uuid.New().String(),
			userID:    userID.(uint),
			isAdmin:   isAdmin == true,
			rooms:     make(map[string]struct{}),
		}

		hub.register <- client

		// Personal room for notifications; admins also join the admin room
		hub.joinRoom(client, services.UserRoom(client.userID))
		if client.isAdmin {
			hub.joinRoom(client, services.AdminRoom)
		}

		go client.writePump()
		go client.readPump()

		client.emit("connection_status", map[string]interface{}{
			"status":    "connected",
			"user_id":   client.userID,
			"timestamp": time.Now().Format(time.RFC3339),
		})

		// Unread counts go to the joining session only
		counts, err := services.ComputeUnreadCounts(config.GetDB(), client.userID)
		if err != nil {
			log.Printf("Error computing unread counts for user %d: %v", client.userID, err)
		} else {
			client.emit("unread_counts", counts)
		}

		log.Printf("User %d connected with session %s", client.userID, client.sessionID)
	}
}

// emit queues an event for this session only
func (c *Client) emit(event string, data interface{}) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		log.Printf("Error marshaling %q event: %v", event, err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// emitError sends a short human-readable error event, never a stack trace
func (c *Client) emitError(message string) {
	c.emit("error", map[string]string{"message": message})
}

// readPump reads frames off the connection and dispatches them one at a
// time, so handlers for a session never interleave
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		log.Printf("User %d disconnected session %s", c.userID, c.sessionID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Websocket read error for user %d: %v", c.userID, err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.emitError("Invalid event payload")
			continue
		}

		c.dispatch(event)
	}
}

// writePump serializes all outbound frames for the session and keeps the
// connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
