// File: handlers/ws.go
package handlers

import (
	"net/http"
	"strings"

	"flowdesk/services/realtime"
	"flowdesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler upgrades authenticated clients onto the realtime hub.
type WSHandler struct {
	Hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients cannot set Authorization on the upgrade
			// request, so origins are not restricted here; the token is
			// the gate.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// wsToken pulls the JWT from the query string (browser clients) or the
// Authorization header (everything else).
func wsToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}

// WebSocketHandler handles GET /ws. The upgrade is authenticated by
// token, the connection joins the hub, and the read loop keeps the
// session alive until the client goes away.
func (h *WSHandler) WebSocketHandler(c *gin.Context) {
	logger := utils.GetLogger()

	token := wsToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	userID, err := utils.ExtractUserIDFromToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.String("userId", userID), zap.Error(err))
		return
	}

	conn := h.Hub.Register(userID, ws)
	ws.SetPongHandler(func(string) error {
		conn.Touch()
		return nil
	})

	// Read loop: the client sends nothing meaningful, but reading is what
	// surfaces pongs and close frames.
	go func() {
		defer h.Hub.Unregister(conn)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
			conn.Touch()
		}
	}()
}
