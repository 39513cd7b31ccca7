package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades HTTP requests into hub connections. Authentication
// happens over the socket, so the upgrade itself is open.
type WSHandler struct {
	Hub           *Hub
	AllowedOrigin string
}

func NewWSHandler(hub *Hub, allowedOrigin string) *WSHandler {
	return &WSHandler{Hub: hub, AllowedOrigin: allowedOrigin}
}

func (h *WSHandler) HandleWS() gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if h.AllowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == h.AllowedOrigin
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.Hub.log.Warn("ws upgrade failed", "error", err, "remote", c.ClientIP())
			return
		}
		client := NewClient(h.Hub, conn)
		go client.Run()
	}
}
