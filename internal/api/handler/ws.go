package handler

import (
	"log"
	"net/http"

	"devdialogue/backend/internal/auth"
	"devdialogue/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeChatSocket upgrades a connection into the private chat namespace.
func (h *Handler) ServeChatSocket(c *gin.Context) {
	h.serveSocket(c, h.ChatNS.Hub, h.ChatNS)
}

// ServeGroupSocket upgrades a connection into the group chat namespace.
func (h *Handler) ServeGroupSocket(c *gin.Context) {
	h.serveSocket(c, h.GroupNS.Hub, h.GroupNS)
}

// serveSocket runs the handshake: the credential is verified exactly once,
// before the upgrade, and a failed verification is a hard rejection — no
// event handler ever runs for that connection.
func (h *Handler) serveSocket(c *gin.Context, hub *chathub.Hub, handler chathub.EventHandler) {
	identity, err := h.Tokens.Verify(socketToken(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrAuthentication.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its error response.
		log.Printf("failed to upgrade connection for user %s: %v", identity.ID, err)
		return
	}

	client := &chathub.WebSocketClient{
		ConnID:   uuid.New().String(),
		Identity: *identity,
		Conn:     conn,
		Hub:      hub,
		Handler:  handler,
		Send:     make(chan chathub.Envelope, chathub.SendBufferSize),
	}

	hub.Register(client)
	if err := h.Store.SetOnline(c.Request.Context(), identity.ID); err != nil {
		log.Printf("failed to mark user %s online: %v", identity.ID, err)
	}
	client.Run()
}

// socketToken reads the credential from the Authorization header or, for
// browser clients that cannot set headers on WebSocket requests, from the
// token query parameter.
func socketToken(c *gin.Context) string {
	if token := bearerToken(c); token != "" {
		return token
	}
	return c.Query("token")
}
