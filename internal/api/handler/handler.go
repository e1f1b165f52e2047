package handler

import (
	"devdialogue/backend/internal/auth"
	"devdialogue/backend/internal/chathub"
	"devdialogue/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler wires the REST surface and the socket upgrade endpoints to the
// store, the token service and the two namespace hubs.
type Handler struct {
	Store  storage.Storage
	Tokens *auth.TokenService

	ChatNS  *chathub.ChatNamespace
	GroupNS *chathub.GroupNamespace
}

func NewHandler(store storage.Storage, tokens *auth.TokenService, chatNS *chathub.ChatNamespace, groupNS *chathub.GroupNamespace) *Handler {
	return &Handler{
		Store:   store,
		Tokens:  tokens,
		ChatNS:  chatNS,
		GroupNS: groupNS,
	}
}

// RegisterRoutes mounts every endpoint on the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	authed := api.Group("")
	authed.Use(h.RequireAuth())
	{
		authed.POST("/messages", h.SendPrivateMessage)
		authed.GET("/messages/:id", h.GetPrivateHistory)
		authed.PATCH("/messages/:id/read", h.MarkMessageRead)

		authed.POST("/groups", h.CreateGroup)
		authed.GET("/groups", h.ListGroups)
		authed.POST("/groups/:id/members", h.AddGroupMember)
		authed.DELETE("/groups/:id/members/:userId", h.RemoveGroupMember)
		authed.POST("/groups/:id/messages", h.SendGroupMessage)
		authed.GET("/groups/:id/messages", h.GetGroupHistory)
	}

	// Socket upgrades authenticate inline: the token may arrive in a query
	// parameter since browsers cannot set headers on WebSocket requests.
	r.GET("/ws/chat", h.ServeChatSocket)
	r.GET("/ws/groups", h.ServeGroupSocket)
}
