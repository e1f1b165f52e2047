package handler

import (
	"net/http"
	"strconv"

	"devdialogue/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// SendPrivateMessage persists a private message and returns it with its
// durable id. Clients correlate the REST response with the live socket
// broadcast via sender, content and timestamp; the two paths are not
// transactionally linked.
func (h *Handler) SendPrivateMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "content and recipient are required"})
		return
	}

	identity := currentIdentity(c)
	msg := &models.PrivateMessage{
		SenderID:    identity.ID,
		RecipientID: req.Recipient,
		Content:     req.Content,
	}
	if err := h.Store.SavePrivateMessage(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": msg})
}

// GetPrivateHistory returns both directions of the conversation with the
// given user, ordered by creation time ascending.
func (h *Handler) GetPrivateHistory(c *gin.Context) {
	identity := currentIdentity(c)
	peerID := c.Param("id")

	history, err := h.Store.GetPrivateHistory(c.Request.Context(), identity.ID, peerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": history})
}

// MarkMessageRead flags a persisted message as read. The live read-receipt
// travels over the socket namespace; this endpoint keeps history consistent.
func (h *Handler) MarkMessageRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid message id"})
		return
	}

	if err := h.Store.MarkPrivateMessageRead(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
