package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"devdialogue/backend/internal/chathub"
	"devdialogue/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type createGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type addMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type sendGroupMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	identity := currentIdentity(c)
	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   identity.ID,
	}
	if err := h.Store.CreateGroup(c.Request.Context(), group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": group})
}

func (h *Handler) ListGroups(c *gin.Context) {
	identity := currentIdentity(c)

	groups, err := h.Store.GetGroupsForUser(c.Request.Context(), identity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": groups})
}

// AddGroupMember enrolls a user and notifies already-connected members over
// the group room. This is how REST-driven membership changes become live
// updates.
func (h *Handler) AddGroupMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	groupID := c.Param("id")
	if err := h.Store.AddGroupMember(c.Request.Context(), groupID, req.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.broadcastGroupUpdate(c, groupID, "member-added", gin.H{"userId": req.UserID})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) RemoveGroupMember(c *gin.Context) {
	groupID := c.Param("id")
	userID := c.Param("userId")

	if err := h.Store.RemoveGroupMember(c.Request.Context(), groupID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.broadcastGroupUpdate(c, groupID, "member-removed", gin.H{"userId": userID})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SendGroupMessage persists a group message and fans it out to the group
// room. Membership is enforced here, on the REST surface.
func (h *Handler) SendGroupMessage(c *gin.Context) {
	var req sendGroupMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	identity := currentIdentity(c)
	groupID := c.Param("id")

	member, err := h.Store.IsGroupMember(c.Request.Context(), groupID, identity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "not a member of this group"})
		return
	}

	msg := &models.GroupMessage{
		GroupID:  groupID,
		SenderID: identity.ID,
		Content:  req.Content,
	}
	if err := h.Store.SaveGroupMessage(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.GroupNS.Hub.Emit(chathub.Broadcast{
		Room:  chathub.GroupRoomKey(groupID),
		Event: chathub.EventNewGroupMessage,
	}, chathub.NewGroupMessagePayload{
		GroupID: groupID,
		Message: chathub.GroupMessageBody{
			MessageID: msg.ID,
			Content:   msg.Content,
			Sender: chathub.SenderSnapshot{
				ID:             identity.ID,
				Name:           identity.Name,
				ProfilePicture: identity.ProfilePicture,
			},
			CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
		},
	})

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": msg})
}

func (h *Handler) GetGroupHistory(c *gin.Context) {
	identity := currentIdentity(c)
	groupID := c.Param("id")

	member, err := h.Store.IsGroupMember(c.Request.Context(), groupID, identity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "not a member of this group"})
		return
	}

	history, err := h.Store.GetGroupHistory(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": history})
}

func (h *Handler) broadcastGroupUpdate(c *gin.Context, groupID, updateType string, detail gin.H) {
	identity := currentIdentity(c)
	payload, err := json.Marshal(detail)
	if err != nil {
		return
	}
	h.GroupNS.Hub.Emit(chathub.Broadcast{
		Room:  chathub.GroupRoomKey(groupID),
		Event: chathub.EventGroupUpdated,
	}, chathub.GroupUpdatedPayload{
		GroupID:    groupID,
		UpdateType: updateType,
		Payload:    payload,
		UpdatedBy:  identity.ID,
	})
}
