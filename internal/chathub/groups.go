package chathub

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"devdialogue/backend/internal/models"
	"devdialogue/backend/internal/storage"
)

// GroupNamespace handles the multi-party conversation events. A connection
// may hold membership in many group rooms at once.
type GroupNamespace struct {
	Hub   *Hub
	Store storage.Storage
}

func NewGroupNamespace(hub *Hub, store storage.Storage) *GroupNamespace {
	return &GroupNamespace{Hub: hub, Store: store}
}

func (n *GroupNamespace) HandleEvent(c Client, env Envelope) {
	switch env.Event {
	case EventJoinGroup:
		n.handleJoinGroup(c, env)
	case EventJoinGroups:
		n.handleJoinGroups(c, env)
	case EventGroupMessage:
		n.handleGroupMessage(c, env)
	case EventGroupTyping:
		n.handleGroupTyping(c, env)
	case EventGroupMessageRead:
		n.handleGroupMessageRead(c, env)
	case EventGroupUpdate:
		n.handleGroupUpdate(c, env)
	default:
		sendError(c, env.Event, "unknown event")
	}
}

func (n *GroupNamespace) handleJoinGroup(c Client, env Envelope) {
	var p JoinGroupPayload
	if err := decodePayload(env, &p); err != nil {
		sendError(c, env.Event, err.Error())
		return
	}
	if p.GroupID == "" {
		sendError(c, env.Event, "groupId is required")
		return
	}
	n.Hub.Join(c, GroupRoomKey(p.GroupID))
}

// handleJoinGroups is the bulk variant clients use after (re)connect to
// rebuild their room memberships from scratch.
func (n *GroupNamespace) handleJoinGroups(c Client, env Envelope) {
	var groupIDs []string
	if len(env.Data) == 0 || json.Unmarshal(env.Data, &groupIDs) != nil {
		sendError(c, env.Event, "payload must be an array of group ids")
		return
	}
	for _, id := range groupIDs {
		if id == "" {
			continue
		}
		n.Hub.Join(c, GroupRoomKey(id))
	}
}

// handleGroupMessage persists, then broadcasts the enriched payload. The
// sender snapshot is resolved from the authenticated connection: several
// members share the room, and a buggy or hostile client could otherwise
// impersonate another member.
func (n *GroupNamespace) handleGroupMessage(c Client, env Envelope) {
	var p GroupMessagePayload
	if err := decodePayload(env, &p); err != nil {
		sendError(c, env.Event, err.Error())
		return
	}
	if p.GroupID == "" || p.Content == "" {
		sendError(c, env.Event, "groupId and content are required")
		return
	}

	identity := c.GetIdentity()
	msg := &models.GroupMessage{
		GroupID:  p.GroupID,
		SenderID: identity.ID,
		Content:  p.Content,
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := n.Store.SaveGroupMessage(ctx, msg); err != nil {
		log.Printf("group message from %s not persisted: %v", identity.ID, err)
		sendTo(c, EventMessageError, MessageErrorPayload{
			Event:   env.Event,
			Message: "message could not be saved",
			Content: p.Content,
		})
		return
	}

	n.Hub.Emit(Broadcast{Room: GroupRoomKey(p.GroupID), Event: EventNewGroupMessage}, NewGroupMessagePayload{
		GroupID: p.GroupID,
		Message: GroupMessageBody{
			MessageID: msg.ID,
			Content:   msg.Content,
			Sender: SenderSnapshot{
				ID:             identity.ID,
				Name:           identity.Name,
				ProfilePicture: identity.ProfilePicture,
			},
			CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (n *GroupNamespace) handleGroupTyping(c Client, env Envelope) {
	var p GroupTypingPayload
	if err := decodePayload(env, &p); err != nil {
		sendError(c, env.Event, err.Error())
		return
	}

	identity := c.GetIdentity()
	n.Hub.Emit(Broadcast{
		Room:        GroupRoomKey(p.GroupID),
		Event:       EventUserTyping,
		ExcludeConn: c.GetConnID(),
	}, GroupUserTypingPayload{
		GroupID:  p.GroupID,
		UserID:   identity.ID,
		UserName: identity.Name,
		IsTyping: p.IsTyping,
	})
}

func (n *GroupNamespace) handleGroupMessageRead(c Client, env Envelope) {
	var p GroupMessageReadPayload
	if err := decodePayload(env, &p); err != nil {
		sendError(c, env.Event, err.Error())
		return
	}

	n.Hub.Emit(Broadcast{Room: GroupRoomKey(p.GroupID), Event: EventGroupReadReceipt}, GroupReadReceiptPayload{
		GroupID:   p.GroupID,
		MessageID: p.MessageID,
		ReadBy:    c.GetUserID(),
	})
}

// handleGroupUpdate turns a membership or metadata change into a live
// notification for every connected member. REST-driven changes reach
// already-connected clients through the same broadcast (see the group
// handlers in internal/api).
func (n *GroupNamespace) handleGroupUpdate(c Client, env Envelope) {
	var p GroupUpdatePayload
	if err := decodePayload(env, &p); err != nil {
		sendError(c, env.Event, err.Error())
		return
	}
	if p.GroupID == "" || p.UpdateType == "" {
		sendError(c, env.Event, "groupId and updateType are required")
		return
	}

	n.Hub.Emit(Broadcast{Room: GroupRoomKey(p.GroupID), Event: EventGroupUpdated}, GroupUpdatedPayload{
		GroupID:    p.GroupID,
		UpdateType: p.UpdateType,
		Payload:    p.Payload,
		UpdatedBy:  c.GetUserID(),
	})
}
