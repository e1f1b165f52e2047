package chathub

import (
	"context"
	"log"
	"time"

	"devdialogue/backend/internal/models"
	"devdialogue/backend/internal/storage"
)

// persistTimeout bounds the message-store write so a stalled database
// surfaces as a failure event to the sender instead of an indeterminate UI.
const persistTimeout = 5 * time.Second

// ChatNamespace handles the private one-to-one conversation events.
type ChatNamespace struct {
	Hub   *Hub
	Store storage.Storage
}

func NewChatNamespace(hub *Hub, store storage.Storage) *ChatNamespace {
	return &ChatNamespace{Hub: hub, Store: store}
}

// HandleEvent dispatches one decoded frame from an authenticated connection.
func (n *ChatNamespace) HandleEvent(c Client, env Envelope) {
	switch env.Event {
	case EventJoinChat:
		n.handleJoinChat(c, env)
	case EventPrivateMessage:
		n.handlePrivateMessage(c, env)
	case EventTyping:
		n.handleTyping(c, env)
	case EventMessageRead:
		n.handleMessageRead(c, env)
	default:
		sendError(c, env.Event, "unknown event")
	}
}

func (n *ChatNamespace) handleJoinChat(c Client, env Envelope) {
	var p JoinChatPayload
	if err := decodePayload(env, &p); err != nil {
		sendError(c, env.Event, err.Error())
		return
	}
	if p.RecipientID == "" {
		sendError(c, env.Event, "recipientId is required")
		return
	}

	// Self id comes from the authenticated identity, not the payload, so
	// both sides always compute the same key.
	room := PrivateRoomKey(c.GetUserID(), p.RecipientID)
	n.Hub.Join(c, room)
}

// handlePrivateMessage persists the message, then fans the enriched payload
// out to the pair's room. The broadcast does not happen when persistence
// fails: the store is the system of record for history, and a message must
// not appear live only to vanish on reload.
func (n *ChatNamespace) handlePrivateMessage(c Client, env Envelope) {
	var p PrivateMessagePayload
	if err := decodePayload(env, &p); err != nil {
		sendError(c, env.Event, err.Error())
		return
	}
	if p.Recipient == "" || p.Content == "" {
		sendError(c, env.Event, "recipient and content are required")
		return
	}

	identity := c.GetIdentity()
	msg := &models.PrivateMessage{
		SenderID:    identity.ID, // never the client-supplied sender
		RecipientID: p.Recipient,
		Content:     p.Content,
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := n.Store.SavePrivateMessage(ctx, msg); err != nil {
		log.Printf("private message from %s not persisted: %v", identity.ID, err)
		sendTo(c, EventMessageError, MessageErrorPayload{
			Event:   env.Event,
			Message: "message could not be saved",
			Content: p.Content,
		})
		return
	}

	room := PrivateRoomKey(identity.ID, p.Recipient)
	n.Hub.Emit(Broadcast{Room: room, Event: EventNewMessage, To: p.Recipient}, NewMessagePayload{
		MessageID: msg.ID,
		Content:   msg.Content,
		Sender: SenderSnapshot{
			ID:             identity.ID,
			Name:           identity.Name,
			ProfilePicture: identity.ProfilePicture,
		},
		Recipient: p.Recipient,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (n *ChatNamespace) handleTyping(c Client, env Envelope) {
	var p TypingPayload
	if err := decodePayload(env, &p); err != nil {
		sendError(c, env.Event, err.Error())
		return
	}

	room := PrivateRoomKey(c.GetUserID(), p.RecipientID)
	n.Hub.Emit(Broadcast{
		Room:        room,
		Event:       EventUserTyping,
		To:          p.RecipientID,
		ExcludeConn: c.GetConnID(),
	}, UserTypingPayload{
		UserID:   c.GetUserID(),
		IsTyping: p.IsTyping,
	})
}

func (n *ChatNamespace) handleMessageRead(c Client, env Envelope) {
	var p MessageReadPayload
	if err := decodePayload(env, &p); err != nil {
		sendError(c, env.Event, err.Error())
		return
	}

	room := PrivateRoomKey(c.GetUserID(), p.SenderID)
	n.Hub.Emit(Broadcast{Room: room, Event: EventReadReceipt, To: p.SenderID}, ReadReceiptPayload{
		MessageID: p.MessageID,
		ReadBy:    c.GetUserID(),
	})
}

// sendTo emits directly to one connection, bypassing rooms.
func sendTo(c Client, event string, payload any) {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		log.Printf("error building %s frame: %v", event, err)
		return
	}
	deliver(c, env)
}

func sendError(c Client, event, message string) {
	log.Printf("rejected %s from user %s: %s", event, c.GetUserID(), message)
	sendTo(c, EventError, ErrorPayload{Event: event, Message: message})
}
