package chathub

import (
	"encoding/json"
	"fmt"
)

// Event names for the private namespace.
const (
	EventJoinChat       = "join-chat"
	EventPrivateMessage = "private-message"
	EventNewMessage     = "new-message"
	EventTyping         = "typing"
	EventUserTyping     = "user-typing"
	EventMessageRead    = "message-read"
	EventReadReceipt    = "read-receipt"
)

// Event names for the group namespace.
const (
	EventJoinGroup        = "join-group"
	EventJoinGroups       = "join-groups"
	EventGroupMessage     = "group-message"
	EventNewGroupMessage  = "new-group-message"
	EventGroupTyping      = "group-typing"
	EventGroupMessageRead = "group-message-read"
	EventGroupReadReceipt = "group-read-receipt"
	EventGroupUpdate      = "group-update"
	EventGroupUpdated     = "group-updated"
)

// Server-to-client error events.
const (
	EventError        = "error"
	EventMessageError = "message-error"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEnvelope marshals a typed payload into a wire frame.
func NewEnvelope(event string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return Envelope{Event: event, Data: data}, nil
}

// SenderSnapshot is the resolved identity attached to outgoing messages.
// It is always taken from the authenticated connection, never from
// client-supplied data.
type SenderSnapshot struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

// --- Private namespace payloads ---

type JoinChatPayload struct {
	UserID      string `json:"userId"`
	RecipientID string `json:"recipientId"`
}

type PrivateMessagePayload struct {
	// Sender is accepted on the wire for compatibility but never trusted;
	// handlers override it with the connection's identity.
	Sender    *SenderSnapshot `json:"sender,omitempty"`
	Recipient string          `json:"recipient"`
	Content   string          `json:"content"`
}

type NewMessagePayload struct {
	MessageID uint           `json:"messageId"`
	Content   string         `json:"content"`
	Sender    SenderSnapshot `json:"sender"`
	Recipient string         `json:"recipient"`
	CreatedAt string         `json:"createdAt"`
}

type TypingPayload struct {
	RecipientID string `json:"recipientId"`
	IsTyping    bool   `json:"isTyping"`
}

type UserTypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type MessageReadPayload struct {
	SenderID  string `json:"senderId"`
	MessageID uint   `json:"messageId"`
}

type ReadReceiptPayload struct {
	MessageID uint   `json:"messageId"`
	ReadBy    string `json:"readBy"`
}

// --- Group namespace payloads ---

type JoinGroupPayload struct {
	GroupID string `json:"groupId"`
}

type GroupMessagePayload struct {
	GroupID string          `json:"groupId"`
	Content string          `json:"content"`
	Sender  *SenderSnapshot `json:"sender,omitempty"` // ignored, see PrivateMessagePayload
}

type GroupMessageBody struct {
	MessageID uint           `json:"messageId"`
	Content   string         `json:"content"`
	Sender    SenderSnapshot `json:"sender"`
	CreatedAt string         `json:"createdAt"`
}

type NewGroupMessagePayload struct {
	GroupID string           `json:"groupId"`
	Message GroupMessageBody `json:"message"`
}

type GroupTypingPayload struct {
	GroupID  string `json:"groupId"`
	IsTyping bool   `json:"isTyping"`
}

type GroupUserTypingPayload struct {
	GroupID  string `json:"groupId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	IsTyping bool   `json:"isTyping"`
}

type GroupMessageReadPayload struct {
	GroupID   string `json:"groupId"`
	MessageID uint   `json:"messageId"`
}

type GroupReadReceiptPayload struct {
	GroupID   string `json:"groupId"`
	MessageID uint   `json:"messageId"`
	ReadBy    string `json:"readBy"`
}

type GroupUpdatePayload struct {
	GroupID    string          `json:"groupId"`
	UpdateType string          `json:"updateType"`
	Payload    json.RawMessage `json:"payload"`
}

type GroupUpdatedPayload struct {
	GroupID    string          `json:"groupId"`
	UpdateType string          `json:"updateType"`
	Payload    json.RawMessage `json:"payload"`
	UpdatedBy  string          `json:"updatedBy"`
}

// --- Error payloads ---

type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

type MessageErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
	Content string `json:"content"`
}

// decodePayload unmarshals an event's data into its typed payload, failing
// fast on malformed frames so undefined fields never propagate downstream.
func decodePayload(env Envelope, out any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%s: empty payload", env.Event)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", env.Event, err)
	}
	return nil
}
