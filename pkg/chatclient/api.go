package chatclient

import (
	"encoding/json"
	"log"

	"devdialogue/backend/internal/chathub"
)

// Typed wrappers over Emit/On, mirroring the event surface of the two
// namespaces.

// --- Private chat ---

func (c *Client) JoinChat(userID, recipientID string) error {
	return c.Emit(chathub.EventJoinChat, chathub.JoinChatPayload{
		UserID:      userID,
		RecipientID: recipientID,
	})
}

func (c *Client) SendPrivateMessage(recipient, content string) error {
	return c.Emit(chathub.EventPrivateMessage, chathub.PrivateMessagePayload{
		Recipient: recipient,
		Content:   content,
	})
}

func (c *Client) OnNewMessage(fn func(chathub.NewMessagePayload)) {
	c.On(chathub.EventNewMessage, decodeInto(chathub.EventNewMessage, fn))
}

func (c *Client) SendTyping(recipientID string, isTyping bool) error {
	return c.Emit(chathub.EventTyping, chathub.TypingPayload{
		RecipientID: recipientID,
		IsTyping:    isTyping,
	})
}

func (c *Client) OnUserTyping(fn func(chathub.UserTypingPayload)) {
	c.On(chathub.EventUserTyping, decodeInto(chathub.EventUserTyping, fn))
}

func (c *Client) SendMessageRead(senderID string, messageID uint) error {
	return c.Emit(chathub.EventMessageRead, chathub.MessageReadPayload{
		SenderID:  senderID,
		MessageID: messageID,
	})
}

func (c *Client) OnReadReceipt(fn func(chathub.ReadReceiptPayload)) {
	c.On(chathub.EventReadReceipt, decodeInto(chathub.EventReadReceipt, fn))
}

// --- Group chat ---

func (c *Client) JoinGroup(groupID string) error {
	return c.Emit(chathub.EventJoinGroup, chathub.JoinGroupPayload{GroupID: groupID})
}

func (c *Client) JoinGroups(groupIDs []string) error {
	return c.Emit(chathub.EventJoinGroups, groupIDs)
}

func (c *Client) SendGroupMessage(groupID, content string) error {
	return c.Emit(chathub.EventGroupMessage, chathub.GroupMessagePayload{
		GroupID: groupID,
		Content: content,
	})
}

func (c *Client) OnNewGroupMessage(fn func(chathub.NewGroupMessagePayload)) {
	c.On(chathub.EventNewGroupMessage, decodeInto(chathub.EventNewGroupMessage, fn))
}

func (c *Client) SendGroupTyping(groupID string, isTyping bool) error {
	return c.Emit(chathub.EventGroupTyping, chathub.GroupTypingPayload{
		GroupID:  groupID,
		IsTyping: isTyping,
	})
}

func (c *Client) OnGroupTyping(fn func(chathub.GroupUserTypingPayload)) {
	c.On(chathub.EventUserTyping, decodeInto(chathub.EventUserTyping, fn))
}

func (c *Client) SendGroupMessageRead(groupID string, messageID uint) error {
	return c.Emit(chathub.EventGroupMessageRead, chathub.GroupMessageReadPayload{
		GroupID:   groupID,
		MessageID: messageID,
	})
}

func (c *Client) OnGroupReadReceipt(fn func(chathub.GroupReadReceiptPayload)) {
	c.On(chathub.EventGroupReadReceipt, decodeInto(chathub.EventGroupReadReceipt, fn))
}

func (c *Client) SendGroupUpdate(groupID, updateType string, payload json.RawMessage) error {
	return c.Emit(chathub.EventGroupUpdate, chathub.GroupUpdatePayload{
		GroupID:    groupID,
		UpdateType: updateType,
		Payload:    payload,
	})
}

func (c *Client) OnGroupUpdated(fn func(chathub.GroupUpdatedPayload)) {
	c.On(chathub.EventGroupUpdated, decodeInto(chathub.EventGroupUpdated, fn))
}

// OnMessageError registers a listener for persistence failures reported
// back by the server.
func (c *Client) OnMessageError(fn func(chathub.MessageErrorPayload)) {
	c.On(chathub.EventMessageError, decodeInto(chathub.EventMessageError, fn))
}

func decodeInto[T any](event string, fn func(T)) Handler {
	return func(data json.RawMessage) {
		var payload T
		if err := json.Unmarshal(data, &payload); err != nil {
			log.Printf("chatclient: error decoding %s payload: %v", event, err)
			return
		}
		fn(payload)
	}
}
