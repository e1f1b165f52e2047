package chathub_test

import (
	"encoding/json"
	"testing"
	"time"

	"devdialogue/backend/internal/chathub"
	"devdialogue/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGroupFixture(t *testing.T) (*chathub.GroupNamespace, *chathub.Hub, *MockStorage) {
	t.Helper()
	storageMock := new(MockStorage)
	reg := chathub.NewRegistry()
	hub := chathub.NewHub("groups", reg, nil, chathub.RoomDispatcher{})
	go hub.Run()
	return chathub.NewGroupNamespace(hub, storageMock), hub, storageMock
}

func joinGroup(ns *chathub.GroupNamespace, t *testing.T, c chathub.Client, groupID string) {
	t.Helper()
	ns.HandleEvent(c, makeEnvelope(t, chathub.EventJoinGroup, chathub.JoinGroupPayload{GroupID: groupID}))
}

// Group g1 has members u1, u2, u3 but only u1 and u2 have joined the room.
// u3 receives nothing; u2 receives exactly one new-group-message.
func TestGroupNamespace_MessageReachesJoinedMembersOnly(t *testing.T) {
	ns, hub, storageMock := newGroupFixture(t)

	u1 := newMockClient("u1")
	u2 := newMockClient("u2")
	u3 := newMockClient("u3")
	hub.Register(u1)
	hub.Register(u2)
	hub.Register(u3)
	time.Sleep(settle)

	joinGroup(ns, t, u1, "g1")
	joinGroup(ns, t, u2, "g1")
	time.Sleep(settle)

	storageMock.On("SaveGroupMessage", mock.Anything, mock.AnythingOfType("*models.GroupMessage")).
		Run(func(args mock.Arguments) {
			msg := args.Get(1).(*models.GroupMessage)
			msg.ID = 7
			msg.CreatedAt = time.Now()
		}).
		Return(nil)

	ns.HandleEvent(u1, makeEnvelope(t, chathub.EventGroupMessage, chathub.GroupMessagePayload{
		GroupID: "g1",
		Content: "hello group",
	}))
	time.Sleep(settle)

	env, ok := u2.tryRecv()
	require.True(t, ok, "u2 did not receive the group message")
	assert.Equal(t, chathub.EventNewGroupMessage, env.Event)

	payload := decodeAs[chathub.NewGroupMessagePayload](t, env)
	assert.Equal(t, "g1", payload.GroupID)
	assert.Equal(t, "hello group", payload.Message.Content)
	assert.Equal(t, "u1", payload.Message.Sender.ID)
	assert.Equal(t, uint(7), payload.Message.MessageID)

	assert.Equal(t, 0, u2.recvCount(), "u2 must observe exactly one frame")
	assert.Equal(t, 0, u3.recvCount(), "members who never joined the room receive nothing")
}

func TestGroupNamespace_SenderResolvedFromConnection(t *testing.T) {
	ns, hub, storageMock := newGroupFixture(t)

	u1 := newMockClient("u1")
	u2 := newMockClient("u2")
	hub.Register(u1)
	hub.Register(u2)
	time.Sleep(settle)
	joinGroup(ns, t, u1, "g1")
	joinGroup(ns, t, u2, "g1")
	time.Sleep(settle)

	storageMock.On("SaveGroupMessage", mock.Anything, mock.Anything).Return(nil)

	// The payload claims to be u2; the broadcast must carry u1's identity,
	// avatar included.
	ns.HandleEvent(u1, makeEnvelope(t, chathub.EventGroupMessage, chathub.GroupMessagePayload{
		GroupID: "g1",
		Content: "who am I",
		Sender:  &chathub.SenderSnapshot{ID: "u2", Name: "User u2", ProfilePicture: "stolen"},
	}))
	time.Sleep(settle)

	env, ok := u2.tryRecv()
	require.True(t, ok)

	payload := decodeAs[chathub.NewGroupMessagePayload](t, env)
	assert.Equal(t, "u1", payload.Message.Sender.ID)
	assert.Equal(t, "pic-u1", payload.Message.Sender.ProfilePicture,
		"avatar must come from the authenticated identity, not the payload")
}

func TestGroupNamespace_JoinGroupsBulk(t *testing.T) {
	ns, hub, storageMock := newGroupFixture(t)

	u1 := newMockClient("u1")
	u2 := newMockClient("u2")
	hub.Register(u1)
	hub.Register(u2)
	time.Sleep(settle)

	ns.HandleEvent(u1, makeEnvelope(t, chathub.EventJoinGroups, []string{"g1", "g2"}))
	joinGroup(ns, t, u2, "g2")
	time.Sleep(settle)

	storageMock.On("SaveGroupMessage", mock.Anything, mock.Anything).Return(nil)

	ns.HandleEvent(u2, makeEnvelope(t, chathub.EventGroupMessage, chathub.GroupMessagePayload{
		GroupID: "g2",
		Content: "bulk join works",
	}))
	time.Sleep(settle)

	env, ok := u1.tryRecv()
	require.True(t, ok, "u1 joined g2 via the bulk event and must receive g2 traffic")
	assert.Equal(t, chathub.EventNewGroupMessage, env.Event)
}

func TestGroupNamespace_TypingExcludesSender(t *testing.T) {
	ns, hub, _ := newGroupFixture(t)

	u1 := newMockClient("u1")
	u2 := newMockClient("u2")
	hub.Register(u1)
	hub.Register(u2)
	time.Sleep(settle)
	joinGroup(ns, t, u1, "g1")
	joinGroup(ns, t, u2, "g1")
	time.Sleep(settle)

	ns.HandleEvent(u1, makeEnvelope(t, chathub.EventGroupTyping, chathub.GroupTypingPayload{
		GroupID:  "g1",
		IsTyping: true,
	}))
	time.Sleep(settle)

	assert.Equal(t, 0, u1.recvCount())

	env, ok := u2.tryRecv()
	require.True(t, ok)
	assert.Equal(t, chathub.EventUserTyping, env.Event)

	payload := decodeAs[chathub.GroupUserTypingPayload](t, env)
	assert.Equal(t, "g1", payload.GroupID)
	assert.Equal(t, "u1", payload.UserID)
	assert.Equal(t, "User u1", payload.UserName)
}

func TestGroupNamespace_ReadReceipt(t *testing.T) {
	ns, hub, _ := newGroupFixture(t)

	u1 := newMockClient("u1")
	u2 := newMockClient("u2")
	hub.Register(u1)
	hub.Register(u2)
	time.Sleep(settle)
	joinGroup(ns, t, u1, "g1")
	joinGroup(ns, t, u2, "g1")
	time.Sleep(settle)

	ns.HandleEvent(u2, makeEnvelope(t, chathub.EventGroupMessageRead, chathub.GroupMessageReadPayload{
		GroupID:   "g1",
		MessageID: 9,
	}))
	time.Sleep(settle)

	env, ok := u1.tryRecv()
	require.True(t, ok)
	assert.Equal(t, chathub.EventGroupReadReceipt, env.Event)

	payload := decodeAs[chathub.GroupReadReceiptPayload](t, env)
	assert.Equal(t, uint(9), payload.MessageID)
	assert.Equal(t, "u2", payload.ReadBy)
}

func TestGroupNamespace_GroupUpdateBroadcast(t *testing.T) {
	ns, hub, _ := newGroupFixture(t)

	u1 := newMockClient("u1")
	u2 := newMockClient("u2")
	hub.Register(u1)
	hub.Register(u2)
	time.Sleep(settle)
	joinGroup(ns, t, u1, "g1")
	joinGroup(ns, t, u2, "g1")
	time.Sleep(settle)

	detail, _ := json.Marshal(map[string]string{"userId": "u5"})
	ns.HandleEvent(u1, makeEnvelope(t, chathub.EventGroupUpdate, chathub.GroupUpdatePayload{
		GroupID:    "g1",
		UpdateType: "member-added",
		Payload:    detail,
	}))
	time.Sleep(settle)

	env, ok := u2.tryRecv()
	require.True(t, ok)
	assert.Equal(t, chathub.EventGroupUpdated, env.Event)

	payload := decodeAs[chathub.GroupUpdatedPayload](t, env)
	assert.Equal(t, "member-added", payload.UpdateType)
	assert.Equal(t, "u1", payload.UpdatedBy)
	assert.JSONEq(t, `{"userId":"u5"}`, string(payload.Payload))
}
