package chathub_test

import (
	"encoding/json"
	"testing"

	"devdialogue/backend/internal/auth"
	"devdialogue/backend/internal/chathub"
)

// mockClient is an in-memory Client with a buffered receive channel the
// tests drain directly.
type mockClient struct {
	connID   string
	identity auth.Identity
	Recv     chan chathub.Envelope
}

func newMockClient(userID string) *mockClient {
	return &mockClient{
		connID:   userID + "-conn",
		identity: auth.Identity{ID: userID, Name: "User " + userID, ProfilePicture: "pic-" + userID},
		Recv:     make(chan chathub.Envelope, 16),
	}
}

func (c *mockClient) GetConnID() string                       { return c.connID }
func (c *mockClient) GetUserID() string                       { return c.identity.ID }
func (c *mockClient) GetIdentity() auth.Identity              { return c.identity }
func (c *mockClient) GetSendChannel() chan<- chathub.Envelope { return c.Recv }
func (c *mockClient) Run()                                    {}
func (c *mockClient) Close()                                  { close(c.Recv) }

// tryRecv returns the next buffered frame without blocking.
func (c *mockClient) tryRecv() (chathub.Envelope, bool) {
	select {
	case env, ok := <-c.Recv:
		return env, ok
	default:
		return chathub.Envelope{}, false
	}
}

// recvCount drains the buffer and returns how many frames were waiting.
func (c *mockClient) recvCount() int {
	n := 0
	for {
		if _, ok := c.tryRecv(); !ok {
			return n
		}
		n++
	}
}

// makeEnvelope builds an inbound frame the way a client would send it.
func makeEnvelope(t *testing.T, event string, payload any) chathub.Envelope {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to encode %s payload: %v", event, err)
	}
	return chathub.Envelope{Event: event, Data: data}
}

// decodeAs unmarshals a received frame's data into a typed payload.
func decodeAs[T any](t *testing.T, env chathub.Envelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("failed to decode %s payload: %v", env.Event, err)
	}
	return out
}
