package chathub

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// relayEnvelope is the frame published on the Redis relay channel. Origin
// identifies the publishing instance so it can drop its own frames.
type relayEnvelope struct {
	Origin string          `json:"origin"`
	Room   string          `json:"room"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

const relayPublishTimeout = 5 * time.Second

func (h *Hub) relayChannel() string {
	return "realtime:" + h.name
}

// relayOut publishes a locally dispatched frame for other instances.
// Runs off the hub loop; failures are logged, never escalated.
func (h *Hub) relayOut(b Broadcast) {
	payload, err := json.Marshal(relayEnvelope{
		Origin: h.origin,
		Room:   b.Room,
		Event:  b.Event,
		Data:   b.Data,
	})
	if err != nil {
		log.Printf("[%s] error encoding relay frame: %v", h.name, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
	defer cancel()

	if err := h.store.PublishEvent(ctx, h.relayChannel(), payload); err != nil {
		log.Printf("[%s] error publishing relay frame: %v", h.name, err)
	}
}

// StartRelayListener subscribes to the hub's Redis channel and re-dispatches
// frames published by other instances to local room members. Sender
// exclusion is not carried across the relay: the excluded connection is
// local to the origin instance.
func (h *Hub) StartRelayListener() {
	go func() {
		pubsub := h.store.Subscribe(context.Background(), h.relayChannel())
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var env relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("[%s] error decoding relay frame: %v", h.name, err)
				continue
			}
			if env.Origin == h.origin {
				continue
			}
			h.broadcastCh <- Broadcast{
				Room:    env.Room,
				Event:   env.Event,
				Data:    env.Data,
				relayed: true,
			}
		}
	}()
}
