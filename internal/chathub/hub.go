package chathub

import (
	"encoding/json"
	"fmt"
	"log"

	"devdialogue/backend/internal/storage"

	"github.com/google/uuid"
)

// Broadcast is one fan-out request handed to the hub loop.
type Broadcast struct {
	Room  string
	Event string
	Data  json.RawMessage

	// ExcludeConn skips the emitting connection ("notify others", never
	// echo back to self).
	ExcludeConn string
	// To is the target user of the direct-emit path; the room path
	// ignores it.
	To string

	// relayed marks frames that arrived over the Redis relay so they are
	// not published again.
	relayed bool
}

// Dispatcher decides how a broadcast reaches its recipients. RoomDispatcher
// is the production path; DirectDispatcher is the narrower presence-table
// alternative kept for single-socket topologies.
type Dispatcher interface {
	Dispatch(b Broadcast, members []Client, reg *Registry)
}

// RoomDispatcher delivers to every connection subscribed to the room.
// Handles multiple simultaneous connections per user.
type RoomDispatcher struct{}

func (RoomDispatcher) Dispatch(b Broadcast, members []Client, reg *Registry) {
	for _, c := range members {
		if c.GetConnID() == b.ExcludeConn {
			continue
		}
		deliver(c, Envelope{Event: b.Event, Data: b.Data})
	}
}

// DirectDispatcher emits to the target user's registered connection only,
// skipping unregistered peers silently. At most one connection per user.
type DirectDispatcher struct{}

func (DirectDispatcher) Dispatch(b Broadcast, members []Client, reg *Registry) {
	c, ok := reg.Lookup(b.To)
	if !ok {
		return
	}
	if c.GetConnID() == b.ExcludeConn {
		return
	}
	deliver(c, Envelope{Event: b.Event, Data: b.Data})
}

func deliver(c Client, env Envelope) {
	select {
	case c.GetSendChannel() <- env:
	default:
		log.Printf("send buffer full for user %s, dropping %s", c.GetUserID(), env.Event)
	}
}

type membership struct {
	client Client
	room   string
}

// Hub owns the room state of one namespace. A single Run goroutine processes
// all membership and broadcast commands, so the maps need no locking.
type Hub struct {
	name   string
	origin string

	registry   *Registry
	store      storage.Storage
	dispatcher Dispatcher

	rooms       map[string]map[Client]struct{}
	clientRooms map[Client]map[string]struct{}
	clients     map[Client]struct{}

	RegisterCh   chan Client
	UnregisterCh chan Client
	joinCh       chan membership
	leaveCh      chan membership
	broadcastCh  chan Broadcast
}

// NewHub constructs a namespace hub. store may be nil when no cross-instance
// relay is wanted (tests, single-process deployments).
func NewHub(name string, registry *Registry, store storage.Storage, dispatcher Dispatcher) *Hub {
	return &Hub{
		name:         name,
		origin:       uuid.New().String(),
		registry:     registry,
		store:        store,
		dispatcher:   dispatcher,
		rooms:        make(map[string]map[Client]struct{}),
		clientRooms:  make(map[Client]map[string]struct{}),
		clients:      make(map[Client]struct{}),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		joinCh:       make(chan membership),
		leaveCh:      make(chan membership),
		broadcastCh:  make(chan Broadcast),
	}
}

// Run is the hub's single goroutine. Commands run to completion in arrival
// order; nothing here may block on I/O.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.RegisterCh:
			h.clients[c] = struct{}{}
			h.registry.Register(c.GetUserID(), c)
			log.Printf("[%s] user %s connected", h.name, c.GetUserID())

		case c := <-h.UnregisterCh:
			if _, ok := h.clients[c]; !ok {
				continue
			}
			delete(h.clients, c)
			for room := range h.clientRooms[c] {
				h.removeFromRoom(c, room)
			}
			delete(h.clientRooms, c)
			h.registry.Unregister(c)
			c.Close()
			log.Printf("[%s] user %s disconnected", h.name, c.GetUserID())

		case m := <-h.joinCh:
			if _, ok := h.clients[m.client]; !ok {
				continue
			}
			if h.rooms[m.room] == nil {
				h.rooms[m.room] = make(map[Client]struct{})
			}
			h.rooms[m.room][m.client] = struct{}{}
			if h.clientRooms[m.client] == nil {
				h.clientRooms[m.client] = make(map[string]struct{})
			}
			h.clientRooms[m.client][m.room] = struct{}{}
			log.Printf("[%s] user %s joined room %s", h.name, m.client.GetUserID(), m.room)

		case m := <-h.leaveCh:
			h.removeFromRoom(m.client, m.room)
			delete(h.clientRooms[m.client], m.room)

		case b := <-h.broadcastCh:
			h.handleBroadcast(b)
		}
	}
}

func (h *Hub) removeFromRoom(c Client, room string) {
	if set, ok := h.rooms[room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
}

// handleBroadcast fans a frame out through the dispatcher. An empty or
// nonexistent room is a silent no-op, not an error. Local frames are also
// relayed to other instances off-loop.
func (h *Hub) handleBroadcast(b Broadcast) {
	set := h.rooms[b.Room]
	members := make([]Client, 0, len(set))
	for c := range set {
		members = append(members, c)
	}
	h.dispatcher.Dispatch(b, members, h.registry)

	if !b.relayed && h.store != nil {
		go h.relayOut(b)
	}
}

// Register binds a connection to the hub and the presence table.
func (h *Hub) Register(c Client) { h.RegisterCh <- c }

// Unregister removes a connection from every room and the presence table
// and closes its send channel. Safe to call more than once.
func (h *Hub) Unregister(c Client) { h.UnregisterCh <- c }

// Join subscribes a connection to a room.
func (h *Hub) Join(c Client, room string) { h.joinCh <- membership{client: c, room: room} }

// Leave unsubscribes a connection from a room.
func (h *Hub) Leave(c Client, room string) { h.leaveCh <- membership{client: c, room: room} }

// Emit marshals a typed payload and queues the broadcast.
func (h *Hub) Emit(b Broadcast, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s broadcast: %w", b.Event, err)
	}
	b.Data = data
	h.broadcastCh <- b
	return nil
}
