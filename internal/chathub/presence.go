package chathub

import "sync"

// Registry is the presence table: user id to active connection handle.
// It is constructed once per server process and injected into both
// namespaces, and serves the direct-emit delivery path. Room broadcast is
// the primary path since it supports several simultaneous connections per
// user; this table keeps at most one handle per user, a later registration
// silently overwriting an earlier one.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Client)}
}

// Register inserts or overwrites the entry for a user. A prior handle for
// that user is no longer reachable through the table but is not
// force-disconnected.
func (r *Registry) Register(userID string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[userID] = c
}

// Unregister removes every entry whose stored handle is the given
// connection. Linear scan, O(n) in active users — a scaling limit of the
// in-memory table.
func (r *Registry) Unregister(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, entry := range r.entries {
		if entry == c {
			delete(r.entries, userID)
		}
	}
}

// Lookup returns the active handle for a user, if any.
func (r *Registry) Lookup(userID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.entries[userID]
	return c, ok
}

// Count returns the number of registered users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
