package core

import "sync"

// Registry is the presence registry: the single source of truth for which
// live connections belong to an identity. A user may hold several
// simultaneous connections (multi-device). All mutation runs under one lock,
// so join/leave for the same identity are linearizable and a rapid
// reconnect cannot lose an update.
type Registry struct {
	mu     sync.RWMutex
	conns  map[int64]map[*Client]struct{}
	owners map[*Client]int64
}

// NewRegistry constructs an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[int64]map[*Client]struct{}),
		owners: make(map[*Client]int64),
	}
}

// Join adds the connection to the identity's set. Idempotent when the
// connection is already present.
func (r *Registry) Join(identity int64, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[identity]
	if !ok {
		set = make(map[*Client]struct{})
		r.conns[identity] = set
	}
	set[c] = struct{}{}
	r.owners[c] = identity
}

// Leave removes the connection from whatever identity set holds it. No-op if
// the connection was never joined; safe to call exactly once per disconnect
// and harmless if called again.
func (r *Registry) Leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.owners[c]
	if !ok {
		return
	}
	delete(r.owners, c)

	set := r.conns[identity]
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, identity)
	}
}

// Evict removes every live connection of the identity, used when the account
// is deleted while sessions are still open. Subsequent Leave calls from the
// evicted connections are no-ops.
func (r *Registry) Evict(identity int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := range r.conns[identity] {
		delete(r.owners, c)
	}
	delete(r.conns, identity)
}

// ConnectionsFor returns a snapshot of the identity's live connections.
// Empty slice (not an error) when the identity has none.
func (r *Registry) ConnectionsFor(identity int64) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.conns[identity]
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Online reports whether the identity has at least one live connection.
func (r *Registry) Online(identity int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[identity]) > 0
}
