// Package server implements the per-connection protocol loop: decode,
// route, await reply, encode, plus the live-connection registry CLIENT
// subcommands answer from.
package server

import (
	"sync"

	"github.com/google/uuid"
)

// ClientInfo is the per-connection metadata record the registry and the
// connection itself both hold a reference to. Reply mode is deliberately
// not here: it is touched on every command a connection issues, so it
// lives only in that connection's own Connection struct, never under the
// registry's lock.
type ClientInfo struct {
	ID   string
	Addr string
	Name string
}

// Registry is the process-wide table of live connections backing
// CLIENT LIST. Mutation happens only on connect/disconnect/name-change, per
// the design note that the hot command path must never take this lock.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*ClientInfo
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*ClientInfo)}
}

// Connect mints a new client ID and registers it.
func (r *Registry) Connect(addr string) *ClientInfo {
	info := &ClientInfo{ID: uuid.NewString(), Addr: addr}
	r.mu.Lock()
	r.clients[info.ID] = info
	r.mu.Unlock()
	return info
}

func (r *Registry) Disconnect(id string) {
	r.mu.Lock()
	delete(r.clients, id)
	r.mu.Unlock()
}

func (r *Registry) SetName(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[id]; ok {
		c.Name = name
	}
}

// List returns a stable point-in-time copy of every live connection.
func (r *Registry) List() []ClientInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ClientInfo, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out
}
