// Package registry keeps the display name chosen by each live connection.
package registry

import "sync"

type Registry struct {
	mu    sync.RWMutex
	names map[string]*string
}

func New() *Registry {
	return &Registry{
		names: make(map[string]*string),
	}
}

// Track registers a connection with no display name yet. Calling it for a
// connection that already has a name leaves the name alone.
func (r *Registry) Track(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[connID]; !ok {
		r.names[connID] = nil
	}
}

// SetDisplayName stores name for connID. Names are not unique and the last
// write wins.
func (r *Registry) SetDisplayName(connID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.names[connID] = &name
}

// Lookup returns the display name of connID. ok is false when no name was
// ever set or the connection is unknown.
func (r *Registry) Lookup(connID string) (name string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.names[connID]
	if n == nil {
		return "", false
	}

	return *n, true
}

// Remove drops connID. Unknown ids are ignored.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.names, connID)
}

// Len is the number of tracked connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.names)
}
