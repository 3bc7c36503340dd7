package session

import (
	"errors"
	"sync"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Registry maps connection ids to live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Create registers a fresh session for a connection id.
func (r *Registry) Create(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[id]; exists {
		return nil, ErrSessionAlreadyExists
	}
	s := New(id)
	r.sessions[id] = s
	return s, nil
}

// Get returns the session for a connection id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, exists := r.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove tears a session down: its loop is cancelled and awaited first, so
// no tick runs against the session after it leaves the map. Removing an
// unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.RLock()
	s, exists := r.sessions[id]
	r.mu.RUnlock()
	if !exists {
		return
	}

	s.Loop().Stop()

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// List returns the live sessions in no particular order.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
