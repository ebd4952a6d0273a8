package session

import (
	"slices"
	"strings"
	"sync"
)

// Registry holds every live session keyed by name.
type Registry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewRegistry ...
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// AddSession registers s under its name, replacing any session registered under the same name.
func (r *Registry) AddSession(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[strings.ToLower(s.Name())] = s
}

// GetSession returns the session registered under the name passed, ignoring case.
func (r *Registry) GetSession(name string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[strings.ToLower(name)]
}

// RemoveSession removes s if it is still the session registered under its name.
func (r *Registry) RemoveSession(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(s.Name())
	if r.sessions[key] == s {
		delete(r.sessions, key)
	}
}

// GetSessions returns every session ordered by name.
func (r *Registry) GetSessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	slices.SortFunc(sessions, func(a, b *Session) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return sessions
}

// Len ...
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
