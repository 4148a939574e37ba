package session

import (
	"log/slog"
	"sync"

	"github.com/ashureev/fitcoach/internal/metrics"
)

// Manager keys sessions by identity.SessionKey and creates them on demand.
type Manager struct {
	assistant Assistant
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty registry whose sessions share assistant.
func NewManager(assistant Assistant, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		assistant: assistant,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the session for key, creating a logged-out one if needed.
func (m *Manager) Get(key string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[key]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s
	}
	s = New(m.assistant, m.logger.With("session_key", key))
	m.sessions[key] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return s
}

// Lookup returns the session for key without creating one.
func (m *Manager) Lookup(key string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	return s, ok
}

// Remove logs the session out and forgets it.
func (m *Manager) Remove(key string) {
	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if ok {
		s.Logout()
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) all() map[string]*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*Session, len(m.sessions))
	for k, s := range m.sessions {
		out[k] = s
	}
	return out
}
