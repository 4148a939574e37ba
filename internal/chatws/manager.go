// Package chatws carries the plan chat over a WebSocket.
package chatws

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/coder/websocket"

	"github.com/ashureev/fitcoach/internal/metrics"
)

// SessionManager tracks the open chat socket of every device tab.
type SessionManager struct {
	mu     sync.RWMutex
	active map[string]map[string]*websocket.Conn
	count  int
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		active: make(map[string]map[string]*websocket.Conn),
	}
}

// Register adds a connection, closing the one it replaces.
func (m *SessionManager) Register(deviceID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[deviceID]; !exists {
		m.active[deviceID] = make(map[string]*websocket.Conn)
	}

	existing, exists := m.active[deviceID][sessionID]
	if exists && existing != conn {
		closeConn(existing, "session replaced")
	}
	if !exists {
		m.count++
	}

	m.active[deviceID][sessionID] = conn
	metrics.ChatSockets.Set(float64(m.count))
	slog.Info("Chat socket registered", "device_id", deviceID, "session_id", sessionID)
}

// Unregister removes conn if it is still the registered one.
func (m *SessionManager) Unregister(deviceID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessions, ok := m.active[deviceID]; ok {
		if current, exists := sessions[sessionID]; exists && current == conn {
			m.remove(deviceID, sessionID)
			slog.Info("Chat socket unregistered", "device_id", deviceID, "session_id", sessionID)
		}
	}
}

// CloseSession closes the socket of one tab, if any.
func (m *SessionManager) CloseSession(deviceID, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.active[deviceID][sessionID]
	if !ok {
		return
	}
	closeConn(conn, "session closed")
	m.remove(deviceID, sessionID)
	slog.Info("Chat socket closed", "device_id", deviceID, "session_id", sessionID)
}

// CloseKey is CloseSession for a key built by identity.SessionKey.
func (m *SessionManager) CloseKey(key string) {
	deviceID, sessionID, ok := strings.Cut(key, ":")
	if !ok {
		return
	}
	m.CloseSession(deviceID, sessionID)
}

// Count returns the number of open sockets.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// remove deletes one entry. Caller holds mu.
func (m *SessionManager) remove(deviceID, sessionID string) {
	sessions := m.active[deviceID]
	delete(sessions, sessionID)
	if len(sessions) == 0 {
		delete(m.active, deviceID)
	}
	m.count--
	metrics.ChatSockets.Set(float64(m.count))
}

func closeConn(conn *websocket.Conn, reason string) {
	if err := conn.Close(websocket.StatusNormalClosure, reason); err != nil {
		slog.Debug("Failed to close chat socket", "error", err)
	}
}
