package session

import (
	"context"
	"time"
)

const defaultSweepInterval = 5 * time.Minute

// EvictCallback is called after the sweeper drops an idle session.
type EvictCallback func(key string)

// StartSweeper runs a background goroutine that periodically evicts sessions
// idle for longer than ttl. It stops when ctx is done.
func (m *Manager) StartSweeper(ctx context.Context, interval, ttl time.Duration, onEvict EvictCallback) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		m.logger.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				m.Sweep(time.Now(), ttl, onEvict)
			case <-ctx.Done():
				m.logger.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// Sweep evicts every session whose last activity is older than ttl at now
// and returns how many were removed.
func (m *Manager) Sweep(now time.Time, ttl time.Duration, onEvict EvictCallback) int {
	if ttl <= 0 {
		return 0
	}
	var expired []string
	for key, s := range m.all() {
		if now.Sub(s.LastSeen()) > ttl {
			expired = append(expired, key)
		}
	}
	if len(expired) == 0 {
		return 0
	}

	m.logger.Info("Session sweeper found idle sessions", "count", len(expired))
	for _, key := range expired {
		m.Remove(key)
		if onEvict != nil {
			onEvict(key)
		}
	}
	return len(expired)
}
