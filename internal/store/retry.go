package store

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	maxRetries     = 3
	baseRetryDelay = 50 * time.Millisecond
)

// IsSQLiteConflictError reports whether err is a SQLITE_BUSY or
// "database is locked" error. Both are transient and worth retrying.
func IsSQLiteConflictError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// withRetry runs fn, retrying lock conflicts with exponential backoff
// (50ms, 100ms). Any other error is returned as is.
func withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if err == nil || !IsSQLiteConflictError(err) || i == maxRetries-1 {
			return err
		}

		delay := baseRetryDelay * time.Duration(1<<i)
		slog.Debug("Database locked, retrying", "op", op, "attempt", i+1, "delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
