// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/ashureev/fitcoach/internal/domain"
)

// Repository persists the account registry: the name each email signed up
// with. Passwords are never stored.
type Repository interface {
	// GetAccount returns the account for email, or nil when none exists.
	GetAccount(ctx context.Context, email string) (*domain.Account, error)

	// UpsertAccount creates an account or renames an existing one.
	UpsertAccount(ctx context.Context, account *domain.Account) error

	// TouchLogin records a successful login for email.
	TouchLogin(ctx context.Context, email string, at time.Time) error

	// CountAccounts returns the number of registered accounts.
	CountAccounts(ctx context.Context) (int, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// NormalizeEmail is the key form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
