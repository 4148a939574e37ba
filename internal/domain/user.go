// Package domain contains core domain types for the FitCoach application.
package domain

import (
	"time"
)

// User represents the person signed in on a device tab.
// The service trusts whatever the login form provided; nothing is verified.
type User struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Account is a registered (name, email) pair kept by the account registry.
type Account struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}
