// Package auth implements the local login and signup forms.
//
// There is no credential check: any non-empty email and password log in.
// Signup only records the display name for an email in the account registry.
package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/store"
)

const minPasswordLength = 6

// Form error messages.
const (
	MsgMissingFields    = "Please fill in all fields."
	MsgPasswordTooShort = "Password must be at least 6 characters long."
)

// FormError is a user-correctable input problem shown next to the form.
type FormError struct {
	Message string
}

func (e *FormError) Error() string { return e.Message }

// Service validates auth forms and builds users.
type Service struct {
	repo   store.Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates an auth service. repo may be nil, in which case no
// account registry is kept.
func NewService(repo store.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Login validates the form and returns the user to put in the session.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, &FormError{Message: MsgMissingFields}
	}

	name := NameFromEmail(email)
	if s.repo != nil {
		account, err := s.repo.GetAccount(ctx, email)
		switch {
		case err != nil:
			s.logger.Warn("account lookup failed", "error", err)
		case account != nil && account.Name != "":
			name = account.Name
		}
		if err := s.repo.TouchLogin(ctx, email, s.now()); err != nil {
			s.logger.Warn("failed to record login", "error", err)
		}
	}

	return s.newUser(name, email), nil
}

// Signup validates the form, registers the account and returns the user.
func (s *Service) Signup(ctx context.Context, name, email, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return domain.User{}, &FormError{Message: MsgMissingFields}
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return domain.User{}, &FormError{Message: MsgPasswordTooShort}
	}

	if s.repo != nil {
		now := s.now()
		err := s.repo.UpsertAccount(ctx, &domain.Account{
			Email:       email,
			Name:        name,
			CreatedAt:   now,
			LastLoginAt: now,
		})
		if err != nil {
			s.logger.Warn("failed to register account", "error", err)
		}
	}

	return s.newUser(name, email), nil
}

func (s *Service) newUser(name, email string) domain.User {
	now := s.now()
	return domain.User{
		UserID:     uuid.NewString(),
		Name:       name,
		Email:      email,
		LastSeenAt: now,
		CreatedAt:  now,
	}
}

// NameFromEmail derives a display name from the local part of email with
// the first letter upper-cased.
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	r, size := utf8.DecodeRuneInString(local)
	if r == utf8.RuneError {
		return local
	}
	return string(unicode.ToUpper(r)) + local[size:]
}
