package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/fitcoach/internal/domain"
)

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(MemoryPath)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAccountLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newMemoryStore(t)

	got, err := s.GetAccount(ctx, "jane@example.com")
	if err != nil || got != nil {
		t.Fatalf("expected no account, got %+v, %v", got, err)
	}

	if err := s.UpsertAccount(ctx, &domain.Account{Email: " Jane@Example.com ", Name: "Jane"}); err != nil {
		t.Fatalf("UpsertAccount: %v", err)
	}
	got, err = s.GetAccount(ctx, "jane@example.com")
	if err != nil || got == nil {
		t.Fatalf("GetAccount: %+v, %v", got, err)
	}
	if got.Name != "Jane" || got.Email != "jane@example.com" {
		t.Fatalf("unexpected account: %+v", got)
	}
	if !got.LastLoginAt.IsZero() {
		t.Fatalf("expected zero last login, got %v", got.LastLoginAt)
	}

	if err := s.UpsertAccount(ctx, &domain.Account{Email: "jane@example.com", Name: "Janet"}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	login := time.Unix(1_700_000_000, 0)
	if err := s.TouchLogin(ctx, "JANE@example.com", login); err != nil {
		t.Fatalf("TouchLogin: %v", err)
	}

	got, _ = s.GetAccount(ctx, "jane@example.com")
	if got.Name != "Janet" || !got.LastLoginAt.Equal(login) {
		t.Fatalf("unexpected account after update: %+v", got)
	}

	n, err := s.CountAccounts(ctx)
	if err != nil || n != 1 {
		t.Fatalf("CountAccounts = %d, %v", n, err)
	}
}

func TestTouchLoginUnknownEmailIsNotAnError(t *testing.T) {
	t.Parallel()
	s := newMemoryStore(t)
	if err := s.TouchLogin(context.Background(), "ghost@example.com", time.Now()); err != nil {
		t.Fatalf("TouchLogin: %v", err)
	}
}

func TestFileDatabasePersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "fitcoach.db")

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	if err := s.UpsertAccount(ctx, &domain.Account{Email: "a@b.c", Name: "A"}); err != nil {
		t.Fatalf("UpsertAccount: %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	_ = s.Close()

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, err := reopened.GetAccount(ctx, "a@b.c")
	if err != nil || got == nil || got.Name != "A" {
		t.Fatalf("account not persisted: %+v, %v", got, err)
	}
}

func TestWithRetry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	calls := 0
	err := withRetry(ctx, "test", func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success on third attempt, got calls=%d err=%v", calls, err)
	}

	calls = 0
	permanent := errors.New("no such table")
	err = withRetry(ctx, "test", func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("expected a single attempt for permanent errors, got calls=%d err=%v", calls, err)
	}

	calls = 0
	err = withRetry(ctx, "test", func() error {
		calls++
		return errors.New("SQLITE_BUSY")
	})
	if !IsSQLiteConflictError(err) || calls != maxRetries {
		t.Fatalf("expected %d attempts, got calls=%d err=%v", maxRetries, calls, err)
	}
}

func TestIsSQLiteConflictError(t *testing.T) {
	t.Parallel()
	if IsSQLiteConflictError(nil) {
		t.Fatal("nil is not a conflict")
	}
	if !IsSQLiteConflictError(errors.New("database is locked")) {
		t.Fatal("expected locked error to be a conflict")
	}
	if IsSQLiteConflictError(errors.New("constraint failed")) {
		t.Fatal("constraint errors are not conflicts")
	}
}
