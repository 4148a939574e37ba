package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/fitcoach/internal/domain"
	_ "modernc.org/sqlite"
)

// MemoryPath selects a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository. dbPath may be MemoryPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := MemoryPath
	maxConns := 1
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		// WAL mode for better concurrency.
		dsn = dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
		maxConns = 10
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	if dbPath != MemoryPath {
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS accounts (
		email TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		last_login_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_accounts_last_login ON accounts(last_login_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetAccount retrieves an account by email.
func (s *SQLiteStore) GetAccount(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT email, name, created_at, last_login_at FROM accounts WHERE email = ?`

	var account domain.Account
	var createdAt, lastLogin int64
	err := withRetry(ctx, "get account", func() error {
		return s.db.QueryRowContext(ctx, query, NormalizeEmail(email)).
			Scan(&account.Email, &account.Name, &createdAt, &lastLogin)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan account row: %w", err)
	}

	account.CreatedAt = time.Unix(createdAt, 0)
	if lastLogin > 0 {
		account.LastLoginAt = time.Unix(lastLogin, 0)
	}
	return &account, nil
}

// UpsertAccount creates or updates an account record.
func (s *SQLiteStore) UpsertAccount(ctx context.Context, account *domain.Account) error {
	query := `
	INSERT INTO accounts (email, name, created_at, last_login_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(email) DO UPDATE SET
		name = excluded.name`

	createdAt := account.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var lastLogin int64
	if !account.LastLoginAt.IsZero() {
		lastLogin = account.LastLoginAt.Unix()
	}

	err := withRetry(ctx, "upsert account", func() error {
		_, err := s.db.ExecContext(ctx, query, NormalizeEmail(account.Email), account.Name, createdAt.Unix(), lastLogin)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

// TouchLogin updates last_login_at for an account.
func (s *SQLiteStore) TouchLogin(ctx context.Context, email string, at time.Time) error {
	query := `UPDATE accounts SET last_login_at = ? WHERE email = ?`

	var rows int64
	err := withRetry(ctx, "touch login", func() error {
		result, err := s.db.ExecContext(ctx, query, at.Unix(), NormalizeEmail(email))
		if err != nil {
			return err
		}
		rows, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("update last_login_at: %w", err)
	}
	if rows == 0 {
		slog.Debug("TouchLogin affected 0 rows", "email", email)
	}
	return nil
}

// CountAccounts returns the number of registered accounts.
func (s *SQLiteStore) CountAccounts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Repository = (*SQLiteStore)(nil)
