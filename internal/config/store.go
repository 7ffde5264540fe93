package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/authkit/authctl/internal/model"
)

// Store keeps authctl's local state in SQLite: one stored session per
// profile and a small key-value settings table.
type Store struct {
	db *sqlx.DB
}

// NewStore opens the store under dataDir. Pass empty string for in-memory.
func NewStore(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == "" {
		dsn = ":memory:?_journal_mode=WAL"
	} else {
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "authctl.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate session database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// SaveSession inserts or replaces the session of sess.Profile.
func (s *Store) SaveSession(ctx context.Context, sess *model.Session) error {
	if sess.Profile == "" {
		return errors.New("save session: profile is required")
	}
	sess.UpdatedAt = time.Now().UTC()

	const q = `INSERT INTO sessions
		(profile, base_url, email, user_id, access_token, refresh_token, expires_at, updated_at)
		VALUES
		(:profile, :base_url, :email, :user_id, :access_token, :refresh_token, :expires_at, :updated_at)
		ON CONFLICT(profile) DO UPDATE SET
			base_url = excluded.base_url,
			email = excluded.email,
			user_id = excluded.user_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`

	if _, err := s.db.NamedExecContext(ctx, q, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetSession returns the session stored for profile.
func (s *Store) GetSession(ctx context.Context, profile string) (*model.Session, error) {
	var sess model.Session
	if err := s.db.GetContext(ctx, &sess, "SELECT * FROM sessions WHERE profile = ?", profile); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// ListSessions returns every stored session ordered by profile.
func (s *Store) ListSessions(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	if err := s.db.SelectContext(ctx, &sessions, "SELECT * FROM sessions ORDER BY profile"); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession forgets the session of profile.
func (s *Store) DeleteSession(ctx context.Context, profile string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE profile = ?", profile)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// GetSetting returns the value of key, or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	if err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting upserts key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}
