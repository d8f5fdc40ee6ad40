package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SessionStore keeps fiber sessions in Postgres. It satisfies fiber.Storage.
type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

// Migrate creates the sessions table if it does not exist
func (s *SessionStore) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS sessions (
			k TEXT PRIMARY KEY,
			v BYTEA NOT NULL,
			e BIGINT NOT NULL DEFAULT 0
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Get returns the stored value, or nil when the key is missing or expired
func (s *SessionStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	query := `SELECT v, e FROM sessions WHERE k = $1`

	var (
		value  []byte
		expiry int64
	)
	err := s.db.QueryRowContext(context.Background(), query, key).Scan(&value, &expiry)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", key, err)
	}

	if expiry != 0 && expiry <= s.now().Unix() {
		return nil, nil
	}
	return value, nil
}

// Set stores value under key. A zero exp never expires.
func (s *SessionStore) Set(key string, value []byte, exp time.Duration) error {
	if key == "" || len(value) == 0 {
		return nil
	}

	var expiry int64
	if exp > 0 {
		expiry = s.now().Add(exp).Unix()
	}

	query := `
		INSERT INTO sessions (k, v, e)
		VALUES ($1, $2, $3)
		ON CONFLICT (k) DO UPDATE SET
			v = EXCLUDED.v,
			e = EXCLUDED.e
	`
	if _, err := s.db.ExecContext(context.Background(), query, key, value, expiry); err != nil {
		return fmt.Errorf("failed to save session %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *SessionStore) Delete(key string) error {
	if key == "" {
		return nil
	}
	if _, err := s.db.ExecContext(context.Background(), `DELETE FROM sessions WHERE k = $1`, key); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", key, err)
	}
	return nil
}

// Reset removes every session
func (s *SessionStore) Reset() error {
	if _, err := s.db.ExecContext(context.Background(), `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to reset sessions: %w", err)
	}
	return nil
}

// Close closes the database pool
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// DeleteExpired removes expired sessions and returns how many were removed
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE e <> 0 AND e <= $1`

	res, err := s.db.ExecContext(ctx, query, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired sessions: %w", err)
	}
	return n, nil
}
