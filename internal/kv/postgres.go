package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps values in the coaching_sessions table created by
// cmd/migrate.
type PostgresStore struct {
	db  DB
	now func() time.Time
}

// NewPostgresStore builds a Postgres-backed store.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("kv: pgx pool cannot be nil")
	}
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, `
		SELECT value FROM coaching_sessions
		WHERE session_key = $1 AND (expires_at IS NULL OR expires_at > $2)
	`, key, s.now().UTC()).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv: postgres get %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now().UTC()
	var expiresAt *time.Time
	if ttl > 0 {
		t := now.Add(ttl)
		expiresAt = &t
	}
	if _, err := s.db.Exec(ctx, `
		INSERT INTO coaching_sessions (session_key, value, updated_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at
	`, key, value, now, expiresAt); err != nil {
		return fmt.Errorf("kv: postgres put %s: %w", key, err)
	}
	return nil
}

// PurgeExpired deletes rows past their expiry and returns how many went.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM coaching_sessions WHERE expires_at <= $1`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("kv: purge expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
