package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// User is the minimal identity record the engine needs: who owns the data
// and which zone their calendar days are bucketed in.
type User struct {
	ID        string
	Timezone  string
	Tier      string
	CreatedAt time.Time
}

// UpsertUser inserts a user or updates the timezone/tier of an existing one.
// Changing the timezone affects only future bucketing; past completions keep
// the local dates they were written with.
func (s *Store) UpsertUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, timezone, tier, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET timezone = excluded.timezone, tier = excluded.tier
	`,
		u.ID,
		u.Timezone,
		u.Tier,
		u.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser fetches a user record. Returns (nil, nil) when absent; callers
// map that to their own not-found error.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, timezone, tier, created_at FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Timezone, &u.Tier, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt, err = parseInstant(createdAt)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q: %w", s, err)
	}
	return t, nil
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
