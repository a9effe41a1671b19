package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/habit"
)

// UpsertDailyLog inserts or merges one day's wellbeing record. Present
// fields overwrite, absent fields (zero) keep the stored value, COALESCE
// style - logging mood in the morning and stress at night yields one merged
// row.
func (s *Store) UpsertDailyLog(ctx context.Context, l habit.DailyLog) (*habit.DailyLog, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_logs (id, user_id, log_date, mood, energy, stress, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, log_date) DO UPDATE SET
			mood = COALESCE(excluded.mood, daily_logs.mood),
			energy = COALESCE(excluded.energy, daily_logs.energy),
			stress = COALESCE(excluded.stress, daily_logs.stress),
			note = CASE WHEN excluded.note <> '' THEN excluded.note ELSE daily_logs.note END,
			updated_at = excluded.updated_at
	`,
		l.ID,
		l.UserID,
		l.LogDate.String(),
		nullableScore(l.Mood),
		nullableScore(l.Energy),
		nullableScore(l.Stress),
		l.Note,
		formatInstant(l.CreatedAt),
		formatInstant(l.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert daily log: %w", err)
	}
	return s.GetDailyLog(ctx, l.UserID, l.LogDate)
}

// GetDailyLog fetches one day's record, or (nil, nil).
func (s *Store) GetDailyLog(ctx context.Context, userID string, day dates.Date) (*habit.DailyLog, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, log_date, mood, energy, stress, note, created_at, updated_at
		FROM daily_logs WHERE user_id = ? AND log_date = ?
	`, userID, day.String())
	l, err := scanDailyLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily log: %w", err)
	}
	return l, nil
}

// ListDailyLogs returns a user's logs between start and end inclusive,
// most recent first.
func (s *Store) ListDailyLogs(ctx context.Context, userID string, start, end dates.Date) ([]habit.DailyLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, log_date, mood, energy, stress, note, created_at, updated_at
		FROM daily_logs
		WHERE user_id = ? AND log_date BETWEEN ? AND ?
		ORDER BY log_date DESC
	`, userID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	defer rows.Close()

	var out []habit.DailyLog
	for rows.Next() {
		l, err := scanDailyLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily log: %w", err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	return out, nil
}

func scanDailyLog(row interface{ Scan(...any) error }) (*habit.DailyLog, error) {
	var l habit.DailyLog
	var logDate, createdAt, updatedAt string
	var mood, energy, stress sql.NullInt64
	err := row.Scan(&l.ID, &l.UserID, &logDate, &mood, &energy, &stress, &l.Note, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	l.Mood = int(mood.Int64)
	l.Energy = int(energy.Int64)
	l.Stress = int(stress.Int64)
	if l.LogDate, err = dates.Parse(logDate); err != nil {
		return nil, err
	}
	if l.CreatedAt, err = parseInstant(createdAt); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseInstant(updatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// nullableScore maps the zero value (not supplied) to NULL so COALESCE
// merging works.
func nullableScore(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
