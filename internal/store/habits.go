package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/habit"
)

// CreateHabit inserts a habit together with its schedule rows in one
// transaction. The habit must already be validated; h.CreatedAt/UpdatedAt
// and the creation-day bucket are taken from the passed record.
func (s *Store) CreateHabit(ctx context.Context, h *habit.Habit, sched habit.Schedule, createdLocalDate dates.Date) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.tx.ExecContext(ctx, `
			INSERT INTO habits
			(id, user_id, name, canonical_name, description, color, icon, frequency,
			 target_per_day, sort_order, current_streak, longest_streak, total_completions,
			 archived, created_local_date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0, 0, ?, ?, ?)
		`,
			h.ID,
			h.UserID,
			h.Name,
			habit.CanonicalName(h.Name),
			h.Description,
			h.Color,
			h.Icon,
			string(h.Frequency),
			h.TargetPerDay,
			h.SortOrder,
			createdLocalDate.String(),
			formatInstant(h.CreatedAt),
			formatInstant(h.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert habit: %w", err)
		}
		return insertScheduleRows(ctx, tx.tx, h.ID, h.Frequency, sched)
	})
}

// insertScheduleRows writes the normalized schedule shape for a habit.
// Daily habits write nothing. The partial unique indexes reject a second
// target row or a repeated weekday, so a racing shape write surfaces as a
// constraint error rather than a mixed shape.
func insertScheduleRows(ctx context.Context, q querier, habitID string, freq habit.Frequency, sched habit.Schedule) error {
	switch freq {
	case habit.FrequencyWeeklyDays:
		for _, day := range sched.Normalize().Days {
			_, err := q.ExecContext(ctx, `
				INSERT INTO habit_schedules (habit_id, kind, weekday)
				VALUES (?, 'day_set', ?)
			`, habitID, day)
			if err != nil {
				return fmt.Errorf("insert schedule day %d: %w", day, err)
			}
		}
	case habit.FrequencyWeeklyTarget:
		_, err := q.ExecContext(ctx, `
			INSERT INTO habit_schedules (habit_id, kind, times_per_week)
			VALUES (?, 'weekly_target', ?)
		`, habitID, sched.TimesPerWeek)
		if err != nil {
			return fmt.Errorf("insert schedule target: %w", err)
		}
	}
	return nil
}

// ReplaceSchedule swaps a habit's frequency and schedule shape atomically.
func (s *Store) ReplaceSchedule(ctx context.Context, habitID string, freq habit.Frequency, sched habit.Schedule) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.tx.ExecContext(ctx,
			`DELETE FROM habit_schedules WHERE habit_id = ?`, habitID); err != nil {
			return fmt.Errorf("clear schedule: %w", err)
		}
		if _, err := tx.tx.ExecContext(ctx,
			`UPDATE habits SET frequency = ? WHERE id = ?`, string(freq), habitID); err != nil {
			return fmt.Errorf("update frequency: %w", err)
		}
		return insertScheduleRows(ctx, tx.tx, habitID, freq, sched)
	})
}

// GetSchedule reads a habit's schedule rows back into the normalized shape.
func (s *Store) GetSchedule(ctx context.Context, habitID string) (habit.Schedule, error) {
	return getSchedule(ctx, s.db, habitID)
}

// GetSchedule is the in-transaction variant, used by the recompute path.
func (t *Tx) GetSchedule(ctx context.Context, habitID string) (habit.Schedule, error) {
	return getSchedule(ctx, t.tx, habitID)
}

func getSchedule(ctx context.Context, q querier, habitID string) (habit.Schedule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT kind, weekday, times_per_week FROM habit_schedules
		WHERE habit_id = ?
		ORDER BY weekday
	`, habitID)
	if err != nil {
		return habit.Schedule{}, fmt.Errorf("get schedule: %w", err)
	}
	defer rows.Close()

	var sched habit.Schedule
	for rows.Next() {
		var kind string
		var weekday, timesPerWeek sql.NullInt64
		if err := rows.Scan(&kind, &weekday, &timesPerWeek); err != nil {
			return habit.Schedule{}, fmt.Errorf("scan schedule row: %w", err)
		}
		switch kind {
		case "day_set":
			if weekday.Valid {
				sched.Days = append(sched.Days, int(weekday.Int64))
			}
		case "weekly_target":
			if timesPerWeek.Valid {
				sched.TimesPerWeek = int(timesPerWeek.Int64)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return habit.Schedule{}, fmt.Errorf("get schedule: %w", err)
	}
	return sched, nil
}

const habitColumns = `id, user_id, name, description, color, icon, frequency,
	target_per_day, sort_order, current_streak, longest_streak, total_completions,
	archived, created_local_date, created_at, updated_at`

func scanHabit(row interface{ Scan(...any) error }) (*habit.Habit, dates.Date, error) {
	var h habit.Habit
	var freq, createdLocal, createdAt, updatedAt string
	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Description, &h.Color, &h.Icon, &freq,
		&h.TargetPerDay, &h.SortOrder, &h.CurrentStreak, &h.LongestStreak,
		&h.TotalCompletions, &h.Archived, &createdLocal, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, dates.Date{}, err
	}
	h.Frequency = habit.Frequency(freq)
	created, err := dates.Parse(createdLocal)
	if err != nil {
		return nil, dates.Date{}, err
	}
	if h.CreatedAt, err = parseInstant(createdAt); err != nil {
		return nil, dates.Date{}, err
	}
	if h.UpdatedAt, err = parseInstant(updatedAt); err != nil {
		return nil, dates.Date{}, err
	}
	return &h, created, nil
}

// GetHabit fetches a habit scoped to its owner. Returns (nil, nil) when the
// habit does not exist or belongs to another user.
func (s *Store) GetHabit(ctx context.Context, userID, habitID string) (*habit.Habit, error) {
	return getHabit(ctx, s.db, userID, habitID)
}

// GetHabit is the in-transaction variant.
func (t *Tx) GetHabit(ctx context.Context, userID, habitID string) (*habit.Habit, error) {
	return getHabit(ctx, t.tx, userID, habitID)
}

func getHabit(ctx context.Context, q querier, userID, habitID string) (*habit.Habit, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE id = ? AND user_id = ?`,
		habitID, userID)
	h, _, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

// FindHabitByName looks a habit up by canonical name. Returns (nil, nil)
// when no active habit matches.
func (s *Store) FindHabitByName(ctx context.Context, userID, name string) (*habit.Habit, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+habitColumns+` FROM habits
		 WHERE user_id = ? AND canonical_name = ? AND archived = 0`,
		userID, habit.CanonicalName(name))
	h, _, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find habit by name: %w", err)
	}
	return h, nil
}

// ActiveHabit pairs a habit with its creation-day bucket, which scopes
// analytics to the habit's lifetime.
type ActiveHabit struct {
	Habit        *habit.Habit
	CreatedLocal dates.Date
}

// ListActiveHabits returns the user's non-archived habits in display order.
func (s *Store) ListActiveHabits(ctx context.Context, userID string) ([]ActiveHabit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+habitColumns+` FROM habits
		 WHERE user_id = ? AND archived = 0
		 ORDER BY sort_order ASC, created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var out []ActiveHabit
	for rows.Next() {
		h, created, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		out = append(out, ActiveHabit{Habit: h, CreatedLocal: created})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return out, nil
}

// CountActiveHabits is the entitlement gate's input: how many habits the
// user currently has.
func (s *Store) CountActiveHabits(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM habits WHERE user_id = ? AND archived = 0`,
		userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count habits: %w", err)
	}
	return n, nil
}

// ArchiveHabit soft-deletes a habit. Historical completions stay
// attributable; only account erasure hard-deletes. Returns false when no
// active habit matched.
func (s *Store) ArchiveHabit(ctx context.Context, userID, habitID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE habits SET archived = 1 WHERE id = ? AND user_id = ? AND archived = 0`,
		habitID, userID)
	if err != nil {
		return false, fmt.Errorf("archive habit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("archive habit: %w", err)
	}
	return n > 0, nil
}

// UpdateStreakCounters rewrites the denormalized counters after a recompute.
// longest_streak is persisted as MAX(stored, computed): a monotonically
// non-decreasing watermark of the best run ever observed, even after
// deletions shrink the history.
func (t *Tx) UpdateStreakCounters(ctx context.Context, habitID string, current, longest, total int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE habits SET
			current_streak = ?,
			longest_streak = MAX(longest_streak, ?),
			total_completions = ?,
			updated_at = STRFTIME('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ?
	`, current, longest, total, habitID)
	if err != nil {
		return fmt.Errorf("update streak counters: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update streak counters: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update streak counters: habit %s not found", habitID)
	}
	return nil
}
