package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/habit"
)

const completionColumns = `id, habit_id, user_id, local_date, value, note, created_at`

func scanCompletion(row interface{ Scan(...any) error }) (*habit.Completion, error) {
	var c habit.Completion
	var localDate, createdAt string
	err := row.Scan(&c.ID, &c.HabitID, &c.UserID, &localDate, &c.Value, &c.Note, &createdAt)
	if err != nil {
		return nil, err
	}
	if c.LocalDate, err = dates.Parse(localDate); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseInstant(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertCompletionIdempotent inserts a completion row, absorbing conflicts.
// Uses ON CONFLICT(habit_id, local_date) DO NOTHING: when the slot is
// already taken the existing row is fetched and returned unchanged, and
// inserted is false. The loser of a simultaneous create is absorbed, never
// an error.
func (t *Tx) InsertCompletionIdempotent(ctx context.Context, c habit.Completion) (*habit.Completion, bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO completions (id, habit_id, user_id, local_date, value, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, local_date) DO NOTHING
	`,
		c.ID,
		c.HabitID,
		c.UserID,
		c.LocalDate.String(),
		c.Value,
		c.Note,
		formatInstant(c.CreatedAt),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert completion: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert completion: rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return &c, true, nil
	}

	// Conflict - fetch the row that won.
	existing, err := getCompletion(ctx, t.tx, c.HabitID, c.LocalDate)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		// Row vanished between insert and select; inside one transaction
		// this means the database is misbehaving.
		return nil, false, fmt.Errorf("insert completion: conflicting row not found")
	}
	return existing, false, nil
}

// DeleteCompletion removes the row for (habit, localDate) if present.
// Deleting an absent row is success with deleted=false, not an error.
func (t *Tx) DeleteCompletion(ctx context.Context, habitID string, day dates.Date) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM completions WHERE habit_id = ? AND local_date = ?`,
		habitID, day.String())
	if err != nil {
		return false, fmt.Errorf("delete completion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete completion: %w", err)
	}
	return n > 0, nil
}

// GetCompletion fetches the row for (habit, localDate), or (nil, nil).
func (t *Tx) GetCompletion(ctx context.Context, habitID string, day dates.Date) (*habit.Completion, error) {
	return getCompletion(ctx, t.tx, habitID, day)
}

// GetCompletion is the read-only variant on Store.
func (s *Store) GetCompletion(ctx context.Context, habitID string, day dates.Date) (*habit.Completion, error) {
	return getCompletion(ctx, s.db, habitID, day)
}

func getCompletion(ctx context.Context, q querier, habitID string, day dates.Date) (*habit.Completion, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+completionColumns+` FROM completions WHERE habit_id = ? AND local_date = ?`,
		habitID, day.String())
	c, err := scanCompletion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

// BumpCompletionValue performs the one in-place update the ledger allows:
// raising the value of an existing same-day row. Returns the updated row,
// or (nil, nil) when the row is absent.
func (t *Tx) BumpCompletionValue(ctx context.Context, habitID string, day dates.Date, value int) (*habit.Completion, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE completions SET value = ? WHERE habit_id = ? AND local_date = ?`,
		value, habitID, day.String())
	if err != nil {
		return nil, fmt.Errorf("bump completion value: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("bump completion value: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return getCompletion(ctx, t.tx, habitID, day)
}

// DistinctCompletionDates returns every local date carrying a completion for
// the habit, ascending. This is the streak recompute's input; it runs on the
// mutation's own transaction so the recompute sees the mutation.
func (t *Tx) DistinctCompletionDates(ctx context.Context, habitID string) ([]dates.Date, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT DISTINCT local_date FROM completions
		WHERE habit_id = ?
		ORDER BY local_date ASC
	`, habitID)
	if err != nil {
		return nil, fmt.Errorf("distinct completion dates: %w", err)
	}
	defer rows.Close()

	var out []dates.Date
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan completion date: %w", err)
		}
		d, err := dates.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("distinct completion dates: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("distinct completion dates: %w", err)
	}
	return out, nil
}

// CountCompletions returns the exact number of ledger rows for the habit.
// total_completions is always rewritten from this count, never incremented,
// so it stays correct under deletes and resets.
func (t *Tx) CountCompletions(ctx context.Context, habitID string) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completions WHERE habit_id = ?`, habitID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return n, nil
}

// CountCompletionsInRange counts ledger rows for a habit between start and
// end inclusive. Used for weekly_target due-ness.
func (s *Store) CountCompletionsInRange(ctx context.Context, habitID string, start, end dates.Date) (int, error) {
	return countCompletionsInRange(ctx, s.db, habitID, start, end)
}

// CountCompletionsInRange is the in-transaction variant.
func (t *Tx) CountCompletionsInRange(ctx context.Context, habitID string, start, end dates.Date) (int, error) {
	return countCompletionsInRange(ctx, t.tx, habitID, start, end)
}

func countCompletionsInRange(ctx context.Context, q querier, habitID string, start, end dates.Date) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM completions
		WHERE habit_id = ? AND local_date BETWEEN ? AND ?
	`, habitID, start.String(), end.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completions in range: %w", err)
	}
	return n, nil
}

// ListCompletions returns a user's completions between start and end
// inclusive, most recent first. habitID narrows to one habit when non-empty.
func (s *Store) ListCompletions(ctx context.Context, userID, habitID string, start, end dates.Date) ([]habit.Completion, error) {
	query := `SELECT ` + completionColumns + ` FROM completions
		WHERE user_id = ? AND local_date BETWEEN ? AND ?`
	args := []any{userID, start.String(), end.String()}
	if habitID != "" {
		query += ` AND habit_id = ?`
		args = append(args, habitID)
	}
	query += ` ORDER BY local_date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var out []habit.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return out, nil
}

// SumValuesByDate returns per-day value sums for one habit over a range,
// ascending by date. Days without completions are simply absent; the
// aggregator zero-fills.
func (s *Store) SumValuesByDate(ctx context.Context, habitID string, start, end dates.Date) (map[dates.Date]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT local_date, COALESCE(SUM(value), 0)
		FROM completions
		WHERE habit_id = ? AND local_date BETWEEN ? AND ?
		GROUP BY local_date
	`, habitID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("sum values by date: %w", err)
	}
	defer rows.Close()

	out := make(map[dates.Date]int)
	for rows.Next() {
		var s string
		var sum int
		if err := rows.Scan(&s, &sum); err != nil {
			return nil, fmt.Errorf("scan value sum: %w", err)
		}
		d, err := dates.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("sum values by date: %w", err)
		}
		out[d] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sum values by date: %w", err)
	}
	return out, nil
}

// CompletedHabitsByDate returns, per day in range, how many distinct
// active habits the user completed. Archived habits keep their ledger rows
// but drop out of the count, matching the active-only denominator in the
// daily stats. Feeds the zero-filled daily stats.
func (s *Store) CompletedHabitsByDate(ctx context.Context, userID string, start, end dates.Date) (map[dates.Date]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.local_date, COUNT(DISTINCT c.habit_id)
		FROM completions c
		JOIN habits h ON h.id = c.habit_id AND h.archived = 0
		WHERE c.user_id = ? AND c.local_date BETWEEN ? AND ?
		GROUP BY c.local_date
	`, userID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("completed habits by date: %w", err)
	}
	defer rows.Close()

	out := make(map[dates.Date]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		d, err := dates.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("completed habits by date: %w", err)
		}
		out[d] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completed habits by date: %w", err)
	}
	return out, nil
}

// DistinctDaysSince counts the distinct local dates with a completion on or
// after the given day. Feeds the 30-day completion rate on streak reads.
func (s *Store) DistinctDaysSince(ctx context.Context, habitID string, since dates.Date) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT local_date) FROM completions
		WHERE habit_id = ? AND local_date >= ?
	`, habitID, since.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("distinct days since: %w", err)
	}
	return n, nil
}
