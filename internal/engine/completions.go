package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/habit"
	"github.com/roach88/habitarc/internal/store"
	"github.com/roach88/habitarc/internal/streak"
)

// CompletionParams identify and describe one ledger write. Date is optional:
// when zero it defaults to today in the user's zone; when supplied it must
// lie within the ±1-day tolerance window. Value 0 defaults to 1.
type CompletionParams struct {
	UserID  string
	HabitID string
	Date    dates.Date
	Value   int
	Note    string
}

// MutationResult is what every successful ledger mutation returns: the
// affected row (nil after a delete) and the habit with counters recomputed
// in the same transaction.
type MutationResult struct {
	Completion *habit.Completion
	Habit      *habit.Habit
}

// ToggleResult reports which way a toggle flipped, plus the usual mutation
// payload.
type ToggleResult struct {
	Action ToggleAction
	MutationResult
}

// ToggleAction re-exports the ledger's two-state transition tag.
type ToggleAction = habit.ToggleAction

// resolveMutation validates the shared parts of a ledger write and hands
// back everything the transaction needs.
func (e *Engine) resolveMutation(ctx context.Context, p *CompletionParams) (*userContext, *habit.Habit, error) {
	if p.Value == 0 {
		p.Value = 1
	}
	if p.Value < 1 || p.Value > habit.MaxValue {
		return nil, nil, habit.NewValidation("value %d out of range 1-%d", p.Value, habit.MaxValue)
	}

	uc, err := e.resolveUser(ctx, p.UserID)
	if err != nil {
		return nil, nil, err
	}

	if p.Date.IsZero() {
		p.Date = uc.today
	} else if err := dates.CheckExplicitDate(p.Date, uc.today); err != nil {
		return nil, nil, habit.NewValidation("%v", err)
	}

	h, err := e.activeHabit(ctx, p.UserID, p.HabitID)
	if err != nil {
		return nil, nil, err
	}
	return uc, h, nil
}

// CreateCompletion records a completion for (habit, day). Idempotent: if the
// slot is already filled the existing row comes back unchanged - never an
// error, and a concurrent loser is absorbed by the uniqueness constraint.
// When the caller supplies a larger value for an already-filled day, the
// row's value is bumped in place (the one legal in-place update).
func (e *Engine) CreateCompletion(ctx context.Context, p CompletionParams) (*MutationResult, error) {
	uc, h, err := e.resolveMutation(ctx, &p)
	if err != nil {
		return nil, err
	}

	var res MutationResult
	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		row, inserted, err := tx.InsertCompletionIdempotent(ctx, habit.Completion{
			ID:        uuid.NewString(),
			HabitID:   h.ID,
			UserID:    p.UserID,
			LocalDate: p.Date,
			Value:     p.Value,
			Note:      p.Note,
			CreatedAt: e.now(),
		})
		if err != nil {
			return err
		}
		if !inserted && p.Value > row.Value {
			if row, err = tx.BumpCompletionValue(ctx, h.ID, p.Date, p.Value); err != nil {
				return err
			}
		}
		res.Completion = row
		return e.recompute(ctx, tx, h, uc.today, &res)
	})
	if err != nil {
		return nil, asEngineError("create completion", err)
	}
	return &res, nil
}

// DeleteCompletion removes the row for (habit, day). Removing an absent row
// is success: the result carries a nil Completion either way and Deleted
// tells the caller whether anything changed.
func (e *Engine) DeleteCompletion(ctx context.Context, p CompletionParams) (deleted bool, result *MutationResult, err error) {
	uc, h, err := e.resolveMutation(ctx, &p)
	if err != nil {
		return false, nil, err
	}

	var res MutationResult
	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		if deleted, err = tx.DeleteCompletion(ctx, h.ID, p.Date); err != nil {
			return err
		}
		return e.recompute(ctx, tx, h, uc.today, &res)
	})
	if err != nil {
		return false, nil, asEngineError("delete completion", err)
	}
	return deleted, &res, nil
}

// ToggleCompletion flips the (habit, day) slot relative to current stored
// state: absent becomes present, present becomes absent. Deliberately not a
// "set to X" command - offline or replayed toggles reconcile against what
// the server holds now, not against the client's stale view.
func (e *Engine) ToggleCompletion(ctx context.Context, p CompletionParams) (*ToggleResult, error) {
	uc, h, err := e.resolveMutation(ctx, &p)
	if err != nil {
		return nil, err
	}

	var res ToggleResult
	err = e.store.WithTx(ctx, func(tx *store.Tx) error {
		existing, err := tx.GetCompletion(ctx, h.ID, p.Date)
		if err != nil {
			return err
		}
		if existing == nil {
			row, _, err := tx.InsertCompletionIdempotent(ctx, habit.Completion{
				ID:        uuid.NewString(),
				HabitID:   h.ID,
				UserID:    p.UserID,
				LocalDate: p.Date,
				Value:     p.Value,
				Note:      p.Note,
				CreatedAt: e.now(),
			})
			if err != nil {
				return err
			}
			res.Action = habit.ToggleCreated
			res.Completion = row
		} else {
			if _, err := tx.DeleteCompletion(ctx, h.ID, p.Date); err != nil {
				return err
			}
			res.Action = habit.ToggleDeleted
		}
		return e.recompute(ctx, tx, h, uc.today, &res.MutationResult)
	})
	if err != nil {
		return nil, asEngineError("toggle completion", err)
	}
	e.log.Debug("completion toggled", "habit", h.ID, "date", p.Date, "action", res.Action)
	return &res, nil
}

// ListCompletions returns the habit's ledger rows in a range, most recent
// first. A zero start defaults to 30 days back, a zero end to today.
func (e *Engine) ListCompletions(ctx context.Context, userID, habitID string, start, end dates.Date) ([]habit.Completion, error) {
	uc, err := e.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if habitID != "" {
		if _, err := e.activeHabit(ctx, userID, habitID); err != nil {
			return nil, err
		}
	}
	if end.IsZero() {
		end = uc.today
	}
	if start.IsZero() {
		start = end.AddDays(-30)
	}
	if end.Before(start) {
		return nil, habit.NewValidation("range end %s precedes start %s", end, start)
	}
	rows, err := e.store.ListCompletions(ctx, userID, habitID, start, end)
	if err != nil {
		return nil, habit.WrapPersistence("list completions", err)
	}
	return rows, nil
}

// recompute rederives the habit's counters from the ledger on the
// mutation's own transaction and stores the refreshed habit into res.
// Counters are rewritten from scratch: total is the exact row count and the
// streak walk runs over the distinct dates, so deletes and resets can never
// leave drift behind.
func (e *Engine) recompute(ctx context.Context, tx *store.Tx, h *habit.Habit, today dates.Date, res *MutationResult) error {
	sched, err := tx.GetSchedule(ctx, h.ID)
	if err != nil {
		return err
	}
	days, err := tx.DistinctCompletionDates(ctx, h.ID)
	if err != nil {
		return err
	}
	total, err := tx.CountCompletions(ctx, h.ID)
	if err != nil {
		return err
	}

	result := streak.Compute(h, sched, days, today)
	if err := tx.UpdateStreakCounters(ctx, h.ID, result.Current, result.Longest, total); err != nil {
		return err
	}

	updated, err := tx.GetHabit(ctx, h.UserID, h.ID)
	if err != nil {
		return err
	}
	res.Habit = updated
	return nil
}

// asEngineError passes typed domain errors through and wraps anything else
// as a persistence failure of the named unit.
func asEngineError(unit string, err error) error {
	if err == nil {
		return nil
	}
	var e *habit.Error
	if errors.As(err, &e) {
		return err
	}
	return habit.WrapPersistence(unit, err)
}
