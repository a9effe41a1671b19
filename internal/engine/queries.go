package engine

import (
	"context"
	"sort"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/habit"
	"github.com/roach88/habitarc/internal/schedule"
)

// HabitStatus is one habit annotated with its state for today. Due-ness and
// completion are computed at query time from current ledger data, never
// cached.
type HabitStatus struct {
	Habit          *habit.Habit   `json:"habit"`
	Schedule       habit.Schedule `json:"schedule"`
	CompletedToday int            `json:"completed_today"`
	IsComplete     bool           `json:"is_complete"`
	IsDueToday     bool           `json:"is_due_today"`
}

// HabitsWithTodayStatus lists the user's active habits in display order,
// each annotated with today's completion state and due-ness.
func (e *Engine) HabitsWithTodayStatus(ctx context.Context, userID string) ([]HabitStatus, error) {
	uc, err := e.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	active, err := e.store.ListActiveHabits(ctx, userID)
	if err != nil {
		return nil, habit.WrapPersistence("list habits", err)
	}

	weekStart := uc.today.WeekStart()
	weekEnd := weekStart.AddDays(6)

	out := make([]HabitStatus, 0, len(active))
	for _, a := range active {
		h := a.Habit
		sched, err := e.store.GetSchedule(ctx, h.ID)
		if err != nil {
			return nil, habit.WrapPersistence("load schedule", err)
		}

		todaySums, err := e.store.SumValuesByDate(ctx, h.ID, uc.today, uc.today)
		if err != nil {
			return nil, habit.WrapPersistence("sum today", err)
		}
		completedToday := todaySums[uc.today]

		weekCount := 0
		if h.Frequency == habit.FrequencyWeeklyTarget {
			weekCount, err = e.store.CountCompletionsInRange(ctx, h.ID, weekStart, weekEnd)
			if err != nil {
				return nil, habit.WrapPersistence("count week", err)
			}
		}

		out = append(out, HabitStatus{
			Habit:          h,
			Schedule:       sched,
			CompletedToday: completedToday,
			IsComplete:     completedToday >= h.TargetPerDay,
			IsDueToday:     schedule.IsDue(h, sched, uc.today, weekCount),
		})
	}
	return out, nil
}

// StreakInfo is the read side of the streak counters plus a 30-day rate.
type StreakInfo struct {
	HabitID          string  `json:"habit_id"`
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	TotalCompletions int     `json:"total_completions"`
	CompletionRate30 float64 `json:"completion_rate_30d"`
}

// Streak returns the stored counters for a habit together with the share of
// the last 30 days carrying at least one completion.
func (e *Engine) Streak(ctx context.Context, userID, habitID string) (*StreakInfo, error) {
	uc, err := e.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	h, err := e.activeHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	days, err := e.store.DistinctDaysSince(ctx, h.ID, uc.today.AddDays(-30))
	if err != nil {
		return nil, habit.WrapPersistence("count recent days", err)
	}

	return &StreakInfo{
		HabitID:          h.ID,
		CurrentStreak:    h.CurrentStreak,
		LongestStreak:    h.LongestStreak,
		TotalCompletions: h.TotalCompletions,
		CompletionRate30: float64(days) / 30.0,
	}, nil
}

// HeatmapEntry is one day of heatmap data: total value recorded against the
// habit's daily target.
type HeatmapEntry struct {
	Date   dates.Date `json:"date"`
	Count  int        `json:"count"`
	Target int        `json:"target"`
}

// Heatmap returns per-day completion sums for a habit over the requested
// number of months back (clamped to the user's tier allowance). Days with
// no completions are omitted; consumers render them as empty cells.
func (e *Engine) Heatmap(ctx context.Context, userID, habitID string, months int) ([]HeatmapEntry, error) {
	uc, err := e.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	h, err := e.activeHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	if months == 0 {
		months = 3
	}
	months = e.limits(uc.user).ClampHeatmapMonths(months)
	start := uc.today.AddDays(-months * 30)

	sums, err := e.store.SumValuesByDate(ctx, h.ID, start, uc.today)
	if err != nil {
		return nil, habit.WrapPersistence("heatmap sums", err)
	}

	entries := make([]HeatmapEntry, 0, len(sums))
	for d, count := range sums {
		entries = append(entries, HeatmapEntry{Date: d, Count: count, Target: h.TargetPerDay})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries, nil
}
