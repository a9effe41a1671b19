package engine

import (
	"context"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/habit"
	"github.com/roach88/habitarc/internal/schedule"
)

// DailyStat is one zero-filled day of the stats range.
type DailyStat struct {
	Date            dates.Date `json:"date"`
	TotalHabits     int        `json:"total_habits"`
	CompletedHabits int        `json:"completed_habits"`
	CompletionRate  float64    `json:"completion_rate"`
}

// DailyStats returns one row per day in the range, zero-filled: days with
// no activity still appear with rate 0. The denominator for each day is the
// number of habits that already existed on that day (by creation-day
// bucket), so a habit created mid-range is not charged with missed days
// before it existed. Zero start/end default to the tier's analytics window
// ending today.
func (e *Engine) DailyStats(ctx context.Context, userID string, start, end dates.Date) ([]DailyStat, error) {
	uc, err := e.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	window := e.limits(uc.user).AnalyticsDays
	if end.IsZero() {
		end = uc.today
	}
	if start.IsZero() {
		start = end.AddDays(-(window - 1))
	}
	if end.Before(start) {
		return nil, habit.NewValidation("range end %s precedes start %s", end, start)
	}
	if start.DaysUntil(end)+1 > window {
		start = end.AddDays(-(window - 1))
	}

	active, err := e.store.ListActiveHabits(ctx, userID)
	if err != nil {
		return nil, habit.WrapPersistence("list habits", err)
	}
	completedByDay, err := e.store.CompletedHabitsByDate(ctx, userID, start, end)
	if err != nil {
		return nil, habit.WrapPersistence("daily counts", err)
	}

	var out []DailyStat
	for d := start; !d.After(end); d = d.AddDays(1) {
		total := 0
		for _, a := range active {
			if !a.CreatedLocal.After(d) {
				total++
			}
		}
		completed := completedByDay[d]
		rate := 0.0
		if total > 0 {
			rate = float64(completed) / float64(total)
		}
		out = append(out, DailyStat{
			Date:            d,
			TotalHabits:     total,
			CompletedHabits: completed,
			CompletionRate:  rate,
		})
	}
	return out, nil
}

// WeeklyHabitReview is one habit's slice of a weekly review.
type WeeklyHabitReview struct {
	HabitID   string  `json:"habit_id"`
	Name      string  `json:"name"`
	Completed int     `json:"completed"`
	Possible  int     `json:"possible"`
	Rate      float64 `json:"rate"`
}

// WeeklyReview summarizes one Monday-to-Sunday week across all active
// habits.
type WeeklyReview struct {
	WeekStart        dates.Date          `json:"week_start"`
	WeekEnd          dates.Date          `json:"week_end"`
	TotalCompletions int                 `json:"total_completions"`
	TotalPossible    int                 `json:"total_possible"`
	CompletionRate   float64             `json:"completion_rate"`
	BestDay          string              `json:"best_day,omitempty"`
	WorstDay         string              `json:"worst_day,omitempty"`
	Habits           []WeeklyHabitReview `json:"habits"`
}

var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// WeeklyReviewFor builds the review for the ISO week containing weekStart.
// When weekStart is zero, the previous full week is reviewed. Per habit,
// "possible" is how many units the schedule asked for that week; best and
// worst day are the days with the most and fewest completions across all
// habits, ties broken by earliest day in date order.
func (e *Engine) WeeklyReviewFor(ctx context.Context, userID string, weekStart dates.Date) (*WeeklyReview, error) {
	uc, err := e.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if weekStart.IsZero() {
		weekStart = uc.today.WeekStart().AddDays(-7)
	} else {
		weekStart = weekStart.WeekStart()
	}
	weekEnd := weekStart.AddDays(6)

	active, err := e.store.ListActiveHabits(ctx, userID)
	if err != nil {
		return nil, habit.WrapPersistence("list habits", err)
	}
	completions, err := e.store.ListCompletions(ctx, userID, "", weekStart, weekEnd)
	if err != nil {
		return nil, habit.WrapPersistence("list completions", err)
	}

	activeIDs := make(map[string]bool, len(active))
	for _, a := range active {
		activeIDs[a.Habit.ID] = true
	}

	// Archived habits keep their ledger rows; the review only scores what
	// is still active, on both sides of the rate.
	perHabit := make(map[string]int)
	var dayCounts [7]int
	for _, c := range completions {
		if !activeIDs[c.HabitID] {
			continue
		}
		perHabit[c.HabitID]++
		dayCounts[c.LocalDate.ISOWeekday()-1]++
	}

	review := &WeeklyReview{WeekStart: weekStart, WeekEnd: weekEnd}
	for _, a := range active {
		h := a.Habit
		sched, err := e.store.GetSchedule(ctx, h.ID)
		if err != nil {
			return nil, habit.WrapPersistence("load schedule", err)
		}
		completed := perHabit[h.ID]
		possible := schedule.DuePerWeek(h, sched)
		rate := 0.0
		if possible > 0 {
			rate = float64(completed) / float64(possible)
		}
		review.TotalCompletions += completed
		review.TotalPossible += possible
		review.Habits = append(review.Habits, WeeklyHabitReview{
			HabitID:   h.ID,
			Name:      h.Name,
			Completed: completed,
			Possible:  possible,
			Rate:      rate,
		})
	}
	if review.TotalPossible > 0 {
		review.CompletionRate = float64(review.TotalCompletions) / float64(review.TotalPossible)
	}

	if len(active) > 0 {
		best, worst := 0, 0
		for i := 1; i < 7; i++ {
			if dayCounts[i] > dayCounts[best] {
				best = i
			}
			if dayCounts[i] < dayCounts[worst] {
				worst = i
			}
		}
		review.BestDay = weekdayNames[best]
		review.WorstDay = weekdayNames[worst]
	}
	return review, nil
}
