package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/entitlement"
	"github.com/roach88/habitarc/internal/habit"
)

func TestCreateCompletion_Idempotent(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})
	ctx := context.Background()

	first, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID})
	require.NoError(t, err)
	require.NotNil(t, first.Completion)
	assert.Equal(t, 1, first.Habit.TotalCompletions)

	// Second create for the same day: same row back, no growth, no error.
	second, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID})
	require.NoError(t, err)
	assert.Equal(t, first.Completion.ID, second.Completion.ID)
	assert.Equal(t, first.Completion.Value, second.Completion.Value)
	assert.Equal(t, 1, second.Habit.TotalCompletions)
}

func TestCreateCompletion_SameDayValueBump(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Pushups", habit.FrequencyDaily, habit.Schedule{})
	ctx := context.Background()

	_, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID, Value: 2})
	require.NoError(t, err)

	res, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID, Value: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Completion.Value)
	assert.Equal(t, 1, res.Habit.TotalCompletions)
}

func TestCreateCompletion_ValueValidation(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})
	ctx := context.Background()

	_, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID, Value: -1})
	require.Error(t, err)
	assert.True(t, habit.IsValidation(err))

	_, err = f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID, Value: habit.MaxValue + 1})
	require.Error(t, err)
	assert.True(t, habit.IsValidation(err))
}

func TestCreateCompletion_BackdateWindow(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})
	ctx := context.Background()
	today := dates.New(2026, time.February, 9)

	// Yesterday and tomorrow pass the tolerance window.
	for _, d := range []dates.Date{today.AddDays(-1), today.AddDays(1)} {
		_, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID, Date: d})
		require.NoErrorf(t, err, "date %s", d)
	}

	// Three days back exceeds it.
	_, err := f.engine.CreateCompletion(ctx, CompletionParams{
		UserID: f.userID, HabitID: h.ID, Date: today.AddDays(-3),
	})
	require.Error(t, err)
	assert.True(t, habit.IsValidation(err))
}

func TestToggle_Convergence(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})
	ctx := context.Background()

	// Odd number of toggles ends present, even ends absent.
	for i := 0; i < 4; i++ {
		res, err := f.engine.ToggleCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID})
		require.NoError(t, err)
		if i%2 == 0 {
			assert.Equal(t, habit.ToggleCreated, res.Action, "toggle %d", i)
			assert.Equal(t, 1, res.Habit.TotalCompletions)
		} else {
			assert.Equal(t, habit.ToggleDeleted, res.Action, "toggle %d", i)
			assert.Equal(t, 0, res.Habit.TotalCompletions)
		}
	}
}

// The toggle-then-untoggle walk from a clean slate: Exercise is scheduled
// Mon/Wed/Fri; 2026-02-09 is a Monday.
func TestToggle_ThenUntoggle_WeeklyDays(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Exercise", habit.FrequencyWeeklyDays, habit.Schedule{Days: []int{1, 3, 5}})
	ctx := context.Background()
	monday := dates.New(2026, time.February, 9)

	res, err := f.engine.ToggleCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID, Date: monday})
	require.NoError(t, err)
	assert.Equal(t, habit.ToggleCreated, res.Action)
	assert.Equal(t, 1, res.Habit.CurrentStreak)

	res, err = f.engine.ToggleCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID, Date: monday})
	require.NoError(t, err)
	assert.Equal(t, habit.ToggleDeleted, res.Action)
	assert.Equal(t, 0, res.Habit.CurrentStreak)
}

func TestDeleteCompletion_Idempotent(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})
	ctx := context.Background()

	_, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID})
	require.NoError(t, err)

	deleted, res, err := f.engine.DeleteCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID})
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, res.Habit.TotalCompletions)

	// Double delete is success, not an error.
	deleted, _, err = f.engine.DeleteCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID})
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStreak_DailyWalkAcrossDays(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})
	ctx := context.Background()

	// Complete three consecutive days, advancing the clock each day.
	for i := 0; i < 3; i++ {
		res, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID})
		require.NoError(t, err)
		assert.Equal(t, i+1, res.Habit.CurrentStreak)
		f.clock.AdvanceDays(1)
	}

	info, err := f.engine.Streak(ctx, f.userID, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, info.CurrentStreak)
	assert.Equal(t, 3, info.LongestStreak)
	assert.Equal(t, 3, info.TotalCompletions)
	assert.InDelta(t, 3.0/30.0, info.CompletionRate30, 1e-9)
}

func TestStreak_LongestMonotonicUnderDeletes(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})
	ctx := context.Background()
	start := dates.New(2026, time.February, 9)

	// Build a 3-day run, advancing the clock so every explicit date stays
	// inside the tolerance window.
	days := []dates.Date{start, start.AddDays(1), start.AddDays(2)}
	for i, d := range days {
		_, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID, Date: d})
		require.NoError(t, err)
		if i < len(days)-1 {
			f.clock.AdvanceDays(1)
		}
	}

	before, err := f.engine.Streak(ctx, f.userID, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, before.LongestStreak)

	// Deleting the middle day shrinks history; longest stays watermarked.
	deleted, res, err := f.engine.DeleteCompletion(ctx, CompletionParams{
		UserID: f.userID, HabitID: h.ID, Date: days[1],
	})
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 3, res.Habit.LongestStreak)
	assert.Equal(t, 1, res.Habit.CurrentStreak)
	assert.Equal(t, 2, res.Habit.TotalCompletions)
	assert.GreaterOrEqual(t, res.Habit.LongestStreak, res.Habit.CurrentStreak)
}

func TestCompletion_TimezoneBucketsDiffer(t *testing.T) {
	// At 2026-02-09 12:00 UTC it is already Feb 9 everywhere; move the
	// clock to 03:00 UTC where Los Angeles is still on Feb 8.
	f := newFixture(t, entitlement.TierPro, "America/Los_Angeles")
	f.clock.Set(time.Date(2026, time.February, 9, 3, 0, 0, 0, time.UTC))
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})
	ctx := context.Background()

	res, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-08", res.Completion.LocalDate.String())
}

func TestListCompletions_Ordering(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})
	ctx := context.Background()

	today := dates.New(2026, time.February, 9)
	for _, d := range []dates.Date{today.AddDays(-1), today, today.AddDays(1)} {
		_, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID, Date: d})
		require.NoError(t, err)
	}

	rows, err := f.engine.ListCompletions(ctx, f.userID, h.ID, dates.Date{}, dates.Date{})
	require.NoError(t, err)
	require.Len(t, rows, 2) // default window ends today; tomorrow's row is outside
	assert.True(t, rows[1].LocalDate.Before(rows[0].LocalDate))
}

func TestWeeklyTarget_DuenessAndFulfillment(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyWeeklyTarget, habit.Schedule{TimesPerWeek: 4})
	ctx := context.Background()

	// Four completions Mon/Tue/Thu/Sat of the week starting 2026-02-09.
	monday := dates.New(2026, time.February, 9)
	for _, offset := range []int{0, 1, 3, 5} {
		f.clock.Set(monday.AddDays(offset).Time().Add(12 * time.Hour))
		_, err := f.engine.CreateCompletion(ctx, CompletionParams{UserID: f.userID, HabitID: h.ID})
		require.NoError(t, err)
	}

	// Sunday of that week: quota met, no longer due.
	f.clock.Set(monday.AddDays(6).Time().Add(12 * time.Hour))
	statuses, err := f.engine.HabitsWithTodayStatus(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].IsDueToday)

	info, err := f.engine.Streak(ctx, f.userID, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, info.CurrentStreak) // this week counts provisionally
}

func TestDailyLogs_UpsertAndValidation(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	ctx := context.Background()

	logRow, err := f.engine.UpsertDailyLog(ctx, DailyLogParams{UserID: f.userID, Mood: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, logRow.Mood)
	assert.Equal(t, "2026-02-09", logRow.LogDate.String())

	// Merge: evening stress joins the morning mood.
	logRow, err = f.engine.UpsertDailyLog(ctx, DailyLogParams{UserID: f.userID, Stress: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, logRow.Mood)
	assert.Equal(t, 2, logRow.Stress)

	_, err = f.engine.UpsertDailyLog(ctx, DailyLogParams{UserID: f.userID, Mood: 9})
	require.Error(t, err)
	assert.True(t, habit.IsValidation(err))

	_, err = f.engine.UpsertDailyLog(ctx, DailyLogParams{UserID: f.userID})
	require.Error(t, err)
	assert.True(t, habit.IsValidation(err))

	logs, err := f.engine.ListDailyLogs(ctx, f.userID, dates.Date{}, dates.Date{})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
