package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/habitarc/internal/entitlement"
	"github.com/roach88/habitarc/internal/habit"
	"github.com/roach88/habitarc/internal/store"
	"github.com/roach88/habitarc/internal/testutil"
)

// fixture is one engine over a throwaway database with a pinned clock.
// The clock starts at noon UTC on Monday 2026-02-09.
type fixture struct {
	engine *Engine
	clock  *testutil.FixedClock
	userID string
}

func newFixture(t *testing.T, tier entitlement.Tier, timezone string) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := testutil.NewFixedClock(time.Date(2026, time.February, 9, 12, 0, 0, 0, time.UTC))
	e := New(s, WithClock(clock.Now))

	userID := uuid.NewString()
	require.NoError(t, e.RegisterUser(context.Background(), userID, timezone, tier))

	return &fixture{engine: e, clock: clock, userID: userID}
}

func (f *fixture) addHabit(t *testing.T, name string, freq habit.Frequency, sched habit.Schedule) *habit.Habit {
	t.Helper()
	h, err := f.engine.CreateHabit(context.Background(), CreateHabitParams{
		UserID:    f.userID,
		Name:      name,
		Frequency: freq,
		Schedule:  sched,
	})
	require.NoError(t, err)
	return h
}

func TestRegisterUser_BadTimezone(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	err := f.engine.RegisterUser(context.Background(), f.userID, "Mars/Olympus", entitlement.TierPro)
	require.Error(t, err)
	assert.True(t, habit.IsValidation(err))
}

func TestCreateHabit_Defaults(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})

	assert.Equal(t, habit.DefaultColor, h.Color)
	assert.Equal(t, habit.DefaultIcon, h.Icon)
	assert.Equal(t, 1, h.TargetPerDay)
	assert.Equal(t, 0, h.CurrentStreak)
	assert.Equal(t, 0, h.LongestStreak)
}

func TestCreateHabit_EmptyName(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	_, err := f.engine.CreateHabit(context.Background(), CreateHabitParams{UserID: f.userID})
	require.Error(t, err)
	assert.True(t, habit.IsValidation(err))
}

func TestCreateHabit_DuplicateName(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})

	// Canonical comparison: case and surrounding whitespace do not
	// distinguish names.
	_, err := f.engine.CreateHabit(context.Background(), CreateHabitParams{
		UserID: f.userID,
		Name:   "  READ ",
	})
	require.Error(t, err)
	assert.True(t, habit.IsConflict(err))
}

func TestCreateHabit_BadSchedule(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	_, err := f.engine.CreateHabit(context.Background(), CreateHabitParams{
		UserID:    f.userID,
		Name:      "Stretch",
		Frequency: habit.FrequencyWeeklyDays,
		Schedule:  habit.Schedule{Days: []int{0, 9}},
	})
	require.Error(t, err)
	assert.True(t, habit.IsValidation(err))
}

func TestCreateHabit_FreeTierLimits(t *testing.T) {
	f := newFixture(t, entitlement.TierFree, "UTC")

	for _, name := range []string{"One", "Two", "Three"} {
		f.addHabit(t, name, habit.FrequencyDaily, habit.Schedule{})
	}

	// Habit 4 exceeds the free cap.
	_, err := f.engine.CreateHabit(context.Background(), CreateHabitParams{
		UserID: f.userID, Name: "Four",
	})
	require.Error(t, err)
	assert.True(t, habit.IsForbidden(err))
}

func TestCreateHabit_FreeTierFrequencyGate(t *testing.T) {
	f := newFixture(t, entitlement.TierFree, "UTC")
	_, err := f.engine.CreateHabit(context.Background(), CreateHabitParams{
		UserID:    f.userID,
		Name:      "Gym",
		Frequency: habit.FrequencyWeeklyDays,
		Schedule:  habit.Schedule{Days: []int{1, 3, 5}},
	})
	require.Error(t, err)
	assert.True(t, habit.IsForbidden(err))
}

func TestArchiveHabit_ThenMutationsRejected(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})

	require.NoError(t, f.engine.ArchiveHabit(context.Background(), f.userID, h.ID))

	// Archiving again: the habit is gone from the caller's view.
	err := f.engine.ArchiveHabit(context.Background(), f.userID, h.ID)
	require.Error(t, err)
	assert.True(t, habit.IsNotFound(err))

	_, err = f.engine.CreateCompletion(context.Background(), CompletionParams{
		UserID: f.userID, HabitID: h.ID,
	})
	require.Error(t, err)
	assert.True(t, habit.IsNotFound(err))
}

func TestChangeSchedule(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Gym", habit.FrequencyWeeklyDays, habit.Schedule{Days: []int{1, 3, 5}})

	err := f.engine.ChangeSchedule(context.Background(), f.userID, h.ID,
		habit.FrequencyWeeklyTarget, habit.Schedule{TimesPerWeek: 3})
	require.NoError(t, err)

	statuses, err := f.engine.HabitsWithTodayStatus(context.Background(), f.userID)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, habit.FrequencyWeeklyTarget, statuses[0].Habit.Frequency)
	assert.Equal(t, 3, statuses[0].Schedule.TimesPerWeek)
}

func TestChangeSchedule_ShapeMismatch(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Gym", habit.FrequencyDaily, habit.Schedule{})

	err := f.engine.ChangeSchedule(context.Background(), f.userID, h.ID,
		habit.FrequencyWeeklyTarget, habit.Schedule{Days: []int{1}, TimesPerWeek: 2})
	require.Error(t, err)
	assert.True(t, habit.IsValidation(err))
}

func TestCrossUserAccessRejected(t *testing.T) {
	f := newFixture(t, entitlement.TierPro, "UTC")
	h := f.addHabit(t, "Read", habit.FrequencyDaily, habit.Schedule{})

	intruder := uuid.NewString()
	require.NoError(t, f.engine.RegisterUser(context.Background(), intruder, "UTC", entitlement.TierPro))

	_, err := f.engine.ToggleCompletion(context.Background(), CompletionParams{
		UserID: intruder, HabitID: h.ID,
	})
	require.Error(t, err)
	assert.True(t, habit.IsNotFound(err))
}
