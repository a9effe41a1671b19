package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/habitarc/internal/habit"
)

func TestForTier(t *testing.T) {
	free := ForTier(TierFree)
	assert.Equal(t, 3, free.MaxHabits)
	assert.False(t, free.AllFrequencies)

	plus := ForTier(TierPlus)
	assert.Equal(t, 15, plus.MaxHabits)
	assert.True(t, plus.AllFrequencies)

	pro := ForTier(TierPro)
	assert.Equal(t, Unlimited, pro.MaxHabits)

	// Unknown tiers degrade to free.
	assert.Equal(t, free, ForTier(Tier("enterprise")))
}

func TestCanCreateHabit(t *testing.T) {
	free := ForTier(TierFree)
	assert.True(t, free.CanCreateHabit(2))
	assert.False(t, free.CanCreateHabit(3))

	pro := ForTier(TierPro)
	assert.True(t, pro.CanCreateHabit(10000))
}

func TestCanUseFrequency(t *testing.T) {
	free := ForTier(TierFree)
	assert.True(t, free.CanUseFrequency(habit.FrequencyDaily))
	assert.False(t, free.CanUseFrequency(habit.FrequencyWeeklyDays))
	assert.False(t, free.CanUseFrequency(habit.FrequencyWeeklyTarget))

	plus := ForTier(TierPlus)
	assert.True(t, plus.CanUseFrequency(habit.FrequencyWeeklyTarget))
}

func TestClampHeatmapMonths(t *testing.T) {
	pro := ForTier(TierPro)
	assert.Equal(t, 3, pro.ClampHeatmapMonths(3))
	assert.Equal(t, 12, pro.ClampHeatmapMonths(99))
	assert.Equal(t, 1, pro.ClampHeatmapMonths(0))

	free := ForTier(TierFree)
	assert.Equal(t, 1, free.ClampHeatmapMonths(6))
}
