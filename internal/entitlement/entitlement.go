// Package entitlement answers yes/no gate questions ahead of habit
// creation. Billing itself lives elsewhere; the engine only consumes the
// per-tier limits resolved here.
package entitlement

import "github.com/roach88/habitarc/internal/habit"

// Tier is a subscription level.
type Tier string

const (
	TierFree Tier = "free"
	TierPlus Tier = "plus"
	TierPro  Tier = "pro"
)

// Unlimited marks a limit with no cap.
const Unlimited = -1

// Limits captures what a tier may do.
type Limits struct {
	// MaxHabits caps active habits, Unlimited for no cap.
	MaxHabits int

	// AllFrequencies permits non-daily schedule kinds.
	AllFrequencies bool

	// AnalyticsDays bounds the daily-stats window.
	AnalyticsDays int

	// HeatmapMonths bounds the heatmap lookback.
	HeatmapMonths int
}

// ForTier resolves a tier's limits. Unknown tiers degrade to free.
func ForTier(t Tier) Limits {
	switch t {
	case TierPlus:
		return Limits{MaxHabits: 15, AllFrequencies: true, AnalyticsDays: 30, HeatmapMonths: 6}
	case TierPro:
		return Limits{MaxHabits: Unlimited, AllFrequencies: true, AnalyticsDays: 365, HeatmapMonths: 12}
	default:
		return Limits{MaxHabits: 3, AllFrequencies: false, AnalyticsDays: 7, HeatmapMonths: 1}
	}
}

// CanCreateHabit gates habit N+1 given the user's current count.
func (l Limits) CanCreateHabit(current int) bool {
	return l.MaxHabits == Unlimited || current < l.MaxHabits
}

// CanUseFrequency gates schedule kinds.
func (l Limits) CanUseFrequency(f habit.Frequency) bool {
	return l.AllFrequencies || f == habit.FrequencyDaily
}

// ClampHeatmapMonths bounds a requested heatmap lookback to the tier's
// allowance (and to a 12-month absolute ceiling).
func (l Limits) ClampHeatmapMonths(months int) int {
	if months < 1 {
		months = 1
	}
	if months > l.HeatmapMonths {
		months = l.HeatmapMonths
	}
	if months > 12 {
		months = 12
	}
	return months
}
