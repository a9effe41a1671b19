// Package schedule decides when a habit is due and what fulfills a week.
//
// Everything here is a pure function over its inputs: no store access, no
// clock. Callers resolve "today" and week completion counts first and pass
// them in, which is what keeps these reusable from both the write path
// (annotating "due today") and the streak walk.
package schedule

import (
	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/habit"
)

// IsDue reports whether the habit is due on localDay.
//
// completionsInWeek is the number of completions already recorded in the ISO
// week containing localDay; only weekly_target consults it. A weekly_target
// habit stops being due mid-week once its quota is met - that signals
// "done for this week", not "ignore it".
func IsDue(h *habit.Habit, sched habit.Schedule, localDay dates.Date, completionsInWeek int) bool {
	switch h.Frequency {
	case habit.FrequencyWeeklyDays:
		return sched.HasDay(localDay.ISOWeekday())
	case habit.FrequencyWeeklyTarget:
		return completionsInWeek < sched.TimesPerWeek
	default:
		// daily, and anything malformed degrades to daily rather than
		// silently never-due.
		return true
	}
}

// WeekFulfilled reports whether a week's completion count satisfies a
// weekly_target habit's quota. For daily and weekly_days habits fulfillment
// is evaluated per day, not per week, and this returns false.
func WeekFulfilled(h *habit.Habit, sched habit.Schedule, completionsInWeek int) bool {
	if h.Frequency != habit.FrequencyWeeklyTarget {
		return false
	}
	return completionsInWeek >= sched.TimesPerWeek
}

// DuePerWeek returns how many days of one week the habit is due: 7 for
// daily, the day-set size for weekly_days, the weekly quota for
// weekly_target. This is the "possible" denominator in weekly reviews.
func DuePerWeek(h *habit.Habit, sched habit.Schedule) int {
	switch h.Frequency {
	case habit.FrequencyWeeklyDays:
		return len(sched.Days)
	case habit.FrequencyWeeklyTarget:
		return sched.TimesPerWeek
	default:
		return 7
	}
}
