// Package streak derives streak counters from a habit's completion history.
//
// The computation is pure: callers fetch the distinct completion dates and
// pass them in together with the schedule and "today" in the user's zone.
// Persisting the result (including the longest-streak watermark) is the
// store's job.
package streak

import (
	"sort"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/habit"
)

// Result holds freshly computed streak values for one habit.
// Longest here is the longest run visible in the current history; the store
// persists MAX(stored, Longest) so the recorded value never decreases.
type Result struct {
	Current int
	Longest int
}

// Compute derives the streak counters for a habit from the distinct local
// dates carrying at least one completion. days may arrive in any order and
// may be empty.
func Compute(h *habit.Habit, sched habit.Schedule, days []dates.Date, today dates.Date) Result {
	sorted := sortedUnique(days)
	switch h.Frequency {
	case habit.FrequencyWeeklyDays:
		return Result{
			Current: currentScheduled(sorted, sched, today),
			Longest: longestScheduled(sorted, sched),
		}
	case habit.FrequencyWeeklyTarget:
		return computeWeekly(sorted, sched, today)
	default:
		return Result{
			Current: currentDaily(sorted, today),
			Longest: longestDaily(sorted),
		}
	}
}

// currentDaily walks backward from today counting consecutive completed
// days. An empty slot on today itself does not break the streak - not yet
// having completed today is different from having missed it - so the walk
// may start from yesterday instead.
func currentDaily(sorted []dates.Date, today dates.Date) int {
	have := dateSet(sorted)
	check := today
	if !have[check] {
		check = check.AddDays(-1)
	}
	count := 0
	for have[check] {
		count++
		check = check.AddDays(-1)
	}
	return count
}

// longestDaily finds the longest run of consecutive calendar days.
// Classic gap-and-islands over the ascending-sorted dates.
func longestDaily(sorted []dates.Date) int {
	longest, run := 0, 0
	for i, d := range sorted {
		if i > 0 && sorted[i-1].AddDays(1) == d {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// currentScheduled is the weekly_days walk: step backward day by day from
// today, but only scheduled days can extend or break the streak. A gap on
// an unscheduled day is invisible.
func currentScheduled(sorted []dates.Date, sched habit.Schedule, today dates.Date) int {
	have := dateSet(sorted)
	check := today

	// A scheduled today that is still unfilled starts the walk at the
	// previous day, same grace as the daily walk.
	if sched.HasDay(check.ISOWeekday()) && !have[check] {
		check = check.AddDays(-1)
	}

	count := 0
	// At most one year back: the window is plenty to establish any current
	// run without scanning unbounded history.
	for i := 0; i < 366; i++ {
		if sched.HasDay(check.ISOWeekday()) {
			if !have[check] {
				break
			}
			count++
		}
		check = check.AddDays(-1)
	}
	return count
}

// longestScheduled finds the longest run of completed scheduled days with no
// missed scheduled day in between. Completions on unscheduled days count
// toward nothing and break nothing.
func longestScheduled(sorted []dates.Date, sched habit.Schedule) int {
	have := dateSet(sorted)
	longest, run := 0, 0
	var prevScheduledHit dates.Date

	for _, d := range sorted {
		if !sched.HasDay(d.ISOWeekday()) {
			continue
		}
		if run > 0 && missedScheduledBetween(prevScheduledHit, d, sched, have) {
			run = 0
		}
		run++
		prevScheduledHit = d
		if run > longest {
			longest = run
		}
	}
	return longest
}

// missedScheduledBetween reports whether any scheduled day strictly between
// a and b lacks a completion.
func missedScheduledBetween(a, b dates.Date, sched habit.Schedule, have map[dates.Date]bool) bool {
	for d := a.AddDays(1); d.Before(b); d = d.AddDays(1) {
		if sched.HasDay(d.ISOWeekday()) && !have[d] {
			return true
		}
	}
	return false
}

// computeWeekly counts in ISO-week units. A week qualifies when its
// completion count meets the weekly quota. The current week counts
// provisionally if already met; otherwise the walk starts from last week.
func computeWeekly(sorted []dates.Date, sched habit.Schedule, today dates.Date) Result {
	counts := make(map[dates.Date]int) // week start -> completions in week
	for _, d := range sorted {
		counts[d.WeekStart()]++
	}

	quota := sched.TimesPerWeek
	if quota < 1 {
		quota = 1
	}

	thisWeek := today.WeekStart()
	check := thisWeek
	if counts[check] < quota {
		check = check.AddDays(-7)
	}
	current := 0
	for counts[check] >= quota {
		current++
		check = check.AddDays(-7)
	}

	// Longest run of qualifying weeks across all history.
	weeks := make([]dates.Date, 0, len(counts))
	for w, n := range counts {
		if n >= quota {
			weeks = append(weeks, w)
		}
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	longest, run := 0, 0
	for i, w := range weeks {
		if i > 0 && weeks[i-1].AddDays(7) == w {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return Result{Current: current, Longest: longest}
}

func sortedUnique(days []dates.Date) []dates.Date {
	out := make([]dates.Date, 0, len(days))
	seen := make(map[dates.Date]bool, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func dateSet(days []dates.Date) map[dates.Date]bool {
	set := make(map[dates.Date]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}
