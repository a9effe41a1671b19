package habit

import "sort"

// Schedule is the normalized configuration for a non-daily habit.
// Exactly one shape is populated per habit:
//
//   - weekly_days: Days holds 1-7 distinct ISO weekday numbers (Monday=1).
//   - weekly_target: TimesPerWeek holds an integer 1-7.
//
// A daily habit carries no schedule at all (every day is implicitly due).
// The two shapes are mutually exclusive; ValidateFor enforces the pairing
// with the habit's frequency before anything is persisted.
type Schedule struct {
	Days         []int `json:"days,omitempty"`
	TimesPerWeek int   `json:"times_per_week,omitempty"`
}

// IsZero reports whether the schedule carries no configuration.
func (s Schedule) IsZero() bool {
	return len(s.Days) == 0 && s.TimesPerWeek == 0
}

// HasDay reports whether the ISO weekday (Monday=1 .. Sunday=7) is in the
// configured day set.
func (s Schedule) HasDay(isoWeekday int) bool {
	for _, d := range s.Days {
		if d == isoWeekday {
			return true
		}
	}
	return false
}

// Normalize returns a copy with the day set sorted and deduplicated.
func (s Schedule) Normalize() Schedule {
	if len(s.Days) == 0 {
		return s
	}
	days := make([]int, 0, len(s.Days))
	seen := make(map[int]bool, len(s.Days))
	for _, d := range s.Days {
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Ints(days)
	return Schedule{Days: days, TimesPerWeek: s.TimesPerWeek}
}

// ValidateFor checks the schedule shape against a frequency kind.
func (s Schedule) ValidateFor(freq Frequency) error {
	switch freq {
	case FrequencyDaily:
		if !s.IsZero() {
			return NewValidation("daily habits take no schedule configuration")
		}
	case FrequencyWeeklyDays:
		if s.TimesPerWeek != 0 {
			return NewValidation("weekly_days habits take a day set, not a weekly target")
		}
		if len(s.Days) == 0 {
			return NewValidation("weekly_days habits require at least one scheduled day")
		}
		seen := make(map[int]bool, len(s.Days))
		for _, d := range s.Days {
			if d < 1 || d > 7 {
				return NewValidation("scheduled day %d out of range 1-7 (ISO, Monday=1)", d)
			}
			if seen[d] {
				return NewValidation("scheduled day %d repeated", d)
			}
			seen[d] = true
		}
	case FrequencyWeeklyTarget:
		if len(s.Days) != 0 {
			return NewValidation("weekly_target habits take a weekly target, not a day set")
		}
		if s.TimesPerWeek < 1 || s.TimesPerWeek > 7 {
			return NewValidation("times_per_week %d out of range 1-7", s.TimesPerWeek)
		}
	default:
		return NewValidation("unknown frequency %q", freq)
	}
	return nil
}
