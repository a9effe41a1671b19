package habit

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/habitarc/internal/dates"
)

// Frequency is the kind of schedule a habit follows.
type Frequency string

const (
	// FrequencyDaily habits are due every calendar day.
	FrequencyDaily Frequency = "daily"

	// FrequencyWeeklyDays habits are due on a fixed set of weekdays.
	FrequencyWeeklyDays Frequency = "weekly_days"

	// FrequencyWeeklyTarget habits are due a number of times per ISO week,
	// on no particular day.
	FrequencyWeeklyTarget Frequency = "weekly_target"
)

// Valid reports whether f is a recognized frequency kind.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeeklyDays, FrequencyWeeklyTarget:
		return true
	}
	return false
}

// MaxValue caps the per-day value on a completion. Values above this are
// rejected as validation errors rather than stored.
const MaxValue = 100

// Habit is a tracked routine owned by exactly one user.
//
// CurrentStreak, LongestStreak and TotalCompletions are denormalized caches
// of a pure function over the completion ledger. They are rewritten (never
// incremented) on every ledger mutation, and LongestStreak is a monotonic
// watermark: it never decreases, even after deletions shrink the history.
type Habit struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Color        string    `json:"color"`
	Icon         string    `json:"icon"`
	Frequency    Frequency `json:"frequency"`
	TargetPerDay int       `json:"target_per_day"`
	SortOrder    int       `json:"sort_order"`

	CurrentStreak    int `json:"current_streak"`
	LongestStreak    int `json:"longest_streak"`
	TotalCompletions int `json:"total_completions"`

	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Completion is one ledger event: habit H was performed on local day D.
// At most one Completion exists per (HabitID, LocalDate); that pair is the
// idempotency key for the entire write path. CreatedAt is for auditing only
// and is never used for bucketing.
type Completion struct {
	ID        string     `json:"id"`
	HabitID   string     `json:"habit_id"`
	UserID    string     `json:"user_id"`
	LocalDate dates.Date `json:"local_date"`
	Value     int        `json:"value"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToggleAction reports which way a toggle flipped.
type ToggleAction string

const (
	ToggleCreated ToggleAction = "created"
	ToggleDeleted ToggleAction = "deleted"
)

// DailyLog is a per-day wellbeing record (mood, energy, stress, each 1-5),
// upserted on (user, log date). It feeds insight generation and is not part
// of any streak computation.
type DailyLog struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	LogDate   dates.Date `json:"log_date"`
	Mood      int        `json:"mood,omitempty"`
	Energy    int        `json:"energy,omitempty"`
	Stress    int        `json:"stress,omitempty"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Defaults applied when a habit is created without explicit values.
const (
	DefaultColor = "#6366f1"
	DefaultIcon  = "target"
)

// CanonicalName normalizes a habit name for duplicate detection: NFC
// normalized, surrounding whitespace trimmed, case folded. Two names with
// the same canonical form refer to the same habit for uniqueness purposes;
// the display name keeps the user's original spelling.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}
