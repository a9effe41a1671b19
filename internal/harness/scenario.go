package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/habitarc/internal/habit"
)

// Scenario is one YAML-defined conformance case: a set of habits, a
// sequence of dated ledger operations, and the counters each operation
// should leave behind.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description"`

	// Timezone is the profile's IANA zone. Defaults to UTC.
	Timezone string `yaml:"timezone,omitempty"`

	// Tier is the profile's subscription tier. Defaults to pro so
	// entitlement gates never interfere unless a scenario wants them to.
	Tier string `yaml:"tier,omitempty"`

	// Habits are created before any step runs.
	Habits []HabitDef `yaml:"habits"`

	// Steps are executed in order. Each step pins the clock to its day
	// before running, so scenarios replay multi-day histories.
	Steps []Step `yaml:"steps"`
}

// HabitDef declares one habit for the scenario.
type HabitDef struct {
	Name         string `yaml:"name"`
	Frequency    string `yaml:"frequency,omitempty"`
	Days         []int  `yaml:"days,omitempty"`
	TimesPerWeek int    `yaml:"times_per_week,omitempty"`
	TargetPerDay int    `yaml:"target_per_day,omitempty"`
}

// Step is one ledger operation on one day.
type Step struct {
	// Day is the local date the clock is pinned to, YYYY-MM-DD.
	Day string `yaml:"day"`

	// Op is one of "done", "toggle", "remove".
	Op string `yaml:"op"`

	// Habit names the target habit.
	Habit string `yaml:"habit"`

	// Value is the optional completion value for "done".
	Value int `yaml:"value,omitempty"`

	// Expect validates the step's outcome. Nil skips validation; the
	// trace still records what actually happened.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect pins the counters a step must produce. Zero fields are still
// compared: a step that should zero the streak says so explicitly.
type Expect struct {
	// Action is the expected toggle direction, "created" or "deleted".
	// Only meaningful for toggle steps.
	Action string `yaml:"action,omitempty"`

	Current int `yaml:"current"`
	Longest int `yaml:"longest"`
	Total   int `yaml:"total"`
}

// Step operation constants.
const (
	OpDone   = "done"
	OpToggle = "toggle"
	OpRemove = "remove"
)

// LoadScenario parses one scenario file and applies defaults.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if s.Timezone == "" {
		s.Timezone = "UTC"
	}
	if s.Tier == "" {
		s.Tier = "pro"
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Habits) == 0 {
		return fmt.Errorf("at least one habit is required")
	}
	names := make(map[string]bool, len(s.Habits))
	for i, h := range s.Habits {
		if h.Name == "" {
			return fmt.Errorf("habit %d: name is required", i)
		}
		names[h.Name] = true
	}
	for i, st := range s.Steps {
		switch st.Op {
		case OpDone, OpToggle, OpRemove:
		default:
			return fmt.Errorf("step %d: unknown op %q", i, st.Op)
		}
		if st.Day == "" {
			return fmt.Errorf("step %d: day is required", i)
		}
		if !names[st.Habit] {
			return fmt.Errorf("step %d: unknown habit %q", i, st.Habit)
		}
		if st.Expect != nil && st.Expect.Action != "" {
			a := habit.ToggleAction(st.Expect.Action)
			if a != habit.ToggleCreated && a != habit.ToggleDeleted {
				return fmt.Errorf("step %d: unknown action %q", i, st.Expect.Action)
			}
		}
	}
	return nil
}
