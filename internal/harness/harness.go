// Package harness replays YAML scenarios against the real engine.
//
// Each scenario runs in a fresh in-memory database with a pinned clock.
// Steps execute through the same code paths the CLI uses; the trace records
// what the engine actually did, and golden files pin that trace down so any
// change to bucketing or streak semantics shows up as a diff.
package harness

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/roach88/habitarc/internal/dates"
	"github.com/roach88/habitarc/internal/engine"
	"github.com/roach88/habitarc/internal/entitlement"
	"github.com/roach88/habitarc/internal/habit"
	"github.com/roach88/habitarc/internal/store"
	"github.com/roach88/habitarc/internal/testutil"
)

const scenarioUser = "scenario-user"

// TraceEvent is one executed step with the counters it produced.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Day     string `json:"day"`
	Op      string `json:"op"`
	Habit   string `json:"habit"`
	Action  string `json:"action,omitempty"`
	Current int    `json:"current"`
	Longest int    `json:"longest"`
	Total   int    `json:"total"`
}

// Result is a completed scenario run.
type Result struct {
	Trace  []TraceEvent
	Errors []string
}

// Passed reports whether every expect clause held.
func (r *Result) Passed() bool { return len(r.Errors) == 0 }

// Run executes a scenario against a fresh in-memory store and returns the
// trace plus any expectation failures.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	defer st.Close()

	loc, err := dates.LoadZone(scenario.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scenario timezone: %w", err)
	}

	// Start the clock on the first step's day so habit creation-day buckets
	// precede every step the scenario replays.
	start := time.Now()
	if len(scenario.Steps) > 0 {
		first, err := dates.Parse(scenario.Steps[0].Day)
		if err != nil {
			return nil, fmt.Errorf("first step day %q: %w", scenario.Steps[0].Day, err)
		}
		start = time.Date(first.Year, first.Month, first.Day, 12, 0, 0, 0, loc)
	}
	clock := testutil.NewFixedClock(start)
	logger := log.New(io.Discard)
	eng := engine.New(st, engine.WithClock(clock.Now), engine.WithLogger(logger))

	ctx := context.Background()
	if err := eng.RegisterUser(ctx, scenarioUser, scenario.Timezone, entitlement.Tier(scenario.Tier)); err != nil {
		return nil, fmt.Errorf("register scenario user: %w", err)
	}

	habits := make(map[string]string, len(scenario.Habits))
	for _, def := range scenario.Habits {
		h, err := eng.CreateHabit(ctx, engine.CreateHabitParams{
			UserID:       scenarioUser,
			Name:         def.Name,
			Frequency:    habit.Frequency(def.Frequency),
			Schedule:     habit.Schedule{Days: def.Days, TimesPerWeek: def.TimesPerWeek},
			TargetPerDay: def.TargetPerDay,
		})
		if err != nil {
			return nil, fmt.Errorf("create habit %q: %w", def.Name, err)
		}
		habits[def.Name] = h.ID
	}

	result := &Result{}
	for i, step := range scenario.Steps {
		day, err := dates.Parse(step.Day)
		if err != nil {
			return nil, fmt.Errorf("step %d: bad day %q: %w", i, step.Day, err)
		}
		// Pin the clock to noon local time on the step's day so "today"
		// resolves to exactly that date in the scenario's zone.
		clock.Set(time.Date(day.Year, day.Month, day.Day, 12, 0, 0, 0, loc))

		ev, err := executeStep(ctx, eng, habits[step.Habit], step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s %s): %w", i, step.Op, step.Habit, err)
		}
		ev.Seq = i
		ev.Day = step.Day
		ev.Habit = step.Habit
		result.Trace = append(result.Trace, *ev)

		if step.Expect != nil {
			checkExpect(result, i, step, ev)
		}
	}
	return result, nil
}

func executeStep(ctx context.Context, eng *engine.Engine, habitID string, step Step) (*TraceEvent, error) {
	params := engine.CompletionParams{
		UserID:  scenarioUser,
		HabitID: habitID,
		Value:   step.Value,
	}

	switch step.Op {
	case OpDone:
		res, err := eng.CreateCompletion(ctx, params)
		if err != nil {
			return nil, err
		}
		return eventFromHabit(step.Op, "", res.Habit), nil

	case OpToggle:
		res, err := eng.ToggleCompletion(ctx, params)
		if err != nil {
			return nil, err
		}
		return eventFromHabit(step.Op, string(res.Action), res.Habit), nil

	case OpRemove:
		_, res, err := eng.DeleteCompletion(ctx, params)
		if err != nil {
			return nil, err
		}
		return eventFromHabit(step.Op, "", res.Habit), nil
	}
	return nil, fmt.Errorf("unknown op %q", step.Op)
}

func eventFromHabit(op, action string, h *habit.Habit) *TraceEvent {
	return &TraceEvent{
		Op:      op,
		Action:  action,
		Current: h.CurrentStreak,
		Longest: h.LongestStreak,
		Total:   h.TotalCompletions,
	}
}

func checkExpect(result *Result, i int, step Step, ev *TraceEvent) {
	e := step.Expect
	if e.Action != "" && ev.Action != e.Action {
		result.Errors = append(result.Errors,
			fmt.Sprintf("step %d: action = %q, want %q", i, ev.Action, e.Action))
	}
	if ev.Current != e.Current {
		result.Errors = append(result.Errors,
			fmt.Sprintf("step %d: current streak = %d, want %d", i, ev.Current, e.Current))
	}
	if ev.Longest != e.Longest {
		result.Errors = append(result.Errors,
			fmt.Sprintf("step %d: longest streak = %d, want %d", i, ev.Longest, e.Longest))
	}
	if ev.Total != e.Total {
		result.Errors = append(result.Errors,
			fmt.Sprintf("step %d: total completions = %d, want %d", i, ev.Total, e.Total))
	}
}
