package harness

import (
	"path/filepath"
	"testing"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no scenario files found")
	}

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		if err != nil {
			t.Fatalf("load %s: %v", path, err)
		}
		t.Run(scenario.Name, func(t *testing.T) {
			RunWithGolden(t, scenario)
		})
	}
}

func TestLoadScenario_Defaults(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "daily_streak_rebuild.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Timezone != "UTC" {
		t.Errorf("timezone = %q, want UTC", s.Timezone)
	}
	if len(s.Steps) != 5 {
		t.Errorf("steps = %d, want 5", len(s.Steps))
	}
}

func TestScenarioValidation(t *testing.T) {
	cases := []struct {
		name     string
		scenario Scenario
	}{
		{"missing name", Scenario{Habits: []HabitDef{{Name: "x"}}}},
		{"no habits", Scenario{Name: "s"}},
		{"unknown op", Scenario{
			Name:   "s",
			Habits: []HabitDef{{Name: "x"}},
			Steps:  []Step{{Day: "2026-02-09", Op: "frobnicate", Habit: "x"}},
		}},
		{"unknown habit", Scenario{
			Name:   "s",
			Habits: []HabitDef{{Name: "x"}},
			Steps:  []Step{{Day: "2026-02-09", Op: OpDone, Habit: "y"}},
		}},
		{"bad expect action", Scenario{
			Name:   "s",
			Habits: []HabitDef{{Name: "x"}},
			Steps: []Step{{
				Day: "2026-02-09", Op: OpToggle, Habit: "x",
				Expect: &Expect{Action: "flipped"},
			}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.scenario.validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
