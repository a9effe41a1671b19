// Package habitfile loads declarative habit definition files written in
// CUE. A definitions file lists habits to import in one shot:
//
//	habits: [
//		{name: "Read", target_per_day: 2},
//		{name: "Gym", frequency: "weekly_days", days: [1, 3, 5]},
//		{name: "Call family", frequency: "weekly_target", times_per_week: 2},
//	]
//
// The embedded schema constrains shapes before anything reaches the engine,
// so a file mixing day sets with weekly targets fails at load time with a
// CUE error pointing at the offending field.
package habitfile

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/habitarc/internal/habit"
)

const schema = `
#Habit: {
	name:            string & != ""
	description?:    string
	color?:          =~"^#[0-9a-fA-F]{6}$"
	icon?:           string
	frequency:       *"daily" | "weekly_days" | "weekly_target"
	target_per_day?: int & >=1 & <=100

	if frequency == "weekly_days" {
		days: [_, ...] & [...int & >=1 & <=7]
	}
	if frequency == "weekly_target" {
		times_per_week: int & >=1 & <=7
	}
}

habits: [...#Habit]
`

// Definition is one habit parsed out of a definitions file.
type Definition struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Color        string          `json:"color,omitempty"`
	Icon         string          `json:"icon,omitempty"`
	Frequency    habit.Frequency `json:"frequency"`
	Days         []int           `json:"days,omitempty"`
	TimesPerWeek int             `json:"times_per_week,omitempty"`
	TargetPerDay int             `json:"target_per_day,omitempty"`
}

// Schedule assembles the normalized schedule shape for the definition.
func (d Definition) Schedule() habit.Schedule {
	return habit.Schedule{Days: d.Days, TimesPerWeek: d.TimesPerWeek}.Normalize()
}

// Load reads and validates a habit definitions file.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates CUE source against the definitions schema and decodes the
// habit list. filename is used in error positions only.
func Parse(filename string, src []byte) ([]Definition, error) {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(schema, cue.Filename("habitfile-schema.cue"))
	if err := schemaVal.Err(); err != nil {
		return nil, fmt.Errorf("internal schema error: %w", err)
	}

	fileVal := ctx.CompileBytes(src, cue.Filename(filename))
	if err := fileVal.Err(); err != nil {
		return nil, habit.NewValidation("parse %s: %s", filename, cueErrorDetail(err))
	}

	unified := schemaVal.Unify(fileVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, habit.NewValidation("validate %s: %s", filename, cueErrorDetail(err))
	}

	var out struct {
		Habits []Definition `json:"habits"`
	}
	if err := unified.Decode(&out); err != nil {
		return nil, habit.NewValidation("decode %s: %s", filename, cueErrorDetail(err))
	}
	if len(out.Habits) == 0 {
		return nil, habit.NewValidation("%s defines no habits", filename)
	}

	// The schema constrains shapes; run the domain validation too so the
	// loader and the engine can never disagree.
	for _, def := range out.Habits {
		freq := def.Frequency
		if freq == "" {
			freq = habit.FrequencyDaily
		}
		if err := def.Schedule().ValidateFor(freq); err != nil {
			return nil, habit.NewValidation("habit %q: %v", def.Name, err)
		}
	}
	return out.Habits, nil
}

// cueErrorDetail flattens a CUE error list into one line per error.
func cueErrorDetail(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	msg := ""
	for i, e := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += e.Error()
	}
	return msg
}
