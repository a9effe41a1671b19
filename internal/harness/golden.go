package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// snapshot is the serialized form of a run, compared against golden files.
type snapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Timezone     string       `json:"timezone"`
	Trace        []TraceEvent `json:"trace"`
}

// RunWithGolden executes a scenario, fails the test on any unmet expect
// clause, and compares the trace against testdata/golden/<name>.golden.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("run scenario %s: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}

	snap := snapshot{
		ScenarioName: scenario.Name,
		Timezone:     scenario.Timezone,
		Trace:        result.Trace,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		t.Fatalf("marshal trace: %v", err)
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}
