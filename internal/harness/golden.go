package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir holds one <scenario>.golden trace per scenario, relative to the
// package under test. Regenerate with `go test ./internal/harness -update`.
const GoldenDir = "testdata/golden"

// TraceSnapshot is the golden form of a run.
type TraceSnapshot struct {
	Scenario string       `json:"scenario"`
	Trace    []TraceEntry `json:"trace"`
}

// MarshalTrace renders a trace as indented JSON ending in a newline, so
// golden files diff cleanly.
func MarshalTrace(name string, result *Result) ([]byte, error) {
	data, err := json.MarshalIndent(TraceSnapshot{Scenario: name, Trace: result.Trace}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal trace %s: %w", name, err)
	}
	return append(data, '\n'), nil
}

// RunWithGolden runs scenario and fails t when its trace differs from the
// golden file. A scenario that cannot run at all is returned as an error.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	snapshot, err := MarshalTrace(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	).Assert(t, scenario.Name, snapshot)
	return result, nil
}
