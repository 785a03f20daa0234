package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/shapes/internal/ir"
)

// Snapshot converts a result into the canonical form stored in golden
// files: the scenario name and every step's observation.
func Snapshot(name string, result *Result) ir.Value {
	steps := make(ir.Array, len(result.Steps))
	for i, s := range result.Steps {
		step := ir.Object{
			"index": ir.Int(s.Index),
			"check": ir.String(s.Check),
			"type":  ir.String(s.Type),
		}
		if s.Output != nil {
			step["output"] = s.Output
		}
		if s.Error != "" {
			step["error"] = ir.String(s.Error)
		}
		steps[i] = step
	}
	return ir.Object{
		"scenario_name": ir.String(name),
		"pass":          ir.Bool(result.Pass),
		"steps":         steps,
	}
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already computed result against a golden
// file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := ir.MarshalCanonical(Snapshot(scenarioName, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshot)
	return nil
}
