package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shapes/internal/ir"
)

func TestRunWithGolden_OrderCatalog(t *testing.T) {
	// First run with -update to create golden file:
	//   go test ./internal/harness -run TestRunWithGolden_OrderCatalog -update
	result, err := RunWithGolden(t, loadTestScenario(t, "order_catalog.yaml"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestSnapshot_OmitsEmptyFields(t *testing.T) {
	result := NewResult()
	result.AddStep(StepResult{Index: 0, Check: CheckReject, Type: "int", Error: "bad"})
	result.AddError("boom")

	got := ir.MustMarshalCanonical(Snapshot("s", result))
	assert.Equal(t,
		`{"pass":false,"scenario_name":"s","steps":[{"check":"reject","error":"bad","index":0,"type":"int"}]}`,
		string(got))
}
