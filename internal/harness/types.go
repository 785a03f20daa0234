package harness

import "github.com/roach88/shapes/internal/ir"

// StepResult records what one step observed.
type StepResult struct {
	Index int    `json:"index"`
	Check string `json:"check"`
	Type  string `json:"type"`

	// Output is the observed value: the re-encoded value for roundtrip,
	// the rendered pattern for pattern, the verdict for inspect and
	// ambiguity.
	Output ir.Value `json:"output,omitempty"`

	// Error is the conversion error seen by the step, if any.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step met its expectation.
	Pass bool `json:"pass"`

	// Steps holds one entry per executed step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep records a step observation.
func (r *Result) AddStep(s StepResult) {
	r.Steps = append(r.Steps, s)
}
