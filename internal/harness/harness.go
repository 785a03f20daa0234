package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/roach88/shapes/internal/compiler"
	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/rules"
)

// Option configures a harness run.
type Option func(*Harness)

// WithLogger routes engine and step logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Harness is the test execution engine: one catalog, one rule engine.
type Harness struct {
	catalog *compiler.Catalog
	engine  *engine.Engine
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario gets a fresh engine and cache for isolation.
//
// Execution flow:
// 1. Compile the catalog
// 2. Build the standard rules with the scenario's profile
// 3. Run each step and record failed expectations
//
// A non-nil error means the scenario could not run at all (bad catalog,
// unknown type). Failed expectations are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{logger: slog.New(slog.DiscardHandler)} // Suppress logs in tests
	for _, opt := range opts {
		opt(h)
	}

	src, err := os.ReadFile(scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	h.catalog, err = compiler.CompileSource(scenario.Catalog, src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile catalog: %w", err)
	}

	ruleOpts, err := scenario.Rules.Options()
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	h.engine = rules.NewEngine([]engine.Option{engine.WithLogger(h.logger)}, ruleOpts...)

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := h.executeStep(i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return result, nil
}

// executeStep runs one check. Assertion failures are added to result;
// anything else is returned.
func (h *Harness) executeStep(index int, step Step, result *Result) error {
	desc, err := h.resolve(step.Type)
	if err != nil {
		return err
	}

	sr := StepResult{Index: index, Check: step.Check, Type: step.Type}
	var check func(*engine.Engine, ir.Descriptor, Step, *StepResult) error
	switch step.Check {
	case CheckRoundTrip:
		check = checkRoundTrip
	case CheckReject:
		check = checkReject
	case CheckInspect:
		check = checkInspect
	case CheckPattern:
		check = checkPattern
	case CheckAmbiguity:
		check = checkAmbiguity
	default:
		return fmt.Errorf("unknown check %q", step.Check)
	}

	err = check(h.engine, desc, step, &sr)
	result.AddStep(sr)

	var assertErr *AssertionError
	switch {
	case errors.As(err, &assertErr):
		result.AddError(assertErr.Error())
		h.logger.Info("step failed", "step", index, "check", step.Check, "type", step.Type)
	case err != nil:
		return err
	default:
		h.logger.Debug("step passed", "step", index, "check", step.Check, "type", step.Type)
	}
	return nil
}

// resolve turns a step's type string into a descriptor.
func (h *Harness) resolve(expr string) (ir.Descriptor, error) {
	if strings.HasPrefix(strings.TrimSpace(expr), "{") {
		return h.catalog.ResolveJSON(expr)
	}
	return h.catalog.Resolve(expr)
}
