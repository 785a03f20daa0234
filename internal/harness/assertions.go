package harness

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/shapes/internal/engine"
	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
)

// AssertionError is returned when a step's expectation fails.
type AssertionError struct {
	Step     int    // Step index
	Check    string // Check kind for categorization
	Type     string // Type under test
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: steps[%d] %s %s\n", e.Step, e.Check, e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// nodeValue converts a YAML node to an encoded value.
func nodeValue(n *yaml.Node) (ir.Value, error) {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	return ir.FromAny(raw)
}

func show(v ir.Value) string {
	out, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(out)
}

// checkRoundTrip decodes the input, encodes the result and compares it
// with the expected output.
func checkRoundTrip(e *engine.Engine, desc ir.Descriptor, st Step, sr *StepResult) error {
	input, err := nodeValue(&st.Input)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	want := input
	if !st.Output.IsZero() {
		if want, err = nodeValue(&st.Output); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}

	fail := func(actual string) error {
		return &AssertionError{Step: sr.Index, Check: st.Check, Type: st.Type, Expected: show(want), Actual: actual}
	}

	decoded, err := e.Decode(desc, input)
	if err != nil {
		sr.Error = err.Error()
		return fail("decode error: " + err.Error())
	}
	got, err := e.Encode(desc, decoded)
	if err != nil {
		sr.Error = err.Error()
		return fail("encode error: " + err.Error())
	}
	sr.Output = got
	if !ir.Equal(got, want) {
		return fail(show(got))
	}
	return nil
}

// checkReject expects decoding to fail, optionally with a message
// containing st.Error.
func checkReject(e *engine.Engine, desc ir.Descriptor, st Step, sr *StepResult) error {
	input, err := nodeValue(&st.Input)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	expected := "decode error"
	if st.Error != "" {
		expected = fmt.Sprintf("decode error containing %q", st.Error)
	}

	decoded, err := e.Decode(desc, input)
	if err == nil {
		actual := fmt.Sprintf("decoded to %v", decoded)
		return &AssertionError{Step: sr.Index, Check: st.Check, Type: st.Type, Expected: expected, Actual: actual}
	}
	sr.Error = err.Error()
	if !strings.Contains(err.Error(), st.Error) {
		return &AssertionError{Step: sr.Index, Check: st.Check, Type: st.Type, Expected: expected, Actual: err.Error()}
	}
	return nil
}

// checkInspect runs the encoded inspector over the input.
func checkInspect(e *engine.Engine, desc ir.Descriptor, st Step, sr *StepResult) error {
	input, err := nodeValue(&st.Input)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	inspect, err := e.EncodedInspector(desc)
	if err != nil {
		return err
	}
	got := inspect(input)
	sr.Output = ir.Bool(got)
	if got != *st.Accepted {
		return &AssertionError{
			Step: sr.Index, Check: st.Check, Type: st.Type,
			Expected: fmt.Sprintf("accepted=%t", *st.Accepted),
			Actual:   fmt.Sprintf("accepted=%t", got),
		}
	}
	return nil
}

// checkPattern compares the rendered pattern with the expected value.
func checkPattern(e *engine.Engine, desc ir.Descriptor, st Step, sr *StepResult) error {
	want, err := nodeValue(&st.Pattern)
	if err != nil {
		return fmt.Errorf("pattern: %w", err)
	}
	p, err := e.Pattern(desc)
	if err != nil {
		return err
	}
	got := pattern.Render(p)
	sr.Output = got
	if !ir.Equal(got, want) {
		return &AssertionError{Step: sr.Index, Check: st.Check, Type: st.Type, Expected: show(want), Actual: show(got)}
	}
	return nil
}

// checkAmbiguity runs the ambiguity analysis at the step's threshold.
func checkAmbiguity(e *engine.Engine, desc ir.Descriptor, st Step, sr *StepResult) error {
	threshold := pattern.Potential
	if st.Threshold != "" {
		var err error
		if threshold, err = pattern.ParseMatches(st.Threshold); err != nil {
			return err
		}
	}
	amb, ok, err := e.IsAmbiguous(desc, threshold)
	if err != nil {
		return err
	}

	actual := "unambiguous"
	if ok {
		actual = amb.String()
		sr.Output = ir.String(actual)
	} else {
		sr.Output = ir.Bool(false)
	}

	switch {
	case ok != *st.Ambiguous:
		return &AssertionError{
			Step: sr.Index, Check: st.Check, Type: st.Type,
			Expected: fmt.Sprintf("ambiguous=%t at %s", *st.Ambiguous, threshold),
			Actual:   actual,
		}
	case ok && st.Path != nil && amb.Path != *st.Path:
		return &AssertionError{
			Step: sr.Index, Check: st.Check, Type: st.Type,
			Expected: fmt.Sprintf("ambiguity at %q", *st.Path),
			Actual:   fmt.Sprintf("ambiguity at %q", amb.Path),
		}
	}
	return nil
}
