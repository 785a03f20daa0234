package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/shapes/internal/rules"
)

// Scenario is a conversion test over one catalog. Steps run in order
// against a single engine, so later steps see the cache built by earlier
// ones.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is the CUE file declaring the types under test.
	// Relative paths are resolved against the scenario file's directory.
	Catalog string `yaml:"catalog"`

	// Rules picks the interchangeable float, decimal and date rules.
	Rules rules.Profile `yaml:"rules,omitempty"`

	// Steps are the checks to run.
	Steps []Step `yaml:"steps"`
}

// Step is one check against one type.
type Step struct {
	// Check is one of roundtrip, reject, inspect, pattern or ambiguity.
	Check string `yaml:"check"`

	// Type is a declared name, a primitive, or a type expression in the
	// catalog's struct syntax written as JSON (e.g. {"list": "Tree"}).
	Type string `yaml:"type"`

	// Input is the encoded value fed to roundtrip, reject and inspect.
	Input yaml.Node `yaml:"input,omitempty"`

	// Output is the expected re-encoded value for roundtrip. Defaults to
	// Input.
	Output yaml.Node `yaml:"output,omitempty"`

	// Error is a substring the reject error must contain.
	Error string `yaml:"error,omitempty"`

	// Accepted is the expected inspect verdict.
	Accepted *bool `yaml:"accepted,omitempty"`

	// Pattern is the expected rendering for pattern.
	Pattern yaml.Node `yaml:"pattern,omitempty"`

	// Threshold for ambiguity; defaults to potential.
	Threshold string `yaml:"threshold,omitempty"`

	// Ambiguous is the expected ambiguity verdict.
	Ambiguous *bool `yaml:"ambiguous,omitempty"`

	// Path is the expected location of the first ambiguity.
	Path *string `yaml:"path,omitempty"`
}

// Check kinds.
const (
	CheckRoundTrip = "roundtrip"
	CheckReject    = "reject"
	CheckInspect   = "inspect"
	CheckPattern   = "pattern"
	CheckAmbiguity = "ambiguity"
)

// LoadScenario reads and parses a scenario YAML file. The catalog path
// is resolved relative to the file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the catalog path relative to basePath.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(scenario.Catalog) && basePath != "" {
		scenario.Catalog = filepath.Join(basePath, scenario.Catalog)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML without validating it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Catalog == "" {
		return fmt.Errorf("catalog is required")
	}
	if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
		return fmt.Errorf("catalog file not found: %s", s.Catalog)
	}
	if _, err := s.Rules.Options(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	if st.Type == "" {
		return fmt.Errorf("steps[%d]: type is required", index)
	}
	hasInput := !st.Input.IsZero()

	switch st.Check {
	case CheckRoundTrip, CheckReject:
		if !hasInput {
			return fmt.Errorf("steps[%d]: input is required for %s", index, st.Check)
		}
	case CheckInspect:
		if !hasInput {
			return fmt.Errorf("steps[%d]: input is required for inspect", index)
		}
		if st.Accepted == nil {
			return fmt.Errorf("steps[%d]: accepted is required for inspect", index)
		}
	case CheckPattern:
		if st.Pattern.IsZero() {
			return fmt.Errorf("steps[%d]: pattern is required for pattern", index)
		}
	case CheckAmbiguity:
		if st.Ambiguous == nil {
			return fmt.Errorf("steps[%d]: ambiguous is required for ambiguity", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: check is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown check %q", index, st.Check)
	}
	return nil
}
