package rules

import (
	"fmt"

	"github.com/roach88/shapes/internal/engine"
)

// Option adjusts the rule list built by Standard.
type Option func(*config)

type config struct {
	floats   engine.Rule
	decimals engine.Rule
	dates    engine.Rule
	extras   []engine.Rule
}

// WithFloats replaces Floats, typically with FloatsNaNStr.
func WithFloats(r engine.Rule) Option {
	return func(c *config) { c.floats = r }
}

// WithDecimals replaces Decimals, typically with DecimalsAsStr.
func WithDecimals(r engine.Rule) Option {
	return func(c *config) { c.decimals = r }
}

// WithDates replaces ISODates, typically with ISODatesLoose.
func WithDates(r engine.Rule) Option {
	return func(c *config) { c.dates = r }
}

// WithExtras appends rules consulted after the standard ones.
func WithExtras(rules ...engine.Rule) Option {
	return func(c *config) { c.extras = append(c.extras, rules...) }
}

// Standard returns the default rule list.
func Standard(opts ...Option) []engine.Rule {
	c := config{
		floats:   Floats,
		decimals: Decimals,
		dates:    ISODates,
	}
	for _, opt := range opts {
		opt(&c)
	}
	rules := []engine.Rule{
		Aliases,
		Atoms,
		c.floats,
		c.decimals,
		c.dates,
		Optional,
		Enums,
		Flags,
		Lists,
		Records,
		Sets,
		Maps,
		Tuples,
		Unions,
		StringKeys,
	}
	return append(rules, c.extras...)
}

// NewEngine builds an engine over Standard(opts...).
func NewEngine(engineOpts []engine.Option, opts ...Option) *engine.Engine {
	return engine.New(Standard(opts...), engineOpts...)
}

// Profile selects the interchangeable rules by name. Empty fields keep
// the defaults.
type Profile struct {
	// Floats is "number" or "nan_str".
	Floats string `yaml:"floats,omitempty" json:"floats,omitempty"`
	// Decimals is "number" or "str".
	Decimals string `yaml:"decimals,omitempty" json:"decimals,omitempty"`
	// Dates is "strict" or "loose".
	Dates string `yaml:"dates,omitempty" json:"dates,omitempty"`
}

var (
	floatRules   = map[string]engine.Rule{"": Floats, "number": Floats, "nan_str": FloatsNaNStr}
	decimalRules = map[string]engine.Rule{"": Decimals, "number": Decimals, "str": DecimalsAsStr}
	dateRules    = map[string]engine.Rule{"": ISODates, "strict": ISODates, "loose": ISODatesLoose}
)

// Options converts the profile to Standard options.
func (p Profile) Options() ([]Option, error) {
	f, ok := floatRules[p.Floats]
	if !ok {
		return nil, fmt.Errorf("unknown floats rule %q (want number or nan_str)", p.Floats)
	}
	d, ok := decimalRules[p.Decimals]
	if !ok {
		return nil, fmt.Errorf("unknown decimals rule %q (want number or str)", p.Decimals)
	}
	dt, ok := dateRules[p.Dates]
	if !ok {
		return nil, fmt.Errorf("unknown dates rule %q (want strict or loose)", p.Dates)
	}
	return []Option{WithFloats(f), WithDecimals(d), WithDates(dt)}, nil
}
