package pattern

import (
	"fmt"
	"strings"
)

// Matches is the degree to which one pattern shadows another.
// Lower values are stronger: Always < Sometimes < Potential < Never.
type Matches int

const (
	// Always means every instance of the right pattern is claimed by the left.
	Always Matches = iota
	// Sometimes means some instances of the right pattern are claimed.
	Sometimes
	// Potential means overlap cannot be ruled out.
	Potential
	// Never means the patterns provably do not overlap.
	Never
)

func (m Matches) String() string {
	switch m {
	case Always:
		return "always"
	case Sometimes:
		return "sometimes"
	case Potential:
		return "potential"
	case Never:
		return "never"
	default:
		return fmt.Sprintf("Matches(%d)", int(m))
	}
}

// ParseMatches parses the lowercase name of a Matches value.
func ParseMatches(s string) (Matches, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "always":
		return Always, nil
	case "sometimes":
		return Sometimes, nil
	case "potential":
		return Potential, nil
	case "never":
		return Never, nil
	}
	return 0, fmt.Errorf("unknown match strength %q (want always, sometimes, potential or never)", s)
}

// All combines results that must hold together. It returns the weakest
// (maximum) value, Always for no input, and stops at Never.
func All(ms ...Matches) Matches {
	result := Always
	for _, m := range ms {
		result = max(result, m)
		if result == Never {
			break
		}
	}
	return result
}

// Any combines alternative results. It returns the strongest (minimum)
// value, Never for no input, and stops at Always.
func Any(ms ...Matches) Matches {
	result := Never
	for _, m := range ms {
		result = min(result, m)
		if result == Always {
			break
		}
	}
	return result
}

// allOf is the lazy form of All; f is not called past a Never.
func allOf(n int, f func(i int) Matches) Matches {
	result := Always
	for i := 0; i < n && result != Never; i++ {
		result = max(result, f(i))
	}
	return result
}

// anyOf is the lazy form of Any; f is not called past an Always.
func anyOf(n int, f func(i int) Matches) Matches {
	result := Never
	for i := 0; i < n && result != Always; i++ {
		result = min(result, f(i))
	}
	return result
}
