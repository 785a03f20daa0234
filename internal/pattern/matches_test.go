package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lattice = []Matches{Always, Sometimes, Potential, Never}

func TestMatches_Ordering(t *testing.T) {
	assert.Less(t, Always, Sometimes)
	assert.Less(t, Sometimes, Potential)
	assert.Less(t, Potential, Never)
}

func TestAll_Identities(t *testing.T) {
	assert.Equal(t, Always, All())
	for _, m := range lattice {
		assert.Equal(t, m, All(m), "single element")
		assert.Equal(t, m, All(Always, m), "Always is the identity")
		assert.Equal(t, Never, All(m, Never), "Never absorbs")
		assert.Equal(t, m, All(m, m), "idempotent")
	}
}

func TestAny_Identities(t *testing.T) {
	assert.Equal(t, Never, Any())
	for _, m := range lattice {
		assert.Equal(t, m, Any(m))
		assert.Equal(t, m, Any(Never, m), "Never is the identity")
		assert.Equal(t, Always, Any(m, Always), "Always absorbs")
		assert.Equal(t, m, Any(m, m), "idempotent")
	}
}

func TestReductions_LatticeLaws(t *testing.T) {
	for _, a := range lattice {
		for _, b := range lattice {
			assert.Equal(t, All(a, b), All(b, a), "All commutes")
			assert.Equal(t, Any(a, b), Any(b, a), "Any commutes")
			assert.Equal(t, a, All(a, Any(a, b)), "absorption")
			assert.Equal(t, a, Any(a, All(a, b)), "absorption")
			for _, c := range lattice {
				assert.Equal(t, All(a, All(b, c)), All(All(a, b), c), "All associates")
				assert.Equal(t, Any(a, Any(b, c)), Any(Any(a, b), c), "Any associates")
			}
		}
	}
}

func TestLazyReductions_ShortCircuit(t *testing.T) {
	calls := 0
	got := allOf(4, func(i int) Matches {
		calls++
		return []Matches{Sometimes, Never, Always, Always}[i]
	})
	assert.Equal(t, Never, got)
	assert.Equal(t, 2, calls, "allOf stops at Never")

	calls = 0
	got = anyOf(4, func(i int) Matches {
		calls++
		return []Matches{Potential, Always, Never, Never}[i]
	})
	assert.Equal(t, Always, got)
	assert.Equal(t, 2, calls, "anyOf stops at Always")
}

func TestParseMatches(t *testing.T) {
	for _, m := range lattice {
		got, err := ParseMatches(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseMatches(" Potential ")
	require.NoError(t, err)
	assert.Equal(t, Potential, got)

	_, err = ParseMatches("often")
	assert.Error(t, err)
}
