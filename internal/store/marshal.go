package store

import (
	"fmt"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
)

// Run is one recorded lint invocation.
type Run struct {
	ID          string
	Seq         int64
	Source      string
	CatalogHash string
	Threshold   string
}

// TypePattern is the rendered pattern of one type.
type TypePattern struct {
	TypeName    string
	Fingerprint string
	Rendered    string
}

// Finding is one ambiguity reported by a run.
type Finding struct {
	Ordinal  int
	TypeName string
	Path     string
	Branch   int
	Other    int
	Strength string
	Message  string
}

// RunInput is everything recorded for a run.
type RunInput struct {
	Source      string
	CatalogHash string
	Threshold   pattern.Matches
	Types       []TypePattern
	Findings    []Finding
}

// NewTypePattern renders p to canonical JSON and fingerprints it.
func NewTypePattern(typeName string, p pattern.Pattern) (TypePattern, error) {
	rendered := pattern.Render(p)
	data, err := ir.MarshalCanonical(rendered)
	if err != nil {
		return TypePattern{}, fmt.Errorf("render pattern of %s: %w", typeName, err)
	}
	return TypePattern{
		TypeName:    typeName,
		Fingerprint: ir.FingerprintString(ir.DomainPattern, string(data)),
		Rendered:    string(data),
	}, nil
}

// NewFinding flattens an ambiguity for storage.
func NewFinding(ordinal int, typeName string, a pattern.Ambiguity) Finding {
	return Finding{
		Ordinal:  ordinal,
		TypeName: typeName,
		Path:     a.Path,
		Branch:   a.Index,
		Other:    a.Other,
		Strength: a.Strength.String(),
		Message:  a.String(),
	}
}
