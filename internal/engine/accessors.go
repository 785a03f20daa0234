package engine

import (
	"fmt"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/pattern"
)

func lookupAs[T any](e *Engine, verb ir.Verb, desc ir.Descriptor) (T, error) {
	var zero T
	action, err := e.Lookup(verb, desc)
	if err != nil {
		return zero, err
	}
	typed, ok := action.(T)
	if !ok {
		return zero, fmt.Errorf("%s(%s): action has type %T, want %T", verb, desc, action, zero)
	}
	return typed, nil
}

// Decoder returns the converter from encoded values to desc.
func (e *Engine) Decoder(desc ir.Descriptor) (ir.Converter, error) {
	return lookupAs[ir.Converter](e, ir.Decode, desc)
}

// Encoder returns the converter from desc to encoded values.
func (e *Engine) Encoder(desc ir.Descriptor) (ir.Converter, error) {
	return lookupAs[ir.Converter](e, ir.Encode, desc)
}

// DecodedInspector returns the check for decoded instances of desc.
func (e *Engine) DecodedInspector(desc ir.Descriptor) (ir.Inspector, error) {
	return lookupAs[ir.Inspector](e, ir.InspectDecoded, desc)
}

// EncodedInspector returns the check for encoded forms of desc.
func (e *Engine) EncodedInspector(desc ir.Descriptor) (ir.Inspector, error) {
	return lookupAs[ir.Inspector](e, ir.InspectEncoded, desc)
}

// Pattern describes the encoded form of desc.
func (e *Engine) Pattern(desc ir.Descriptor) (pattern.Pattern, error) {
	return lookupAs[pattern.Pattern](e, ir.DescribePattern, desc)
}

// IsAmbiguous reports the first union inside desc whose branches shadow
// each other at threshold or stronger.
func (e *Engine) IsAmbiguous(desc ir.Descriptor, threshold pattern.Matches) (pattern.Ambiguity, bool, error) {
	p, err := e.Pattern(desc)
	if err != nil {
		return pattern.Ambiguity{}, false, err
	}
	amb, ok := pattern.IsAmbiguous(p, threshold)
	return amb, ok, nil
}

// Decode is a one-shot helper: look up the decoder and apply it.
func (e *Engine) Decode(desc ir.Descriptor, v ir.Value) (any, error) {
	dec, err := e.Decoder(desc)
	if err != nil {
		return nil, err
	}
	return dec(v)
}

// Encode is a one-shot helper: look up the encoder and apply it.
func (e *Engine) Encode(desc ir.Descriptor, v any) (ir.Value, error) {
	enc, err := e.Encoder(desc)
	if err != nil {
		return nil, err
	}
	out, err := enc(v)
	if err != nil {
		return nil, err
	}
	val, ok := out.(ir.Value)
	if !ok {
		return nil, fmt.Errorf("encode(%s): encoder produced %T, not an encoded value", desc, out)
	}
	return val, nil
}
