// Package rules holds the standard conversion rules for the type
// descriptors in package typedesc.
//
// Each rule answers every core verb for the types it accepts: decode and
// encode converters, inspectors for both representations and a pattern
// describing the encoded form. Container rules look up their element
// types through the engine, so recursive types resolve through forward
// placeholders.
//
// Decoded representations:
//
//	null                nil
//	bool, int, float    bool, int64, float64
//	str, enum, flag     string
//	decimal             *apd.Decimal
//	date, datetime      time.Time (dates at midnight UTC)
//	time                time.Time on 0000-01-01
//	duration            time.Duration
//	list, tuple         []any
//	set                 map[any]struct{}
//	map                 map[any]any
//	record              map[string]any
//
// Standard assembles the default rule list.
package rules
