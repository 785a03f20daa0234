// Package typedesc defines the type descriptors understood by the
// standard rules: primitives, collections, tuples, unions, flags, enums,
// records and named (possibly recursive) types.
//
// Value descriptors (Primitive, List, Set, Optional, Map) are comparable
// when their members are. Variadic descriptors (Tuple, Union, Flag) are
// interned pointers so they stay comparable. Record, Enum and Named are
// nominal: identity is the pointer.
package typedesc
