package pattern

// Match reports how strongly left shadows right: whether data meant for
// right could be claimed by a decoder that accepts left.
//
// Alternatives on either side are unpacked and every pair is combined
// with Any. Recursive patterns terminate: revisiting the same pair of
// containers yields Potential.
func Match(left, right Pattern) Matches {
	m := matcher{visiting: make(map[[2]Pattern]bool)}
	return m.match(left, right)
}

type matcher struct {
	visiting map[[2]Pattern]bool
}

func (m *matcher) match(left, right Pattern) Matches {
	lefts := unpack(left)
	rights := unpack(right)
	return anyOf(len(lefts)*len(rights), func(i int) Matches {
		return m.matchOne(lefts[i/len(rights)], rights[i%len(rights)])
	})
}

// unpack resolves forwards and flattens nested alternatives.
func unpack(p Pattern) []Pattern {
	var out []Pattern
	var walk func(p Pattern, seen map[*Alternatives]bool)
	walk = func(p Pattern, seen map[*Alternatives]bool) {
		p = Resolve(p)
		alts, ok := p.(*Alternatives)
		if !ok {
			out = append(out, p)
			return
		}
		if seen[alts] {
			// An alternative that contains itself adds no new branches.
			return
		}
		seen[alts] = true
		for _, a := range alts.Alts {
			walk(a, seen)
		}
	}
	walk(p, make(map[*Alternatives]bool))
	return out
}

func (m *matcher) matchOne(left, right Pattern) Matches {
	if left.Kind() == KindMissing || right.Kind() == KindMissing {
		return Never
	}
	if left.Kind() == KindUnknown || right.Kind() == KindUnknown {
		return Potential
	}
	if same(left, right) {
		return Always
	}

	switch l := left.(type) {
	case Atom:
		if r, ok := right.(Atom); ok && atomsEqual(l, r) {
			return Always
		}
		return Never
	case *Str:
		r, ok := right.(*Str)
		if !ok {
			return Never
		}
		return matchStrings(l, r)
	case *Array:
		r, ok := right.(*Array)
		if !ok {
			return Never
		}
		return m.enter(left, right, func() Matches { return m.matchArrays(l, r) })
	case *Object:
		r, ok := right.(*Object)
		if !ok {
			return Never
		}
		return m.enter(left, right, func() Matches { return m.matchObjects(l, r) })
	}
	return Never
}

// enter guards container recursion with a stack of visited pairs.
func (m *matcher) enter(left, right Pattern, f func() Matches) Matches {
	key := [2]Pattern{left, right}
	if m.visiting[key] {
		return Potential
	}
	m.visiting[key] = true
	defer delete(m.visiting, key)
	return f()
}

func atomsEqual(a, b Atom) bool {
	return same(a, b)
}

func matchStrings(left, right *Str) Matches {
	switch {
	case left.Name == StrAny:
		return Always
	case right.Name == StrAny:
		return Sometimes
	case left.isExact() && right.isExact():
		if left.Literal == right.Literal {
			return Always
		}
		return Never
	case left.isExact():
		if right.Recognize == nil {
			return Potential
		}
		if right.Recognize(left.Literal) {
			return Always
		}
		return Never
	case right.isExact():
		if left.Recognize == nil {
			return Potential
		}
		if left.Recognize(right.Literal) {
			return Always
		}
		return Never
	case left.Name == right.Name:
		return Always
	}
	return Potential
}

func (m *matcher) matchArrays(left, right *Array) Matches {
	var result Matches
	switch {
	case left.Homog && right.Homog:
		result = Any(m.match(elemAt(left, 0), elemAt(right, 0)), Sometimes)
	case left.Homog:
		result = allOf(len(right.Elems), func(i int) Matches {
			return m.match(elemAt(left, i), right.Elems[i])
		})
	case right.Homog:
		// A fixed left claims only the right's lists of its own length.
		result = All(allOf(len(left.Elems), func(i int) Matches {
			return m.match(left.Elems[i], elemAt(right, i))
		}), Sometimes)
	default:
		n := max(len(left.Elems), len(right.Elems))
		result = allOf(n, func(i int) Matches {
			return m.match(elemAt(left, i), elemAt(right, i))
		})
	}
	return result
}

// elemAt cycles homogeneous element lists and pads fixed ones with Missing.
func elemAt(a *Array, i int) Pattern {
	if a.Homog {
		if len(a.Elems) == 0 {
			return Unknown
		}
		return a.Elems[i%len(a.Elems)]
	}
	if i < len(a.Elems) {
		return a.Elems[i]
	}
	return Missing
}

// matchObjects asks whether every object meant for right is claimed by
// left. A homogeneous left must claim each right entry; a fixed left must
// have each required entry met by some right entry.
func (m *matcher) matchObjects(left, right *Object) Matches {
	switch {
	case left.Homog && right.Homog:
		return Any(m.fixedLeft(left, right), Sometimes)
	case left.Homog:
		return allOf(len(right.Entries), func(j int) Matches {
			r := right.Entries[j]
			result := anyOf(len(left.Entries), func(i int) Matches {
				l := left.Entries[i]
				return All(m.match(l.Key, r.Key), m.match(l.Value, r.Value))
			})
			if r.Optional {
				result = Any(result, Sometimes)
			}
			return result
		})
	case right.Homog:
		return All(m.fixedLeft(left, right), Sometimes)
	}
	return m.fixedLeft(left, right)
}

func (m *matcher) fixedLeft(left, right *Object) Matches {
	return allOf(len(left.Entries), func(i int) Matches {
		l := left.Entries[i]
		if l.Optional {
			return m.optionalEntry(l, right)
		}
		return anyOf(len(right.Entries), func(j int) Matches {
			r := right.Entries[j]
			return All(m.match(l.Key, r.Key), m.match(l.Value, r.Value))
		})
	})
}

// optionalEntry constrains the match only where right may carry the key.
// A right entry that may be absent leaves the left entry unused.
func (m *matcher) optionalEntry(l Entry, right *Object) Matches {
	result := Always
	for _, r := range right.Entries {
		key := m.match(l.Key, r.Key)
		if key == Never {
			continue
		}
		v := All(key, m.match(l.Value, r.Value))
		if key != Always || r.Optional || right.Homog {
			v = Any(v, Sometimes)
		}
		result = All(result, v)
	}
	return result
}
