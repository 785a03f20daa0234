package pattern

import (
	"fmt"
	"strconv"
)

// Ambiguity locates a pair of union branches where the earlier branch
// shadows the later one.
type Ambiguity struct {
	// Path from the root to the alternatives node, e.g. ".items[*]".
	Path string
	// Index is the earlier (shadowing) branch, Other the later one.
	Index    int
	Other    int
	Strength Matches
	Left     Pattern
	Right    Pattern
}

func (a Ambiguity) String() string {
	path := a.Path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("%s: branch %d %s shadows branch %d", path, a.Index, a.Strength, a.Other)
}

// IsAmbiguous reports the first alternatives node, in depth-first order,
// containing branches i < j with Match(branch i, branch j) <= threshold.
// Branches are tried in order, so a decoder trying them first-to-last
// would hand branch j's data to branch i.
func IsAmbiguous(p Pattern, threshold Matches) (Ambiguity, bool) {
	w := walker{threshold: threshold, seen: make(map[Pattern]bool)}
	return w.walk(p, "")
}

// FindAmbiguities is like IsAmbiguous but reports every offending
// alternatives node, one finding per node.
func FindAmbiguities(p Pattern, threshold Matches) []Ambiguity {
	w := walker{threshold: threshold, seen: make(map[Pattern]bool), all: true}
	w.walk(p, "")
	return w.found
}

type walker struct {
	threshold Matches
	seen      map[Pattern]bool
	all       bool
	found     []Ambiguity
}

func (w *walker) walk(p Pattern, path string) (Ambiguity, bool) {
	p = Resolve(p)
	switch n := p.(type) {
	case *Alternatives:
		if w.seen[n] {
			return Ambiguity{}, false
		}
		w.seen[n] = true
		if amb, ok := w.checkBranches(n, path); ok {
			if !w.all {
				return amb, true
			}
			w.found = append(w.found, amb)
		}
		for i, alt := range n.Alts {
			if amb, ok := w.walk(alt, path+"|"+strconv.Itoa(i)); ok {
				return amb, true
			}
		}
	case *Array:
		if w.seen[n] {
			return Ambiguity{}, false
		}
		w.seen[n] = true
		for i, e := range n.Elems {
			seg := "[" + strconv.Itoa(i) + "]"
			if n.Homog {
				seg = "[*]"
			}
			if amb, ok := w.walk(e, path+seg); ok {
				return amb, true
			}
		}
	case *Object:
		if w.seen[n] {
			return Ambiguity{}, false
		}
		w.seen[n] = true
		for _, e := range n.Entries {
			if amb, ok := w.walk(e.Value, path+keySegment(e.Key)); ok {
				return amb, true
			}
		}
	}
	return Ambiguity{}, false
}

func (w *walker) checkBranches(n *Alternatives, path string) (Ambiguity, bool) {
	for i := 0; i < len(n.Alts); i++ {
		for j := i + 1; j < len(n.Alts); j++ {
			if m := Match(n.Alts[i], n.Alts[j]); m <= w.threshold {
				return Ambiguity{
					Path:     path,
					Index:    i,
					Other:    j,
					Strength: m,
					Left:     n.Alts[i],
					Right:    n.Alts[j],
				}, true
			}
		}
	}
	return Ambiguity{}, false
}

func keySegment(key Pattern) string {
	if s, ok := Resolve(key).(*Str); ok && s.isExact() {
		return "." + s.Literal
	}
	return ".*"
}
