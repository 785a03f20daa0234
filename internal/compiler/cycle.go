package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/shapes/internal/ir"
	"github.com/roach88/shapes/internal/typedesc"
)

// Note is a finding about a catalog that does not stop compilation.
type Note struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
	Level   string   `json:"level"` // "warning" or "info"
}

// AnalyzeRecursion reports the recursive groups of a catalog and the
// types no finite value can inhabit.
//
// Recursion itself is fine and reported at info level: the engine builds
// recursive types through forward placeholders. A type is uninhabited
// when every value of it must contain another value of it, e.g.
// record R {next: R}; such types are warnings since nothing decodes.
//
// The algorithm:
//  1. Build name → referenced names, not looking through other names
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a recursive group
//  4. Compute inhabited types as a least fixpoint and warn on the rest
func AnalyzeRecursion(cat *Catalog) []Note {
	graph := buildReferenceGraph(cat)

	var notes []Note
	for _, scc := range tarjanSCC(cat.Names, graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			notes = append(notes, recursionNote(scc, graph))
		}
	}

	inhabited := inhabitedNames(cat)
	for _, name := range cat.Names {
		if !inhabited[name] {
			notes = append(notes, Note{
				Path:    []string{name},
				Message: fmt.Sprintf("type %s has no finite values", name),
				Level:   "warning",
			})
		}
	}
	return notes
}

// referenceGraph maps a type name to the names its definition mentions.
type referenceGraph map[string][]string

func buildReferenceGraph(cat *Catalog) referenceGraph {
	graph := make(referenceGraph, len(cat.Names))
	for _, n := range cat.All() {
		graph[n.Name] = []string{}
		seen := make(map[string]bool)
		var visit func(ir.Descriptor)
		visit = func(d ir.Descriptor) {
			if ref, ok := d.(*typedesc.Named); ok {
				if !seen[ref.Name] {
					seen[ref.Name] = true
					graph[n.Name] = append(graph[n.Name], ref.Name)
				}
				return
			}
			for _, c := range typedesc.Children(d) {
				visit(c)
			}
		}
		visit(n.Target())
	}
	return graph
}

func hasSelfLoop(node string, graph referenceGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's
// algorithm, visiting nodes in the given order.
func tarjanSCC(nodes []string, graph referenceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component.
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func recursionNote(scc []string, graph referenceGraph) Note {
	if len(scc) == 1 {
		return Note{
			Path:    []string{scc[0], scc[0]},
			Message: fmt.Sprintf("recursive type: %s → %s", scc[0], scc[0]),
			Level:   "info",
		}
	}
	path := reconstructCyclePath(scc, graph)
	return Note{
		Path:    path,
		Message: fmt.Sprintf("mutually recursive types: %s", strings.Join(path, " → ")),
		Level:   "info",
	}
}

// reconstructCyclePath follows edges inside the SCC from its first node
// until it returns there.
func reconstructCyclePath(scc []string, graph referenceGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}

// inhabitedNames computes which names have at least one finite value,
// iterating until nothing changes.
func inhabitedNames(cat *Catalog) map[string]bool {
	known := make(map[string]bool)
	var inhabited func(ir.Descriptor) bool
	inhabited = func(d ir.Descriptor) bool {
		switch v := d.(type) {
		case nil:
			return true
		case *typedesc.Named:
			return known[v.Name]
		case typedesc.List, typedesc.Set, typedesc.Map, typedesc.Optional:
			return true
		case *typedesc.Tuple:
			for _, e := range v.Elems() {
				if !inhabited(e) {
					return false
				}
			}
			return true
		case *typedesc.Record:
			for _, f := range v.Fields {
				if f.Required() && !inhabited(f.Type) {
					return false
				}
			}
			return true
		case *typedesc.Union:
			for _, a := range v.Alts() {
				if inhabited(a) {
					return true
				}
			}
			return false
		case *typedesc.Enum:
			return len(v.Members) > 0
		case *typedesc.Flag:
			return len(v.Members()) > 0
		}
		return true
	}

	for changed := true; changed; {
		changed = false
		for _, n := range cat.All() {
			if !known[n.Name] && inhabited(n.Target()) {
				known[n.Name] = true
				changed = true
			}
		}
	}
	return known
}
