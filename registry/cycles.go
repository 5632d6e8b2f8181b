package registry

import (
	"sort"

	"github.com/wippyai/buffi/errors"
)

// edge is a field-dependency edge in the type digraph. slot indexes
// into fieldSlots(from); a single slot may reference several targets
// (e.g. a tuple of two named types), so the target is part of the key.
type edge struct {
	from   string
	slot   int
	target string
}

// unboxedEdges collects all Named (not Boxed) field-dependency edges
func (r *Registry) unboxedEdges() []edge {
	var edges []edge
	for _, name := range r.Names() {
		t := r.types[name]
		for slot, term := range fieldSlots(t) {
			for _, target := range term.NamedRefs(nil) {
				if r.Contains(target) {
					edges = append(edges, edge{from: name, slot: slot, target: target})
				}
			}
		}
	}
	return edges
}

// BreakCycles detects strongly connected components in the field
// dependency digraph and boxes one edge per cycle until the graph of
// unboxed edges is acyclic. Edge selection is deterministic: the
// lexicographically least (source name, slot, target name) edge inside
// the component is boxed first. Self references always box.
func (r *Registry) BreakCycles() error {
	// every pass boxes at least one edge, so the edge count bounds the
	// number of passes
	limit := len(r.unboxedEdges()) + 1
	for i := 0; i < limit; i++ {
		edges := r.unboxedEdges()
		comp := tarjan(r.Names(), edges)

		target, ok := pickBoxEdge(edges, comp)
		if !ok {
			return nil // acyclic
		}
		t := r.types[target.from]
		fieldSlots(t)[target.slot].boxNamed(target.target)
	}
	return errors.CycleWithoutBoxing(r.Names())
}

// pickBoxEdge returns the least edge that participates in a cycle
func pickBoxEdge(edges []edge, comp map[string]int) (edge, bool) {
	var best edge
	found := false
	for _, e := range edges {
		cyclic := e.from == e.target || comp[e.from] == comp[e.target]
		if e.from != e.target && comp[e.from] == comp[e.target] {
			// same SCC of size one is not a cycle unless self-referential
			cyclic = sccSize(comp, comp[e.from]) > 1
		}
		if !cyclic {
			continue
		}
		if !found || lessEdge(e, best) {
			best = e
			found = true
		}
	}
	return best, found
}

func sccSize(comp map[string]int, id int) int {
	n := 0
	for _, c := range comp {
		if c == id {
			n++
		}
	}
	return n
}

func lessEdge(a, b edge) bool {
	if a.from != b.from {
		return a.from < b.from
	}
	if a.slot != b.slot {
		return a.slot < b.slot
	}
	return a.target < b.target
}

// tarjan assigns each node a strongly-connected-component id
func tarjan(nodes []string, edges []edge) map[string]int {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.from] = append(adj[e.from], e.target)
	}
	for _, targets := range adj {
		sort.Strings(targets)
	}

	index := make(map[string]int, len(nodes))
	lowlink := make(map[string]int, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	comp := make(map[string]int, len(nodes))
	var stack []string
	next, compID := 0, 0

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] && index[w] < lowlink[v] {
				lowlink[v] = index[w]
			}
		}

		if lowlink[v] == index[v] {
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp[w] = compID
				if w == v {
					break
				}
			}
			compID++
		}
	}

	for _, v := range nodes {
		if _, seen := index[v]; !seen {
			strongconnect(v)
		}
	}
	return comp
}

// TopoOrder returns the canonical names ordered so that every type
// appears after the types it references through unboxed edges. Ties
// break lexicographically, which keeps emission stable across runs.
func (r *Registry) TopoOrder() ([]string, error) {
	names := r.Names()
	indegree := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for _, name := range names {
		indegree[name] = 0
	}
	seen := make(map[edge]bool)
	for _, e := range r.unboxedEdges() {
		key := edge{from: e.from, target: e.target}
		if e.from == e.target || seen[key] {
			continue
		}
		seen[key] = true
		indegree[e.from]++
		dependents[e.target] = append(dependents[e.target], e.from)
	}

	var ready []string
	for _, name := range names {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	out := make([]string, 0, len(names))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		out = append(out, name)
		changed := false
		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
				changed = true
			}
		}
		if changed {
			sort.Strings(ready)
		}
	}

	if len(out) != len(names) {
		var stuck []string
		for _, name := range names {
			if indegree[name] > 0 {
				stuck = append(stuck, name)
			}
		}
		return nil, errors.CycleWithoutBoxing(stuck)
	}
	return out, nil
}
