package topology

import (
	"cmp"
	"maps"
	"slices"
)

// Edge is an undirected link between two nodes, stored with A <= B.
type Edge struct {
	A, B int
}

// NewEdge returns the canonical edge between u and v.
func NewEdge(u, v int) Edge {
	if u > v {
		u, v = v, u
	}
	return Edge{A: u, B: v}
}

// EdgeSet is a set of canonical edges. Adding a pair in either orientation
// more than once has no effect.
type EdgeSet map[Edge]struct{}

// NewEdgeSet returns an empty set.
func NewEdgeSet() EdgeSet {
	return make(EdgeSet)
}

// Add inserts the edge between u and v and reports whether it was new.
func (s EdgeSet) Add(u, v int) bool {
	e := NewEdge(u, v)
	if _, ok := s[e]; ok {
		return false
	}
	s[e] = struct{}{}
	return true
}

// Has reports whether the edge between u and v is present.
func (s EdgeSet) Has(u, v int) bool {
	_, ok := s[NewEdge(u, v)]
	return ok
}

// Len returns the number of edges.
func (s EdgeSet) Len() int { return len(s) }

// Union adds every edge of other to s.
func (s EdgeSet) Union(other EdgeSet) {
	for e := range other {
		s[e] = struct{}{}
	}
}

// Sorted returns the edges ordered by A, then B. This is the order in
// which connections are numbered.
func (s EdgeSet) Sorted() []Edge {
	return slices.SortedFunc(maps.Keys(s), func(a, b Edge) int {
		if c := cmp.Compare(a.A, b.A); c != 0 {
			return c
		}
		return cmp.Compare(a.B, b.B)
	})
}

// Neighbours returns the nodes linked to id, ascending.
func (s EdgeSet) Neighbours(id int) []int {
	var out []int
	for e := range s {
		switch id {
		case e.A:
			out = append(out, e.B)
		case e.B:
			out = append(out, e.A)
		}
	}
	slices.Sort(out)
	return out
}
