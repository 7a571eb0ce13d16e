// Package dag implements a compact, integer-indexed directed acyclic graph.
// Vertices are plain ids (0..N-1); adjacency is stored as CSR-like out/in
// edge lists rather than a pointer graph, so vertex-property side tables
// (color, status, ...) can live in flat slices keyed by vertex id and the
// representation can never contain an object cycle (spec.md §9).
package dag

import "fmt"

// Graph is a directed graph over vertices 0..N-1.
type Graph struct {
	n   int
	out [][]int32
	in  [][]int32
}

// New creates an empty Graph with n vertices and no edges.
func New(n int) *Graph {
	return &Graph{
		n:   n,
		out: make([][]int32, n),
		in:  make([][]int32, n),
	}
}

// N returns the number of vertices.
func (g *Graph) N() int { return g.n }

// AddEdge adds a directed edge u -> v. Panics if u or v is out of range.
func (g *Graph) AddEdge(u, v int) {
	if u < 0 || u >= g.n || v < 0 || v >= g.n {
		panic(fmt.Sprintf("dag: edge (%d,%d) out of range for %d vertices", u, v, g.n))
	}
	g.out[u] = append(g.out[u], int32(v))
	g.in[v] = append(g.in[v], int32(u))
}

// Out returns the successors of v in insertion order.
func (g *Graph) Out(v int) []int32 { return g.out[v] }

// In returns the predecessors of v in insertion order.
func (g *Graph) In(v int) []int32 { return g.in[v] }

// OutDegree returns len(Out(v)).
func (g *Graph) OutDegree(v int) int { return len(g.out[v]) }

// InDegree returns len(In(v)).
func (g *Graph) InDegree(v int) int { return len(g.in[v]) }

// Sources returns every vertex with in-degree 0, in id order.
func (g *Graph) Sources() []int {
	var sources []int
	for v := 0; v < g.n; v++ {
		if len(g.in[v]) == 0 {
			sources = append(sources, v)
		}
	}
	return sources
}

// TopoOrder returns a topological ordering of all vertices via Kahn's
// algorithm, ties among simultaneously-ready vertices broken by ascending
// id for determinism. ok is false if the graph contains a cycle.
func (g *Graph) TopoOrder() (order []int, ok bool) {
	indeg := make([]int, g.n)
	for v := 0; v < g.n; v++ {
		indeg[v] = len(g.in[v])
	}
	ready := make([]int, 0, g.n)
	for v := 0; v < g.n; v++ {
		if indeg[v] == 0 {
			ready = append(ready, v)
		}
	}
	order = make([]int, 0, g.n)
	for len(ready) > 0 {
		// pop smallest id for determinism; ready stays small so linear scan is fine
		minIdx := 0
		for i := 1; i < len(ready); i++ {
			if ready[i] < ready[minIdx] {
				minIdx = i
			}
		}
		v := ready[minIdx]
		ready = append(ready[:minIdx], ready[minIdx+1:]...)
		order = append(order, v)
		for _, w := range g.out[v] {
			indeg[w]--
			if indeg[w] == 0 {
				ready = append(ready, int(w))
			}
		}
	}
	return order, len(order) == g.n
}

// IsAcyclic reports whether the graph has no directed cycle.
func (g *Graph) IsAcyclic() bool {
	_, ok := g.TopoOrder()
	return ok
}
