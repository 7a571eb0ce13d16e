// Package chains implements chain decomposition and iterative hierarchical
// merging of a task DAG, producing per-vertex colors and an optional
// bit-encoded hierarchical refinement (spec.md §4.6).
package chains

import (
	"sort"

	"github.com/chainsim/chainsim/dag"
)

// Decompose runs Phase A: a DFS-based topological walk that assigns every
// vertex a chain color, choosing at each step the uncolored out-neighbor
// with the largest DFS close time so straight chains are not split. Color
// and ChildColor are both indexed by vertex id.
func Decompose(g *dag.Graph) (color []int, childColor []int) {
	n := g.N()
	open := make([]int, n)
	closeT := make([]int, n)
	visited := make([]bool, n)
	timer := 0

	var dfs func(v int)
	dfs = func(v int) {
		visited[v] = true
		timer++
		open[v] = timer
		neighbors := append([]int32(nil), g.Out(v)...)
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
		for _, wi := range neighbors {
			w := int(wi)
			if !visited[w] {
				dfs(w)
			}
		}
		timer++
		closeT[v] = timer
	}

	sources := g.Sources()
	sort.Ints(sources)
	for _, s := range sources {
		if !visited[s] {
			dfs(s)
		}
	}
	for v := 0; v < n; v++ {
		if !visited[v] {
			dfs(v)
		}
	}

	sortedNodes := make([]int, n)
	for i := range sortedNodes {
		sortedNodes[i] = i
	}
	sort.Slice(sortedNodes, func(i, j int) bool {
		return closeT[sortedNodes[i]] > closeT[sortedNodes[j]]
	})

	color = make([]int, n)
	childColor = make([]int, n)
	for v := range color {
		color[v] = -1
	}
	next := 0
	for _, v := range sortedNodes {
		if color[v] != -1 {
			continue
		}
		c := next
		next++
		color[v] = c
		cur := v
		for {
			best := -1
			for _, wi := range g.Out(cur) {
				w := int(wi)
				if color[w] == -1 {
					if best == -1 || closeT[w] > closeT[best] {
						best = w
					}
				}
			}
			if best == -1 {
				childColor[cur] = c
				break
			}
			color[best] = c
			childColor[cur] = c
			cur = best
		}
	}
	return color, childColor
}
