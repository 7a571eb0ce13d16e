package chains

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/chainsim/chainsim/dag"
)

// Merge runs Phase B: repeatedly builds the symmetrized cross-color
// adjacency H and merges, for every color in ascending order, its
// minimum-row-sum neighbor into it, until no cross-color edges remain.
// initial is Decompose's per-vertex Color output. Returns the final
// per-vertex color and, for every vertex, the sequence of colors it held
// at the start of each round (the last entry is the stable final color) —
// the ChainState.color_history of spec.md §3.
func Merge(g *dag.Graph, initial []int) (final []int, history [][]int) {
	n := g.N()
	colors := append([]int(nil), initial...)
	history = make([][]int, n)

	for {
		// distinct/idx only size and address the H matrix for this round; the
		// colors slice itself always keeps its own stable labels, so a color
		// nobody merges into never appears to "change" in color_history just
		// because some other, unrelated color was eliminated this round.
		distinct := sortedDistinct(colors)
		idx := make(map[int]int, len(distinct))
		for i, c := range distinct {
			idx[c] = i
		}
		k := len(distinct)

		H := mat.NewSymDense(k, nil)
		for u := 0; u < n; u++ {
			for _, wi := range g.Out(u) {
				w := int(wi)
				cu, cw := idx[colors[u]], idx[colors[w]]
				if cu != cw {
					H.SetSym(cu, cw, H.At(cu, cw)+1)
				}
			}
		}

		for v := 0; v < n; v++ {
			history[v] = append(history[v], colors[v])
		}

		if matAllZero(H, k) {
			break
		}

		merged := make([]int, k)
		for i := range merged {
			merged[i] = i
		}
		assigned := make([]bool, k)
		for c := 0; c < k; c++ {
			if assigned[c] {
				continue
			}
			bestNb, bestSum := -1, math.Inf(1)
			for nb := 0; nb < k; nb++ {
				if nb == c || assigned[nb] || H.At(c, nb) == 0 {
					continue
				}
				rs := rowSum(H, nb, k)
				if bestNb == -1 || rs < bestSum || (rs == bestSum && nb < bestNb) {
					bestNb, bestSum = nb, rs
				}
			}
			assigned[c] = true
			if bestNb == -1 {
				continue
			}
			merged[bestNb] = c
			assigned[bestNb] = true
			zeroRowCol(H, c, k)
			zeroRowCol(H, bestNb, k)
		}

		// Translate the index-space merge map back to stable labels: the
		// winner of each merge keeps its own pre-existing label, so vertices
		// that were never touched by any merge retain it unchanged.
		newLabel := make([]int, k)
		for i := 0; i < k; i++ {
			newLabel[i] = distinct[merged[i]]
		}
		for v := 0; v < n; v++ {
			colors[v] = newLabel[idx[colors[v]]]
		}
	}

	return colors, history
}

func sortedDistinct(colors []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, c := range colors {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func rowSum(H *mat.SymDense, row, k int) float64 {
	var s float64
	for j := 0; j < k; j++ {
		s += H.At(row, j)
	}
	return s
}

func zeroRowCol(H *mat.SymDense, i, k int) {
	for j := 0; j < k; j++ {
		H.SetSym(i, j, 0)
	}
}

func matAllZero(H *mat.SymDense, k int) bool {
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			if H.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}
