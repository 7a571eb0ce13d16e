package chains

import (
	"github.com/chainsim/chainsim/dag"
	"github.com/chainsim/chainsim/sim"
)

// Result is the full per-vertex coloring output of decomposition, merge,
// and bit encoding.
type Result struct {
	Color        []int
	ChildColor   []int
	ColorHistory [][]int
	FinalColor   []int
	HColorBits   []int
}

// Compute runs all three phases over g and returns the combined result.
func Compute(g *dag.Graph) *Result {
	color, childColor := Decompose(g)
	finalColors, history := Merge(g, color)
	bitColor, hbits := BitEncode(history)
	return &Result{
		Color:        finalColors,
		ChildColor:   childColor,
		ColorHistory: history,
		FinalColor:   bitColor,
		HColorBits:   hbits,
	}
}

// Assign runs Compute over job's DAG and writes the resulting coloring
// onto each of its tasks: Color is the merged chain identity consulted by
// chain_color_ch/chain_color_rr, HColor/HColorBits the bit-encoded
// hierarchical value consulted by hcolor_rr (spec.md §4.6, §4.7).
func Assign(job *sim.Job) {
	r := Compute(job.DAG)
	for v, t := range job.Tasks {
		t.Color = r.Color[v]
		t.ChildColor = r.ChildColor[v]
		t.HColor = r.FinalColor[v]
		t.HColorBits = r.HColorBits[v]
	}
}
