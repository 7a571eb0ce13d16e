package chains

// BitEncode runs Phase C: folds each vertex's color_history from the
// innermost (most-merged, final) step backward, producing a bit-encoded
// hierarchical color whose high bits reflect coarse merge groups and low
// bits reflect the original fine-grained chain (spec.md §4.6).
func BitEncode(history [][]int) (finalColor []int, hcolorBits []int) {
	n := len(history)
	finalColor = make([]int, n)
	hcolorBits = make([]int, n)
	for v := 0; v < n; v++ {
		steps := history[v]
		nSteps := len(steps)
		fc := 0
		for i := nSteps - 2; i >= 0; i-- {
			bit := 0
			if steps[i] != steps[i+1] {
				bit = 1
			}
			fc = fc<<1 | bit
		}
		finalColor[v] = fc
		hcolorBits[v] = nSteps
	}
	return finalColor, hcolorBits
}
