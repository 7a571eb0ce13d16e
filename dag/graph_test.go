package dag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddEdgeUpdatesOutAndIn(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)
	g.AddEdge(1, 2)

	require.Equal(t, []int32{1, 2}, g.Out(0))
	require.Equal(t, []int32{2}, g.Out(1))
	require.Equal(t, []int32{0}, g.In(1))
	require.Equal(t, []int32{0, 1}, g.In(2))
	require.Equal(t, 2, g.OutDegree(0))
	require.Equal(t, 2, g.InDegree(2))
}

func TestAddEdgeOutOfRangePanics(t *testing.T) {
	g := New(2)
	require.Panics(t, func() { g.AddEdge(0, 5) })
}

func TestSourcesReturnsZeroInDegreeVertices(t *testing.T) {
	g := New(4)
	g.AddEdge(0, 2)
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)

	require.Equal(t, []int{0, 1}, g.Sources())
}

func TestTopoOrderDiamond(t *testing.T) {
	// 0 -> 1, 0 -> 2, 1 -> 3, 2 -> 3
	g := New(4)
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)
	g.AddEdge(1, 3)
	g.AddEdge(2, 3)

	order, ok := g.TopoOrder()
	require.True(t, ok)
	require.Equal(t, []int{0, 1, 2, 3}, order)
	require.True(t, g.IsAcyclic())
}

func TestTopoOrderDetectsCycle(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 0)

	_, ok := g.TopoOrder()
	require.False(t, ok)
	require.False(t, g.IsAcyclic())
}
