package robot

import (
	"testing"

	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineGraph(t *testing.T, n int) *da.AdjacencyGraph {
	t.Helper()
	g := da.NewAdjacencyGraph(n)
	for i := 0; i+1 < n; i++ {
		require.NoError(t, g.UpdateSymmetric(da.Index(i), da.Index(i+1), 1))
	}
	return g
}

func TestNearbyNodes(t *testing.T) {
	g := lineGraph(t, 10)
	require.NoError(t, g.Update(9, 4, 1))

	testCases := []struct {
		name   string
		center da.Index
		radius int
		want   []da.Index
	}{
		{name: "radius zero", center: 3, radius: 0, want: []da.Index{3}},
		{name: "radius one", center: 3, radius: 1, want: []da.Index{2, 3, 4}},
		{name: "incoming edges count", center: 4, radius: 1, want: []da.Index{3, 4, 5, 9}},
		{name: "clipped at end", center: 0, radius: 2, want: []da.Index{0, 1, 2}},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NearbyNodes(g, tt.center, tt.radius))
		})
	}
}

func TestDiffEdges(t *testing.T) {
	local := []da.Edge{
		da.NewEdge(0, 1, 1),
		da.NewEdge(1, 2, 1),
		da.NewEdge(2, 3, 1),
	}
	remote := []da.Edge{
		da.NewEdge(0, 1, 1+da.EPS/10),
		da.NewEdge(1, 3, 4),
		da.NewEdge(2, 3, 2),
	}
	got := diffEdges(local, remote)
	require.Len(t, got, 3)

	assert.Equal(t, da.Index(1), got[0].From)
	assert.Equal(t, da.Index(2), got[0].To)
	assert.True(t, got[0].IsRemoved())

	assert.Equal(t, da.Index(3), got[1].To)
	assert.True(t, got[1].IsAdded())
	assert.Equal(t, 4.0, *got[1].WRemote)

	assert.Equal(t, da.Index(2), got[2].From)
	assert.Equal(t, 1.0, *got[2].WLocal)
	assert.Equal(t, 2.0, *got[2].WRemote)
	assert.Equal(t, "(2, 3, 1, 2)", got[2].String())
}

func TestGraphRobotSense(t *testing.T) {
	remote := lineGraph(t, 8)
	r, err := NewGraphRobot(remote, 3)
	require.NoError(t, err)

	remote.BreakEdgeSymmetric(3, 4)
	require.NoError(t, remote.UpdateSymmetric(6, 7, 5))

	res, err := r.Sense(1)
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.Equal(t, []da.Index{3, 4}, res.Nodes)
	assert.Len(t, res.Edges, 2)
	assert.False(t, r.GetLocal().HasEdge(3, 4))
	assert.False(t, r.GetLocal().HasEdge(4, 3))
	assert.Equal(t, 1.0, r.GetLocal().GetWeight(6, 7))

	res, err = r.Sense(1)
	require.NoError(t, err)
	assert.False(t, res.Changed())

	r.MoveTo(6)
	res, err = r.Sense(1)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{6, 7}, res.Nodes)
	assert.Equal(t, 5.0, r.GetLocal().GetWeight(7, 6))

	_, err = r.Sense(-1)
	assert.ErrorIs(t, err, ErrNegativeRadius)
}

func TestGraphRobotSenseAddedEdge(t *testing.T) {
	remote := lineGraph(t, 5)
	r, err := NewGraphRobot(remote, 0)
	require.NoError(t, err)

	require.NoError(t, remote.Update(4, 0, 2))
	res, err := r.Sense(0)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{0, 4}, res.Nodes)
	require.Len(t, res.Edges, 1)
	assert.True(t, res.Edges[0].IsAdded())
	assert.Equal(t, 2.0, r.GetLocal().GetWeight(4, 0))
}

func TestGraphRobotOverGrid(t *testing.T) {
	remote, err := da.NewGridGraph(3, 3)
	require.NoError(t, err)
	r, err := NewGraphRobot(remote, 0)
	require.NoError(t, err)

	_, err = remote.ToggleCell(4)
	require.NoError(t, err)
	res, err := r.Sense(1)
	require.NoError(t, err)
	assert.Contains(t, res.Nodes, da.Index(4))
	assert.Contains(t, res.Nodes, da.Index(0))
	assert.False(t, r.GetLocal().HasEdge(0, 4))
	assert.True(t, r.GetLocal().HasEdge(4, 8))
}

func TestGraphRobotReset(t *testing.T) {
	remote := lineGraph(t, 4)
	r, err := NewGraphRobot(remote, 0)
	require.NoError(t, err)
	local := r.GetGraph()

	remote.BreakEdgeSymmetric(2, 3)
	require.NoError(t, r.Reset(2))
	assert.Equal(t, da.Index(2), r.GetPosition())
	assert.Same(t, local, r.GetGraph())
	assert.False(t, r.GetGraph().HasEdge(2, 3))
	assert.ErrorIs(t, r.Reset(9), ErrBadPosition)

	_, err = NewGraphRobot(remote, -1)
	assert.ErrorIs(t, err, ErrBadPosition)
}

func TestGridRobotSense(t *testing.T) {
	remote, err := da.NewGridGraph(5, 5)
	require.NoError(t, err)
	r, err := NewGridRobot(remote, remote.VertexID(0, 0))
	require.NoError(t, err)

	_, err = remote.ToggleCell(remote.VertexID(1, 1))
	require.NoError(t, err)
	_, err = remote.ToggleCell(remote.VertexID(4, 4))
	require.NoError(t, err)

	res, err := r.Sense(1)
	require.NoError(t, err)
	assert.Len(t, res.Nodes, 9)
	assert.Equal(t, remote.ChebyshevBox(remote.VertexID(1, 1), 1), res.Nodes)
	assert.Empty(t, res.Edges)
	assert.Equal(t, da.OBSTACLE, r.GetLocal().GetCell(remote.VertexID(1, 1)).GetType())
	assert.Equal(t, da.FREE, r.GetLocal().GetCell(remote.VertexID(4, 4)).GetType())

	res, err = r.Sense(1)
	require.NoError(t, err)
	assert.False(t, res.Changed())

	r.MoveTo(remote.VertexID(3, 3))
	res, err = r.Sense(1)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{
		remote.VertexID(3, 3), remote.VertexID(3, 4), remote.VertexID(4, 3), remote.VertexID(4, 4),
	}, res.Nodes)

	require.NoError(t, r.Reset(0))
	assert.Equal(t, remote.Serialize(), r.GetLocal().Serialize())
}
