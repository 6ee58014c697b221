package datastructure

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(t *testing.T) *AdjacencyGraph {
	t.Helper()
	g, err := NewAdjacencyGraphFromEdges(4, []Edge{
		NewEdge(0, 1, 1),
		NewEdge(1, 2, 2),
		NewEdge(0, 2, 5),
	}, false)
	require.NoError(t, err)
	return g
}

func TestAdjacencyGraphQueries(t *testing.T) {
	g := triangle(t)

	assert.Equal(t, 4, g.NumberOfVertices())
	assert.Equal(t, 3, g.NumberOfEdges())
	assert.Equal(t, []Arc{NewArc(1, 1), NewArc(2, 5)}, g.Successors(0))
	assert.Equal(t, []Arc{NewArc(0, 5), NewArc(1, 2)}, g.Predecessors(2))
	assert.True(t, g.HasEdge(0, 1))
	assert.False(t, g.HasEdge(1, 0))
	assert.Equal(t, 2.0, g.GetWeight(1, 2))
	assert.True(t, math.IsInf(g.GetWeight(2, 1), 1))
	assert.True(t, math.IsInf(g.GetWeight(0, 3), 1))
	assert.True(t, math.IsInf(g.GetWeight(-1, 3), 1))
	assert.Empty(t, g.Successors(3))
	assert.Empty(t, g.Successors(42))
}

func TestAdjacencyGraphMutation(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(g *AdjacencyGraph) error
		wantEdges []Edge
		wantErr   error
	}{
		{
			name:   "update existing edge",
			mutate: func(g *AdjacencyGraph) error { return g.Update(0, 1, 7) },
			wantEdges: []Edge{
				NewEdge(0, 1, 7), NewEdge(0, 2, 5), NewEdge(1, 2, 2),
			},
		},
		{
			name:   "symmetric update adds reverse edge",
			mutate: func(g *AdjacencyGraph) error { return g.UpdateSymmetric(2, 3, 1.5) },
			wantEdges: []Edge{
				NewEdge(0, 1, 1), NewEdge(0, 2, 5), NewEdge(1, 2, 2), NewEdge(2, 3, 1.5), NewEdge(3, 2, 1.5),
			},
		},
		{
			name: "break edge",
			mutate: func(g *AdjacencyGraph) error {
				g.BreakEdge(0, 2)
				g.BreakEdge(2, 0)
				return nil
			},
			wantEdges: []Edge{NewEdge(0, 1, 1), NewEdge(1, 2, 2)},
		},
		{
			name:    "negative weight rejected",
			mutate:  func(g *AdjacencyGraph) error { return g.Update(0, 1, -1) },
			wantErr: ErrNegativeWeight,
		},
		{
			name:    "out of range rejected",
			mutate:  func(g *AdjacencyGraph) error { return g.Update(0, 9, 1) },
			wantErr: ErrNodeOutOfRange,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			g := triangle(t)
			err := tt.mutate(g)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEdges, g.Edges())
			for _, e := range g.Edges() {
				found := false
				for _, arc := range g.Predecessors(e.GetTo()) {
					if arc.GetNode() == e.GetFrom() {
						assert.Equal(t, e.GetWeight(), arc.GetWeight())
						found = true
					}
				}
				assert.True(t, found, "edge %v missing from predecessors", e)
			}
		})
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	g := triangle(t)
	succs := g.Successors(0)
	g.BreakEdge(0, 1)
	assert.Equal(t, []Arc{NewArc(1, 1), NewArc(2, 5)}, succs)

	clone := g.Clone()
	require.NoError(t, g.Update(0, 3, 4))
	assert.False(t, clone.HasEdge(0, 3))

	require.NoError(t, clone.CopyFrom(g))
	assert.Equal(t, g.Edges(), clone.Edges())
	assert.ErrorIs(t, clone.CopyFrom(NewAdjacencyGraph(2)), ErrShapeMismatch)
}

func TestReversedAndNeighbors(t *testing.T) {
	g := triangle(t)
	r := Reversed(g)

	assert.Equal(t, g.Predecessors(2), r.Successors(2))
	assert.Equal(t, g.Successors(0), r.Predecessors(0))
	assert.True(t, r.HasEdge(1, 0))
	assert.Equal(t, 1.0, r.GetWeight(1, 0))

	r.View(func(view Graph) {
		assert.Equal(t, []Arc{NewArc(0, 5), NewArc(1, 2)}, view.Successors(2))
	})

	assert.Equal(t, []Index{0, 2}, Neighbors(g, 1))
	assert.Equal(t, []Index{1, 2}, Neighbors(g, 0))
}

func TestAdjacencyGraphConcurrentMutation(t *testing.T) {
	g := NewAdjacencyGraph(50)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 49; i++ {
				_ = g.UpdateSymmetric(Index(i), Index(i+1), float64(w+1))
				_ = g.Successors(Index(i))
			}
		}(w)
	}
	wg.Wait()

	for i := Index(0); i < 49; i++ {
		assert.Equal(t, g.GetWeight(i, i+1), g.GetWeight(i+1, i))
	}
}

func TestToAdjacencyGraphFromGrid(t *testing.T) {
	grid, err := ParseGridCells([]string{"--", "-O"})
	require.NoError(t, err)

	adj := ToAdjacencyGraph(grid)
	require.Equal(t, 4, adj.NumberOfVertices())
	for u := Index(0); u < 4; u++ {
		assert.Equal(t, grid.Successors(u), adj.Successors(u))
		assert.Equal(t, grid.Predecessors(u), adj.Predecessors(u))
	}
}
