package dstarlite

import (
	"testing"

	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/lintang-b-s/navreplan/pkg/engine/dijkstra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func randomGraph(t *testing.T, r *rand.Rand, n, m int) *da.AdjacencyGraph {
	t.Helper()
	g := da.NewAdjacencyGraph(n)
	for i := 0; i < m; i++ {
		u := da.Index(r.Intn(n))
		v := da.Index(r.Intn(n))
		if u == v {
			continue
		}
		require.NoError(t, g.Update(u, v, float64(1+r.Intn(9))))
	}
	return g
}

func pathCost(t *testing.T, g da.Graph, path []da.Index) float64 {
	t.Helper()
	cost := 0.0
	for i := 0; i+1 < len(path); i++ {
		require.True(t, g.HasEdge(path[i], path[i+1]), "no edge %d -> %d", path[i], path[i+1])
		cost += g.GetWeight(path[i], path[i+1])
	}
	return cost
}

func followNext(e *Engine, u da.Index, limit int) []da.Index {
	path := []da.Index{u}
	for u != e.GetGoal() && len(path) <= limit {
		u = e.GetNext(u)
		if u == pkg.NO_ROUTE {
			return nil
		}
		path = append(path, u)
	}
	return path
}

func parseGrid(t *testing.T, lines ...string) *da.GridMap {
	t.Helper()
	m, err := da.ParseGridMap(lines)
	require.NoError(t, err)
	return m
}

func TestNewEngineRejectsBadGoal(t *testing.T) {
	_, err := NewEngine(da.NewAdjacencyGraph(3), 3)
	assert.ErrorIs(t, err, da.ErrNodeOutOfRange)
}

func TestReset(t *testing.T) {
	g := randomGraph(t, rand.New(rand.NewSource(1)), 10, 30)
	e, err := NewEngine(g, 4)
	require.NoError(t, err)
	e.Replan(0)

	e.Reset()
	for u := da.Index(0); u < 10; u++ {
		if u == 4 {
			assert.Equal(t, 0.0, e.GetRhs(u))
		} else {
			assert.True(t, da.IsInf(e.GetRhs(u)))
		}
		assert.True(t, da.IsInf(e.GetG(u)))
	}
	assert.Equal(t, 1, e.QueueSize())
	_, full := e.DrainChanges()
	assert.True(t, full)
}

func TestReplanMatchesOracle(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewSource(seed))
		n := 30
		g := randomGraph(t, r, n, 90)
		goal := da.Index(r.Intn(n))
		curr := da.Index(r.Intn(n))

		e, err := NewEngine(g, goal)
		require.NoError(t, err)
		e.Replan(curr)

		dist := dijkstra.ShortestDistances(g, goal)
		require.True(t, da.Eq(e.GetG(curr), e.GetRhs(curr)), "seed %d", seed)
		require.True(t, da.Eq(dist[curr], e.GetG(curr)), "seed %d: want %v got %v", seed, dist[curr], e.GetG(curr))

		if da.IsInf(dist[curr]) {
			assert.Equal(t, da.Index(pkg.NO_ROUTE), e.GetNext(curr))
			continue
		}
		path := followNext(e, curr, n)
		require.NotNil(t, path, "seed %d", seed)
		assert.InDelta(t, dist[curr], pathCost(t, g, path), da.EPS, "seed %d", seed)
	}
}

func TestIncrementalReplanMatchesOracle(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewSource(seed))
		n := 40
		g := randomGraph(t, r, n, 140)
		goal := da.Index(r.Intn(n))
		curr := da.Index(r.Intn(n))

		e, err := NewEngine(g, goal)
		require.NoError(t, err)
		e.Replan(curr)

		for round := 0; round < 10; round++ {
			changed := make([]da.Index, 0)
			for k := 0; k < 3; k++ {
				u := da.Index(r.Intn(n))
				v := da.Index(r.Intn(n))
				if u == v {
					continue
				}
				if r.Intn(3) == 0 {
					g.BreakEdge(u, v)
				} else {
					require.NoError(t, g.Update(u, v, float64(1+r.Intn(9))))
				}
				changed = append(changed, u, v)
			}
			e.ExamineUpdates(changed)
			e.Replan(curr)

			dist := dijkstra.ShortestDistances(g, goal)
			require.True(t, da.Eq(e.GetG(curr), e.GetRhs(curr)), "seed %d round %d", seed, round)
			require.True(t, da.Eq(dist[curr], e.GetG(curr)),
				"seed %d round %d: want %v got %v", seed, round, dist[curr], e.GetG(curr))

			if !da.IsInf(dist[curr]) {
				path := followNext(e, curr, n)
				require.NotNil(t, path)
				assert.InDelta(t, dist[curr], pathCost(t, g, path), da.EPS)
			}
		}
	}
}

func TestUpdateNodeIdempotent(t *testing.T) {
	g := randomGraph(t, rand.New(rand.NewSource(7)), 15, 45)
	e, err := NewEngine(g, 0)
	require.NoError(t, err)
	e.Replan(14)

	for u := da.Index(1); u < 15; u++ {
		e.UpdateNode(u)
		first := e.Inspect(u)
		e.UpdateNode(u)
		second := e.Inspect(u)
		assert.Equal(t, first, second, "node %d", u)
	}
}

func TestUpdateNodeSkipsGoal(t *testing.T) {
	g := randomGraph(t, rand.New(rand.NewSource(3)), 8, 20)
	e, err := NewEngine(g, 2)
	require.NoError(t, err)
	e.UpdateNode(2)
	assert.Equal(t, 0.0, e.GetRhs(2))
	assert.Equal(t, 1, e.QueueSize())
}

func TestStraightCorridor(t *testing.T) {
	m := parseGrid(t, "S0G")
	e, err := NewEngine(m.Grid, m.Goal)
	require.NoError(t, err)
	e.Replan(m.Start)

	assert.Equal(t, []da.Index{0, 1, 2}, followNext(e, m.Start, 3))
	assert.Equal(t, 2.0, e.GetG(m.Start))
}

func TestDetourThroughGap(t *testing.T) {
	m := parseGrid(t,
		"S--",
		"OO-",
		"G--",
	)
	e, err := NewEngine(m.Grid, m.Goal)
	require.NoError(t, err)
	e.Replan(m.Start)

	path := followNext(e, m.Start, 9)
	require.NotNil(t, path)
	assert.Contains(t, path, m.Grid.VertexID(1, 2))
	assert.InDelta(t, 2+2*pkg.SQRT2, e.GetG(m.Start), da.EPS)
	assert.InDelta(t, e.GetG(m.Start), pathCost(t, m.Grid, path), da.EPS)
}

func TestUnreachableGoal(t *testing.T) {
	m := parseGrid(t,
		"SO-",
		"-O-",
		"-OG",
	)
	e, err := NewEngine(m.Grid, m.Goal)
	require.NoError(t, err)
	e.Replan(m.Start)

	assert.True(t, da.IsInf(e.GetG(m.Start)))
	for _, u := range []da.Index{0, 3, 6, 1, 4, 7} {
		assert.Equal(t, da.Index(pkg.NO_ROUTE), e.GetNext(u), "node %d", u)
	}
	assert.False(t, e.IsOpen(m.Start))
}

func TestEdgeWeightDecrease(t *testing.T) {
	g, err := da.NewAdjacencyGraphFromEdges(4, []da.Edge{
		da.NewEdge(0, 1, 1),
		da.NewEdge(1, 3, 10),
		da.NewEdge(0, 2, 2),
		da.NewEdge(2, 3, 5),
	}, false)
	require.NoError(t, err)

	e, err := NewEngine(g, 3)
	require.NoError(t, err)
	e.Replan(0)
	assert.Equal(t, 7.0, e.GetG(0))
	assert.Equal(t, da.Index(2), e.GetNext(0))
	e.DrainChanges()

	require.NoError(t, g.Update(1, 3, 1))
	e.ExamineUpdates([]da.Index{1, 3})
	iterations := e.Replan(0)
	assert.Positive(t, iterations)
	assert.Equal(t, 2.0, e.GetG(0))
	assert.Equal(t, da.Index(1), e.GetNext(0))

	changed, full := e.DrainChanges()
	assert.False(t, full)
	assert.Contains(t, changed, da.Index(1))
	assert.Contains(t, changed, da.Index(0))
}

func TestBestSuccessorTieBreak(t *testing.T) {
	g, err := da.NewAdjacencyGraphFromEdges(4, []da.Edge{
		da.NewEdge(0, 2, 1),
		da.NewEdge(0, 1, 1),
		da.NewEdge(1, 3, 1),
		da.NewEdge(2, 3, 1),
	}, false)
	require.NoError(t, err)

	e, err := NewEngine(g, 3)
	require.NoError(t, err)
	e.Replan(0)
	next, cost := e.BestSuccessor(0)
	assert.Equal(t, da.Index(1), next)
	assert.Equal(t, 2.0, cost)
}

func TestSetGoal(t *testing.T) {
	m := parseGrid(t, "S--G")
	e, err := NewEngine(m.Grid, m.Goal)
	require.NoError(t, err)
	e.Replan(m.Start)
	assert.Equal(t, 3.0, e.GetG(m.Start))

	require.NoError(t, e.SetGoal(1))
	e.Replan(m.Start)
	assert.Equal(t, 1.0, e.GetG(m.Start))
	assert.ErrorIs(t, e.SetGoal(9), da.ErrNodeOutOfRange)
}
