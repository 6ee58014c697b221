package engine

import (
	"testing"

	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathEnginesAgree(t *testing.T) {
	m, err := da.ParseGridMap([]string{
		"S-----",
		"-OOOO-",
		"-O--O-",
		"----OG",
	})
	require.NoError(t, err)

	kinds := []pkg.PlannerKind{pkg.DSTAR_LITE, pkg.TWO_WAY_DSTAR_LITE, pkg.DIJKSTRA}
	costs := make([]float64, 0, len(kinds))
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			e, err := NewPathEngine(kind, m.Grid, m.Start, m.Goal)
			require.NoError(t, err)
			assert.Positive(t, e.Replan(m.Start))

			path := FollowPath(e, m.Start, m.Grid.NumberOfVertices())
			require.NotEmpty(t, path)
			assert.Equal(t, m.Start, path[0])
			assert.Equal(t, m.Goal, path[len(path)-1])

			cost := 0.0
			for i := 0; i+1 < len(path); i++ {
				cost += m.Grid.GetWeight(path[i], path[i+1])
			}
			assert.InDelta(t, e.Value(m.Start), cost, da.EPS)
			costs = append(costs, cost)
		})
	}
	require.Len(t, costs, len(kinds))
	for _, c := range costs[1:] {
		assert.InDelta(t, costs[0], c, da.EPS)
	}
}

func TestNewPathEngineErrors(t *testing.T) {
	g := da.NewAdjacencyGraph(3)
	_, err := NewPathEngine(pkg.DSTAR_LITE, g, 5, 0)
	assert.ErrorIs(t, err, da.ErrNodeOutOfRange)
	_, err = NewPathEngine(pkg.DIJKSTRA, g, 0, 5)
	assert.ErrorIs(t, err, da.ErrNodeOutOfRange)
	_, err = NewPathEngine(pkg.PlannerKind(42), g, 0, 1)
	assert.Error(t, err)
}

func TestFollowPathNoRoute(t *testing.T) {
	g := da.NewAdjacencyGraph(3)
	require.NoError(t, g.Update(0, 1, 1))
	e, err := NewPathEngine(pkg.DSTAR_LITE, g, 0, 2)
	require.NoError(t, err)
	e.Replan(0)
	assert.Empty(t, FollowPath(e, 0, 3))
	assert.Equal(t, []da.Index{2}, FollowPath(e, 2, 3))
}
