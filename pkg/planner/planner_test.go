package planner

import (
	"testing"

	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/lintang-b-s/navreplan/pkg/engine/dijkstra"
	"github.com/lintang-b-s/navreplan/pkg/robot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var allKinds = []pkg.PlannerKind{pkg.DSTAR_LITE, pkg.DIJKSTRA, pkg.TWO_WAY_DSTAR_LITE}

func gridPlanner(t *testing.T, kind pkg.PlannerKind, bus *EventBus, lines ...string) (*Planner, *da.GridMap) {
	t.Helper()
	m, err := da.ParseGridMap(lines)
	require.NoError(t, err)
	r, err := robot.NewGridRobot(m.Grid, m.Start)
	require.NoError(t, err)
	p, err := NewPlanner(kind, r, m.Goal, zap.NewNop(), bus)
	require.NoError(t, err)
	return p, m
}

func runToGoal(t *testing.T, p *Planner, radius int) []da.Index {
	t.Helper()
	visited := []da.Index{p.GetPosition()}
	limit := p.GetRobot().GetGraph().NumberOfVertices() * 2
	for !p.AtGoal() {
		require.Less(t, len(visited), limit, "robot does not reach the goal")
		res, err := p.Move(radius)
		require.NoError(t, err)
		visited = append(visited, res.To)
	}
	return visited
}

func TestStraightCorridorPath(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			p, m := gridPlanner(t, kind, nil, "S-G")
			assert.Equal(t, []da.Index{0, 1, 2}, p.Path())
			assert.Equal(t, 2.0, p.Value(m.Start))

			assert.Equal(t, []da.Index{0, 1, 2}, runToGoal(t, p, pkg.DEFAULT_SENSOR_RADIUS))
			assert.Equal(t, 2.0, p.GetDistance())
		})
	}
}

func TestDetourThroughGapPath(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			p, m := gridPlanner(t, kind, nil,
				"S--",
				"OO-",
				"G--",
			)
			path := p.Path()
			require.NotEmpty(t, path)
			assert.Contains(t, path, m.Grid.VertexID(1, 2))
			assert.InDelta(t, 2+2*pkg.SQRT2, p.Value(m.Start), da.EPS)
		})
	}
}

func TestMoveWithoutRoute(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			p, m := gridPlanner(t, kind, nil,
				"SO-",
				"-O-",
				"-OG",
			)
			res, err := p.Move(1)
			assert.ErrorIs(t, err, ErrNoPath)
			assert.Equal(t, m.Start, res.To)
			assert.Equal(t, m.Start, p.GetPosition())
			assert.Equal(t, da.Index(pkg.NO_ROUTE), p.GetNext(m.Start))
			assert.Empty(t, p.Path())
			assert.Equal(t, 0.0, p.GetDistance())
		})
	}
}

func TestReplanAfterLocalChangeIsIncremental(t *testing.T) {
	grid, err := da.NewGridGraph(10, 10)
	require.NoError(t, err)
	remote := da.ToAdjacencyGraph(grid)
	start, goal := grid.VertexID(0, 0), grid.VertexID(9, 9)

	r, err := robot.NewGraphRobot(remote, start)
	require.NoError(t, err)
	p, err := NewPlanner(pkg.DSTAR_LITE, r, goal, zap.NewNop(), nil)
	require.NoError(t, err)
	require.Equal(t, grid.VertexID(1, 1), p.GetNext(start))

	remote.BreakEdgeSymmetric(start, grid.VertexID(1, 1))
	res, err := p.Move(1)
	require.NoError(t, err)
	assert.True(t, res.Sensed.Changed())
	assert.Positive(t, res.Iterations)
	assert.NotEqual(t, grid.VertexID(1, 1), res.To)

	full, err := dijkstra.NewDijkstra(remote, goal)
	require.NoError(t, err)
	pops := full.Replan(start)
	assert.Less(t, res.Iterations, pops)

	assert.InDelta(t, dijkstra.ShortestDistances(remote, goal)[start], res.Distance+p.Value(res.To), da.EPS)
}

func TestMoveFollowsDecreasingValues(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			p, m := gridPlanner(t, kind, nil,
				"S----",
				"-----",
				"--O--",
				"-----",
				"----G",
			)
			initial := p.Value(m.Start)
			for !p.AtGoal() {
				before := p.Value(p.GetPosition())
				res, err := p.Move(1)
				require.NoError(t, err)
				w := m.Grid.GetWeight(res.From, res.To)
				assert.InDelta(t, before-w, p.Value(res.To), da.EPS)
				assert.Zero(t, res.Iterations)
			}
			assert.InDelta(t, initial, p.GetDistance(), da.EPS)
			assert.InDelta(t, dijkstra.ShortestDistances(m.Grid, m.Goal)[m.Start], p.GetDistance(), da.EPS)
		})
	}
}

func TestMoveAtGoal(t *testing.T) {
	p, _ := gridPlanner(t, pkg.DSTAR_LITE, nil, "SG")
	_, err := p.Move(1)
	require.NoError(t, err)

	res, err := p.Move(1)
	assert.ErrorIs(t, err, ErrAlreadyAtGoal)
	assert.Equal(t, res.From, res.To)
	assert.Equal(t, 1.0, res.Distance)
}

func TestMoveRejectsNegativeRadius(t *testing.T) {
	p, _ := gridPlanner(t, pkg.DSTAR_LITE, nil, "S-G")
	_, err := p.Move(-1)
	assert.ErrorIs(t, err, robot.ErrNegativeRadius)
}

func TestObstacleAppearsOnRoute(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			p, m := gridPlanner(t, kind, nil,
				"-----",
				"S---G",
				"-----",
			)
			blocked := m.Grid.VertexID(1, 2)
			require.Contains(t, p.Path(), blocked)

			_, err := m.Grid.ToggleCell(blocked)
			require.NoError(t, err)
			visited := runToGoal(t, p, 1)
			assert.NotContains(t, visited, blocked)
			assert.InDelta(t, 2+2*pkg.SQRT2, p.GetDistance(), da.EPS)
		})
	}
}

func TestReset(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			p, m := gridPlanner(t, kind, nil,
				"S----",
				"-----",
				"----G",
			)
			_, err := p.Move(1)
			require.NoError(t, err)

			_, err = m.Grid.ToggleCell(m.Grid.VertexID(2, 3))
			require.NoError(t, err)
			iterations, err := p.Reset(m.Start)
			require.NoError(t, err)
			assert.Positive(t, iterations)
			assert.Equal(t, m.Start, p.GetPosition())
			assert.Equal(t, 0.0, p.GetDistance())
			assert.InDelta(t, dijkstra.ShortestDistances(m.Grid, m.Goal)[m.Start], p.Value(m.Start), da.EPS)

			_, err = p.Reset(-1)
			assert.ErrorIs(t, err, robot.ErrBadPosition)
		})
	}
}

func TestSetGoal(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			p, m := gridPlanner(t, kind, nil,
				"S---",
				"---G",
			)
			newGoal := m.Grid.VertexID(1, 0)
			_, err := p.SetGoal(newGoal)
			require.NoError(t, err)
			assert.Equal(t, newGoal, p.GetGoal())
			assert.Equal(t, []da.Index{m.Start, newGoal}, p.Path())

			_, err = p.SetGoal(99)
			assert.ErrorIs(t, err, da.ErrNodeOutOfRange)
			assert.Equal(t, newGoal, p.GetGoal())
		})
	}
}

func TestResetRobot(t *testing.T) {
	p, m := gridPlanner(t, pkg.TWO_WAY_DSTAR_LITE, nil,
		"S--",
		"---",
		"--G",
	)
	other, err := da.ParseGridCells([]string{
		"---",
		"OO-",
		"---",
	})
	require.NoError(t, err)
	r, err := robot.NewGridRobot(other, m.Grid.VertexID(1, 2))
	require.NoError(t, err)

	_, err = p.ResetRobot(r)
	require.NoError(t, err)
	assert.Same(t, r, p.GetRobot())
	assert.Equal(t, []da.Index{m.Grid.VertexID(1, 2), m.Goal}, p.Path())
	assert.Equal(t, 1.0, p.Value(p.GetPosition()))
}

func TestNewPlannerRejectsBadNodes(t *testing.T) {
	m, err := da.ParseGridMap([]string{"S-G"})
	require.NoError(t, err)
	r, err := robot.NewGridRobot(m.Grid, m.Start)
	require.NoError(t, err)

	_, err = NewPlanner(pkg.DSTAR_LITE, r, 7, nil, nil)
	assert.ErrorIs(t, err, da.ErrNodeOutOfRange)
}
