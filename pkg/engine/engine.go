package engine

import (
	"fmt"

	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/lintang-b-s/navreplan/pkg/engine/dijkstra"
	"github.com/lintang-b-s/navreplan/pkg/engine/dstarlite"
)

// PathEngine cost-to-goal search driven by the planner loop.
type PathEngine interface {
	GetGoal() da.Index
	SetGoal(goal da.Index) error

	// Restart discards all state, start is the agent position.
	Restart(start da.Index)

	// ExamineUpdates tells the engine which nodes had incident edges changed.
	ExamineUpdates(nodes []da.Index)

	// Replan makes the engine consistent for an agent at curr and returns the iteration count.
	Replan(curr da.Index) int

	GetNext(u da.Index) da.Index
	Value(u da.Index) float64
	IsOpen(u da.Index) bool

	// DrainChanges returns the nodes whose values changed since the previous call, or true when
	// every node may have changed.
	DrainChanges() ([]da.Index, bool)
}

var (
	_ PathEngine = (*dstarlite.Engine)(nil)
	_ PathEngine = (*dstarlite.TwoWay)(nil)
	_ PathEngine = (*dijkstra.Dijkstra)(nil)
)

// NewPathEngine builds the engine of the given kind over graph. no search has run yet, the first
// Replan does the full pass.
func NewPathEngine(kind pkg.PlannerKind, graph da.Graph, start, goal da.Index) (PathEngine, error) {
	n := graph.NumberOfVertices()
	if start < 0 || int(start) >= n {
		return nil, fmt.Errorf("%w: start %d not in [0, %d)", da.ErrNodeOutOfRange, start, n)
	}

	var (
		e   PathEngine
		err error
	)
	switch kind {
	case pkg.DSTAR_LITE:
		e, err = dstarlite.NewEngine(graph, goal)
	case pkg.TWO_WAY_DSTAR_LITE:
		e, err = dstarlite.NewTwoWay(graph, start, goal)
	case pkg.DIJKSTRA:
		e, err = dijkstra.NewDijkstra(graph, goal)
	default:
		return nil, fmt.Errorf("unknown planner kind %d", kind)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FollowPath walks next hops from u until goal. the path is empty when u has no route or the
// next hops do not reach goal within limit steps.
func FollowPath(e PathEngine, u da.Index, limit int) []da.Index {
	goal := e.GetGoal()
	path := make([]da.Index, 0)
	for u != goal {
		if len(path) > limit {
			return make([]da.Index, 0)
		}
		path = append(path, u)
		u = e.GetNext(u)
		if u == pkg.NO_ROUTE {
			return make([]da.Index, 0)
		}
	}
	return append(path, goal)
}
