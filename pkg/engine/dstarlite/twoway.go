package dstarlite

import (
	"fmt"
	"sort"

	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
)

// TwoWay runs two engines: forward toward the goal and reverse toward the start over the
// reversed graph. g(u) + rg(u) is the cost of the best start-goal route through u, so the nodes
// where it equals the start-goal cost form the optimal corridor.
type TwoWay struct {
	start   da.Index
	forward *Engine
	reverse *Engine
}

func NewTwoWay(graph da.Graph, start, goal da.Index) (*TwoWay, error) {
	forward, err := NewEngine(graph, goal)
	if err != nil {
		return nil, err
	}
	reverse, err := NewEngine(da.Reversed(graph), start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	return &TwoWay{start: start, forward: forward, reverse: reverse}, nil
}

func (t *TwoWay) GetStart() da.Index {
	return t.start
}

func (t *TwoWay) GetGoal() da.Index {
	return t.forward.GetGoal()
}

func (t *TwoWay) Forward() *Engine {
	return t.forward
}

func (t *TwoWay) Reverse() *Engine {
	return t.reverse
}

func (t *TwoWay) Value(u da.Index) float64 {
	return t.forward.Value(u)
}

// IsOpen reports whether u is inconsistent in either direction.
func (t *TwoWay) IsOpen(u da.Index) bool {
	return t.forward.IsOpen(u) || t.reverse.IsOpen(u)
}

func (t *TwoWay) Reset() {
	t.forward.Reset()
	t.reverse.Reset()
}

// Restart moves the start of the reverse search to start and resets both engines.
func (t *TwoWay) Restart(start da.Index) {
	if err := t.reverse.SetGoal(start); err == nil {
		t.start = start
	}
	t.forward.Reset()
}

func (t *TwoWay) SetGoal(goal da.Index) error {
	if err := t.forward.SetGoal(goal); err != nil {
		return err
	}
	t.reverse.Reset()
	return nil
}

func (t *TwoWay) GetNext(u da.Index) da.Index {
	return t.forward.GetNext(u)
}

func (t *TwoWay) UpdateNode(u da.Index) {
	t.forward.UpdateNode(u)
	t.reverse.UpdateNode(u)
}

// ExamineUpdates requeues the changed nodes in both engines. nodes whose incoming edges changed
// are the ones the reverse engine must look at, so callers pass both endpoints of every changed
// edge.
func (t *TwoWay) ExamineUpdates(nodes []da.Index) {
	t.forward.ExamineUpdates(nodes)
	t.reverse.ExamineUpdates(nodes)
}

// Replan makes the forward search consistent at curr, then the reverse search consistent at the
// goal. the result is the sum of both iteration counts.
func (t *TwoWay) Replan(curr da.Index) int {
	iterations := t.forward.Replan(curr)
	iterations += t.reverse.Replan(t.forward.GetGoal())
	return iterations
}

// Total cost of the best start-goal route known to the reverse search.
func (t *TwoWay) Total() float64 {
	return t.reverse.GetG(t.forward.GetGoal())
}

// OnOptimalCorridor reports whether u lies on some shortest start-goal route.
func (t *TwoWay) OnOptimalCorridor(u da.Index) bool {
	total := t.Total()
	if da.IsInf(total) {
		return false
	}
	return da.Eq(t.forward.GetG(u)+t.reverse.GetG(u), total)
}

func (t *TwoWay) DrainChanges() ([]da.Index, bool) {
	fwd, fullF := t.forward.DrainChanges()
	rev, fullR := t.reverse.DrainChanges()
	if fullF || fullR {
		return []da.Index{}, true
	}
	seen := make(map[da.Index]struct{}, len(fwd)+len(rev))
	out := make([]da.Index, 0, len(fwd)+len(rev))
	for _, list := range [][]da.Index{fwd, rev} {
		for _, u := range list {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, false
}
