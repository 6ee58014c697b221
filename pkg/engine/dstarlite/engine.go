package dstarlite

import (
	"fmt"
	"math"
	"sort"

	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
)

type nodeState struct {
	g   float64
	rhs float64
}

// minGRhs priority of the node in the open set.
func (s nodeState) minGRhs() float64 {
	return math.Min(s.g, s.rhs)
}

func (s nodeState) consistent() bool {
	return da.Eq(s.g, s.rhs)
}

// Engine incremental cost-to-goal search over a graph whose edges may change between replans.
//
// g(u) is the current cost estimate from u to the goal and rhs(u) the one-step lookahead
// min over successors v of w(u, v) + g(v). nodes with g != rhs are kept in the open set keyed by
// min(g, rhs). after Replan(curr) returns, g(curr) == rhs(curr) and equals the shortest path cost
// from curr to the goal in the current graph.
type Engine struct {
	graph da.Graph
	goal  da.Index
	nodes []nodeState
	pq    *da.MinHeap[da.Index]

	// nodes whose g or rhs changed since the last DrainChanges.
	touched     []bool
	touchedList []da.Index
	fullUpdate  bool
}

func NewEngine(graph da.Graph, goal da.Index) (*Engine, error) {
	n := graph.NumberOfVertices()
	if goal < 0 || int(goal) >= n {
		return nil, fmt.Errorf("%w: goal %d not in [0, %d)", da.ErrNodeOutOfRange, goal, n)
	}
	e := &Engine{
		graph:   graph,
		goal:    goal,
		nodes:   make([]nodeState, n),
		pq:      da.NewFourAryHeap[da.Index](),
		touched: make([]bool, n),
	}
	e.pq.Preallocate(n)
	e.Reset()
	return e, nil
}

func (e *Engine) GetGoal() da.Index {
	return e.goal
}

func (e *Engine) GetGraph() da.Graph {
	return e.graph
}

func (e *Engine) GetG(u da.Index) float64 {
	return e.nodes[u].g
}

func (e *Engine) GetRhs(u da.Index) float64 {
	return e.nodes[u].rhs
}

// Value cost-to-goal estimate of u.
func (e *Engine) Value(u da.Index) float64 {
	return e.nodes[u].g
}

// IsOpen reports whether u is locally inconsistent. two infinite values are consistent.
func (e *Engine) IsOpen(u da.Index) bool {
	return !e.nodes[u].consistent()
}

func (e *Engine) QueueSize() int {
	return e.pq.Size()
}

// Reset forgets every estimate: g and rhs become +Inf everywhere, rhs(goal) = 0 and the goal is
// the only queued node.
func (e *Engine) Reset() {
	e.pq.Clear()
	for i := range e.nodes {
		e.nodes[i] = nodeState{g: pkg.INF_WEIGHT, rhs: pkg.INF_WEIGHT}
	}
	e.markFull()
	e.setRhs(e.goal, 0)
	e.pq.Push(e.goal, e.nodes[e.goal].minGRhs())
}

// Restart resets the engine, the agent position plays no role in a one-way search.
func (e *Engine) Restart(start da.Index) {
	e.Reset()
}

// SetGoal retargets the engine and resets it.
func (e *Engine) SetGoal(goal da.Index) error {
	if goal < 0 || int(goal) >= len(e.nodes) {
		return fmt.Errorf("%w: goal %d not in [0, %d)", da.ErrNodeOutOfRange, goal, len(e.nodes))
	}
	e.goal = goal
	e.Reset()
	return nil
}

// BestSuccessor returns the successor v of u minimizing w(u, v) + g(v) and that cost, or
// (NO_ROUTE, +Inf) when no successor has a finite cost. ties go to the lowest id.
func (e *Engine) BestSuccessor(u da.Index) (da.Index, float64) {
	best := da.Index(pkg.NO_ROUTE)
	minCost := pkg.INF_WEIGHT
	for _, arc := range e.graph.Successors(u) {
		cost := arc.GetWeight() + e.nodes[arc.GetNode()].g
		if da.Lt(cost, minCost) {
			minCost = cost
			best = arc.GetNode()
		}
	}
	return best, minCost
}

// GetNext returns the next hop from u toward the goal, NO_ROUTE when g(u) is infinite.
func (e *Engine) GetNext(u da.Index) da.Index {
	if da.IsInf(e.nodes[u].g) {
		return pkg.NO_ROUTE
	}
	next, _ := e.BestSuccessor(u)
	return next
}

// UpdateNode recomputes rhs(u) from the successors of u and requeues u. the goal keeps rhs 0.
func (e *Engine) UpdateNode(u da.Index) {
	if u == e.goal {
		return
	}
	_, cost := e.BestSuccessor(u)
	e.setRhs(u, cost)
	e.pq.Push(u, e.nodes[u].minGRhs())
}

// ExamineUpdates requeues every node whose outgoing edges changed.
func (e *Engine) ExamineUpdates(nodes []da.Index) {
	for _, u := range nodes {
		if u < 0 || int(u) >= len(e.nodes) {
			continue
		}
		e.UpdateNode(u)
	}
}

// ReplanIteration does one step of replanning for an agent at curr and reports whether there
// was work to do.
func (e *Engine) ReplanIteration(curr da.Index) bool {
	top, err := e.pq.GetMin()
	if err != nil {
		return false
	}
	u := top.GetItem()
	prio := top.GetRank()
	su := e.nodes[u]

	if su.consistent() {
		// stale entry
		e.pq.ExtractMin()
		return true
	}

	sc := e.nodes[curr]
	if da.Ge(prio, sc.minGRhs()) && sc.consistent() {
		return false
	}

	e.pq.ExtractMin()
	if da.Gt(su.g, su.rhs) {
		e.setG(u, su.rhs)
	} else {
		e.setG(u, pkg.INF_WEIGHT)
		e.UpdateNode(u)
	}

	for _, arc := range e.graph.Predecessors(u) {
		e.UpdateNode(arc.GetNode())
	}
	return true
}

// Replan runs ReplanIteration until it reports no work and returns the number of iterations.
func (e *Engine) Replan(curr da.Index) int {
	iterations := 0
	for e.ReplanIteration(curr) {
		iterations++
	}
	return iterations
}

// DrainChanges returns the nodes whose g or rhs changed since the previous call, sorted by id,
// and whether a full reset happened in between.
func (e *Engine) DrainChanges() ([]da.Index, bool) {
	out := e.touchedList
	full := e.fullUpdate
	for _, u := range out {
		e.touched[u] = false
	}
	e.touchedList = make([]da.Index, 0)
	e.fullUpdate = false
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, full
}

// Inspect returns g and rhs of u together with its queued priority, if any.
func (e *Engine) Inspect(u da.Index) NodeInfo {
	s := e.nodes[u]
	prio, queued := e.pq.GetRank(u)
	return NodeInfo{G: s.g, Rhs: s.rhs, Priority: prio, Queued: queued}
}

type NodeInfo struct {
	G        float64
	Rhs      float64
	Priority float64
	Queued   bool
}

func (e *Engine) setG(u da.Index, g float64) {
	e.nodes[u].g = g
	e.touch(u)
}

func (e *Engine) setRhs(u da.Index, rhs float64) {
	e.nodes[u].rhs = rhs
	e.touch(u)
}

func (e *Engine) touch(u da.Index) {
	if e.fullUpdate || e.touched[u] {
		return
	}
	e.touched[u] = true
	e.touchedList = append(e.touchedList, u)
}

func (e *Engine) markFull() {
	for _, u := range e.touchedList {
		e.touched[u] = false
	}
	e.touchedList = make([]da.Index, 0)
	e.fullUpdate = true
}
