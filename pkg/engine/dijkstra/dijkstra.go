package dijkstra

import (
	"fmt"

	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/lintang-b-s/navreplan/pkg/util"
)

type Stage uint8

const (
	NEW Stage = iota
	OPEN
	CLOSED
)

func (s Stage) String() string {
	switch s {
	case NEW:
		return "NEW"
	case OPEN:
		return "OPEN"
	case CLOSED:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

type VertexInfo struct {
	stage Stage
	dist  float64
	next  da.Index
}

func (v VertexInfo) GetStage() Stage {
	return v.stage
}

func (v VertexInfo) GetDist() float64 {
	return v.dist
}

func (v VertexInfo) GetNext() da.Index {
	return v.next
}

// Dijkstra batch planner. every Replan searches backward from the goal over predecessor edges
// from scratch and stops once the agent's node is closed.
type Dijkstra struct {
	graph da.Graph
	goal  da.Index
	info  []VertexInfo
	pq    *da.MinHeap[da.Index]

	numSettledNodes int
	fullUpdate      bool
}

func NewDijkstra(graph da.Graph, goal da.Index) (*Dijkstra, error) {
	n := graph.NumberOfVertices()
	if goal < 0 || int(goal) >= n {
		return nil, fmt.Errorf("%w: goal %d not in [0, %d)", da.ErrNodeOutOfRange, goal, n)
	}
	d := &Dijkstra{
		graph: graph,
		goal:  goal,
		info:  make([]VertexInfo, n),
		pq:    da.NewFourAryHeap[da.Index](),
	}
	d.pq.Preallocate(n)
	d.clear()
	return d, nil
}

func (d *Dijkstra) GetGoal() da.Index {
	return d.goal
}

func (d *Dijkstra) GetInfo(u da.Index) VertexInfo {
	return d.info[u]
}

func (d *Dijkstra) GetNumSettledNodes() int {
	return d.numSettledNodes
}

// Value tentative distance from u to the goal, +Inf for nodes the last search did not reach.
func (d *Dijkstra) Value(u da.Index) float64 {
	return d.info[u].dist
}

func (d *Dijkstra) IsOpen(u da.Index) bool {
	return d.info[u].stage == OPEN
}

// GetNext next hop of u recorded by the last search, NO_ROUTE if u was never reached.
func (d *Dijkstra) GetNext(u da.Index) da.Index {
	return d.info[u].next
}

// Reset drops every label, the next Replan recomputes them.
func (d *Dijkstra) Reset() {
	d.clear()
}

func (d *Dijkstra) Restart(start da.Index) {
	d.clear()
}

func (d *Dijkstra) SetGoal(goal da.Index) error {
	if goal < 0 || int(goal) >= len(d.info) {
		return fmt.Errorf("%w: goal %d not in [0, %d)", da.ErrNodeOutOfRange, goal, len(d.info))
	}
	d.goal = goal
	d.clear()
	return nil
}

// ExamineUpdates is a no-op, Replan always starts over.
func (d *Dijkstra) ExamineUpdates(nodes []da.Index) {}

func (d *Dijkstra) clear() {
	for i := range d.info {
		d.info[i] = VertexInfo{stage: NEW, dist: pkg.INF_WEIGHT, next: pkg.NO_ROUTE}
	}
	d.pq.Clear()
	d.fullUpdate = true
}

// Replan recomputes distances to the goal until curr is closed and returns the number of
// queue pops.
func (d *Dijkstra) Replan(curr da.Index) int {
	d.clear()
	d.info[d.goal] = VertexInfo{stage: OPEN, dist: 0, next: pkg.NO_ROUTE}
	d.pq.Push(d.goal, 0)

	pops := 0
	d.numSettledNodes = 0
	d.graph.View(func(g da.Graph) {
		for !d.pq.IsEmpty() {
			node, _ := d.pq.ExtractMin()
			pops++
			if d.settle(g, node.GetItem(), node.GetRank(), curr) {
				break
			}
		}
	})
	return pops
}

// settle closes u and relaxes its incoming edges. it reports whether u is the agent's node.
func (d *Dijkstra) settle(g da.Graph, u da.Index, prio float64, curr da.Index) bool {
	uInfo := d.info[u]
	if uInfo.stage != OPEN {
		util.AssertPanic(false, fmt.Sprintf("stage %v node %d found in priority queue", uInfo.stage, u))
	}
	if !da.Eq(prio, uInfo.dist) {
		util.AssertPanic(false,
			fmt.Sprintf("mismatch between priority queue (%v) and dist[%d] (%v)", prio, u, uInfo.dist))
	}

	d.info[u].stage = CLOSED
	d.numSettledNodes++
	if u == curr {
		return true
	}

	for _, arc := range g.Predecessors(u) {
		v := arc.GetNode()
		newDist := uInfo.dist + arc.GetWeight()
		switch d.info[v].stage {
		case NEW:
			d.info[v] = VertexInfo{stage: OPEN, dist: newDist, next: u}
			d.pq.Push(v, newDist)
		case OPEN:
			if da.Lt(newDist, d.info[v].dist) {
				d.info[v] = VertexInfo{stage: OPEN, dist: newDist, next: u}
				d.pq.Push(v, newDist)
			}
		}
	}
	return false
}

// DrainChanges every Replan rewrites all labels, so changes are always reported as full.
func (d *Dijkstra) DrainChanges() ([]da.Index, bool) {
	full := d.fullUpdate
	d.fullUpdate = false
	return []da.Index{}, full
}
