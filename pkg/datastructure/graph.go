package datastructure

import (
	"errors"
	"fmt"
	"math"

	"github.com/lintang-b-s/navreplan/pkg"
)

type Index int

const (
	INVALID_VERTEX_ID Index = pkg.NO_ROUTE
)

var (
	ErrNodeOutOfRange = errors.New("node id out of range")
	ErrNegativeWeight = errors.New("edge weight must be non-negative")
)

// Graph is the read capability shared by every graph representation.
//
// Successors and Predecessors return copies sorted by node id ascending, so callers may keep them
// across later mutations. GetWeight returns +Inf when there is no edge from u to v.
type Graph interface {
	NumberOfVertices() int
	Successors(u Index) []Arc
	Predecessors(u Index) []Arc
	HasEdge(u, v Index) bool
	GetWeight(u, v Index) float64

	// View runs fn while the graph is read-locked. fn must only use the Graph it receives,
	// calling back into the locked graph from fn deadlocks on a pending writer.
	View(fn func(g Graph))
}

// Arc is one end of an edge as seen from the other end: the head of an outgoing edge or the
// tail of an incoming edge.
type Arc struct {
	node   Index
	weight float64
}

func NewArc(node Index, weight float64) Arc {
	return Arc{node: node, weight: weight}
}

func (a Arc) GetNode() Index {
	return a.node
}

func (a Arc) GetWeight() float64 {
	return a.weight
}

// Edge is a directed weighted edge from -> to.
type Edge struct {
	from, to Index
	weight   float64
}

func NewEdge(from, to Index, weight float64) Edge {
	return Edge{from: from, to: to, weight: weight}
}

func (e Edge) GetFrom() Index {
	return e.from
}

func (e Edge) GetTo() Index {
	return e.to
}

func (e Edge) GetWeight() float64 {
	return e.weight
}

func (e Edge) Reverse() Edge {
	return Edge{from: e.to, to: e.from, weight: e.weight}
}

func (e Edge) String() string {
	return fmt.Sprintf("(%d, %d, %g)", e.from, e.to, e.weight)
}

// EdgeLess orders edges by (from, to).
func EdgeLess(a, b Edge) bool {
	if a.from != b.from {
		return a.from < b.from
	}
	return a.to < b.to
}

// ReversedGraph swaps successors and predecessors of the wrapped graph.
type ReversedGraph struct {
	g Graph
}

func Reversed(g Graph) *ReversedGraph {
	return &ReversedGraph{g: g}
}

func (r *ReversedGraph) NumberOfVertices() int {
	return r.g.NumberOfVertices()
}

func (r *ReversedGraph) Successors(u Index) []Arc {
	return r.g.Predecessors(u)
}

func (r *ReversedGraph) Predecessors(u Index) []Arc {
	return r.g.Successors(u)
}

func (r *ReversedGraph) HasEdge(u, v Index) bool {
	return r.g.HasEdge(v, u)
}

func (r *ReversedGraph) GetWeight(u, v Index) float64 {
	return r.g.GetWeight(v, u)
}

func (r *ReversedGraph) View(fn func(g Graph)) {
	r.g.View(func(inner Graph) {
		fn(Reversed(inner))
	})
}

// Neighbors returns the sorted union of successor and predecessor ids of u.
func Neighbors(g Graph, u Index) []Index {
	succs := g.Successors(u)
	preds := g.Predecessors(u)
	out := make([]Index, 0, len(succs)+len(preds))
	i, j := 0, 0
	for i < len(succs) || j < len(preds) {
		switch {
		case j >= len(preds) || (i < len(succs) && succs[i].node < preds[j].node):
			out = append(out, succs[i].node)
			i++
		case i >= len(succs) || preds[j].node < succs[i].node:
			out = append(out, preds[j].node)
			j++
		default:
			out = append(out, succs[i].node)
			i++
			j++
		}
	}
	return out
}

// ToAdjacencyGraph snapshots any graph into explicit predecessor/successor maps.
func ToAdjacencyGraph(g Graph) *AdjacencyGraph {
	var out *AdjacencyGraph
	g.View(func(view Graph) {
		n := view.NumberOfVertices()
		out = NewAdjacencyGraph(n)
		for u := Index(0); u < Index(n); u++ {
			for _, arc := range view.Successors(u) {
				out.succs[u][arc.node] = arc.weight
				out.preds[arc.node][u] = arc.weight
			}
		}
	})
	return out
}

func validWeight(w float64) error {
	if w < 0 || math.IsNaN(w) {
		return fmt.Errorf("%w: %v", ErrNegativeWeight, w)
	}
	return nil
}

func checkRange(u Index, n int) error {
	if u < 0 || int(u) >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrNodeOutOfRange, u, n)
	}
	return nil
}
