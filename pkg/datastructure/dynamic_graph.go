package datastructure

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lintang-b-s/navreplan/pkg"
)

// AdjacencyGraph directed graph stored as predecessor and successor maps.
// succs[u][v] == w <=> preds[v][u] == w, both maps change under the same lock.
type AdjacencyGraph struct {
	mu    sync.RWMutex
	succs []map[Index]float64
	preds []map[Index]float64
}

func NewAdjacencyGraph(n int) *AdjacencyGraph {
	g := &AdjacencyGraph{
		succs: make([]map[Index]float64, n),
		preds: make([]map[Index]float64, n),
	}
	for i := 0; i < n; i++ {
		g.succs[i] = make(map[Index]float64)
		g.preds[i] = make(map[Index]float64)
	}
	return g
}

// NewAdjacencyGraphFromEdges builds a graph on n vertices. with symmetric, the reverse of every
// edge is added too.
func NewAdjacencyGraphFromEdges(n int, edges []Edge, symmetric bool) (*AdjacencyGraph, error) {
	g := NewAdjacencyGraph(n)
	for _, e := range edges {
		if err := g.update(e.from, e.to, e.weight, symmetric); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *AdjacencyGraph) NumberOfVertices() int {
	return len(g.succs)
}

func (g *AdjacencyGraph) Successors(u Index) []Arc {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.successors(u)
}

func (g *AdjacencyGraph) Predecessors(u Index) []Arc {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.predecessors(u)
}

func (g *AdjacencyGraph) HasEdge(u, v Index) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hasEdge(u, v)
}

// GetWeight returns +Inf for non-adjacent or out of range nodes.
func (g *AdjacencyGraph) GetWeight(u, v Index) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.getWeight(u, v)
}

func (g *AdjacencyGraph) View(fn func(Graph)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(adjacencyView{g: g})
}

// Update sets the weight of edge u -> v, adding the edge if missing.
func (g *AdjacencyGraph) Update(u, v Index, w float64) error {
	return g.update(u, v, w, false)
}

// UpdateSymmetric sets the weight of both u -> v and v -> u.
func (g *AdjacencyGraph) UpdateSymmetric(u, v Index, w float64) error {
	return g.update(u, v, w, true)
}

func (g *AdjacencyGraph) update(u, v Index, w float64, symmetric bool) error {
	n := g.NumberOfVertices()
	if err := checkRange(u, n); err != nil {
		return err
	}
	if err := checkRange(v, n); err != nil {
		return err
	}
	if err := validWeight(w); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.succs[u][v] = w
	g.preds[v][u] = w
	if symmetric {
		g.succs[v][u] = w
		g.preds[u][v] = w
	}
	return nil
}

// BreakEdge removes edge u -> v, missing edges are ignored.
func (g *AdjacencyGraph) BreakEdge(u, v Index) {
	n := g.NumberOfVertices()
	if checkRange(u, n) != nil || checkRange(v, n) != nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.succs[u], v)
	delete(g.preds[v], u)
}

// BreakEdgeSymmetric removes both u -> v and v -> u.
func (g *AdjacencyGraph) BreakEdgeSymmetric(u, v Index) {
	g.BreakEdge(u, v)
	g.BreakEdge(v, u)
}

// Clone returns a deep copy.
func (g *AdjacencyGraph) Clone() *AdjacencyGraph {
	return ToAdjacencyGraph(g)
}

// CopyFrom replaces every edge with the edges of other, which must have the same size.
func (g *AdjacencyGraph) CopyFrom(other Graph) error {
	snapshot := ToAdjacencyGraph(other)
	if snapshot.NumberOfVertices() != g.NumberOfVertices() {
		return fmt.Errorf("%w: %d vs %d vertices", ErrShapeMismatch, g.NumberOfVertices(), snapshot.NumberOfVertices())
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.succs = snapshot.succs
	g.preds = snapshot.preds
	return nil
}

// Edges returns every edge sorted by (from, to).
func (g *AdjacencyGraph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	edges := make([]Edge, 0)
	for u := range g.succs {
		for _, arc := range g.successors(Index(u)) {
			edges = append(edges, NewEdge(Index(u), arc.node, arc.weight))
		}
	}
	return edges
}

func (g *AdjacencyGraph) NumberOfEdges() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m := 0
	for _, s := range g.succs {
		m += len(s)
	}
	return m
}

func (g *AdjacencyGraph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "AdjacencyGraph(%d, [", g.NumberOfVertices())
	for i, e := range g.Edges() {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteString("])")
	return sb.String()
}

func (g *AdjacencyGraph) successors(u Index) []Arc {
	if checkRange(u, len(g.succs)) != nil {
		return []Arc{}
	}
	return sortedArcs(g.succs[u])
}

func (g *AdjacencyGraph) predecessors(u Index) []Arc {
	if checkRange(u, len(g.preds)) != nil {
		return []Arc{}
	}
	return sortedArcs(g.preds[u])
}

func (g *AdjacencyGraph) hasEdge(u, v Index) bool {
	if checkRange(u, len(g.succs)) != nil {
		return false
	}
	_, ok := g.succs[u][v]
	return ok
}

func (g *AdjacencyGraph) getWeight(u, v Index) float64 {
	if checkRange(u, len(g.succs)) != nil {
		return pkg.INF_WEIGHT
	}
	w, ok := g.succs[u][v]
	if !ok {
		return pkg.INF_WEIGHT
	}
	return w
}

func sortedArcs(m map[Index]float64) []Arc {
	arcs := make([]Arc, 0, len(m))
	for v, w := range m {
		arcs = append(arcs, NewArc(v, w))
	}
	sort.Slice(arcs, func(i, j int) bool {
		return arcs[i].node < arcs[j].node
	})
	return arcs
}

// adjacencyView reads an already locked AdjacencyGraph.
type adjacencyView struct {
	g *AdjacencyGraph
}

func (v adjacencyView) NumberOfVertices() int        { return v.g.NumberOfVertices() }
func (v adjacencyView) Successors(u Index) []Arc     { return v.g.successors(u) }
func (v adjacencyView) Predecessors(u Index) []Arc   { return v.g.predecessors(u) }
func (v adjacencyView) HasEdge(u, w Index) bool      { return v.g.hasEdge(u, w) }
func (v adjacencyView) GetWeight(u, w Index) float64 { return v.g.getWeight(u, w) }
func (v adjacencyView) View(fn func(Graph))          { fn(v) }
