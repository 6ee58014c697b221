package dijkstra

import (
	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
)

// ShortestDistances returns the shortest path cost from every node to goal, +Inf for nodes that
// cannot reach it. it runs a full backward search on a snapshot of graph.
func ShortestDistances(graph da.Graph, goal da.Index) []float64 {
	var dist []float64
	graph.View(func(g da.Graph) {
		n := g.NumberOfVertices()
		dist = make([]float64, n)
		for i := range dist {
			dist[i] = pkg.INF_WEIGHT
		}
		if goal < 0 || int(goal) >= n {
			return
		}

		closed := make([]bool, n)
		pq := da.NewBinaryHeap[da.Index]()
		dist[goal] = 0
		pq.Push(goal, 0)
		for !pq.IsEmpty() {
			node, _ := pq.ExtractMin()
			u := node.GetItem()
			closed[u] = true
			for _, arc := range g.Predecessors(u) {
				v := arc.GetNode()
				if closed[v] {
					continue
				}
				if nd := dist[u] + arc.GetWeight(); nd < dist[v] {
					dist[v] = nd
					pq.Push(v, nd)
				}
			}
		}
	})
	return dist
}
