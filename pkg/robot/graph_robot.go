package robot

import (
	"sort"

	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
)

// GraphRobot keeps its belief as an adjacency graph and senses nodes within a hop radius.
type GraphRobot struct {
	position da.Index
	remote   da.Graph
	local    *da.AdjacencyGraph
}

// NewGraphRobot snapshots remote into the local graph. remote may be any graph, including a grid.
func NewGraphRobot(remote da.Graph, position da.Index) (*GraphRobot, error) {
	if err := checkPosition(position, remote.NumberOfVertices()); err != nil {
		return nil, err
	}
	return &GraphRobot{
		position: position,
		remote:   remote,
		local:    da.ToAdjacencyGraph(remote),
	}, nil
}

func (r *GraphRobot) GetPosition() da.Index {
	return r.position
}

func (r *GraphRobot) MoveTo(v da.Index) da.Index {
	r.position = v
	return r.position
}

func (r *GraphRobot) GetGraph() da.Graph {
	return r.local
}

func (r *GraphRobot) GetLocal() *da.AdjacencyGraph {
	return r.local
}

func (r *GraphRobot) GetRemote() da.Graph {
	return r.remote
}

func (r *GraphRobot) Reset(position da.Index) error {
	if err := checkPosition(position, r.remote.NumberOfVertices()); err != nil {
		return err
	}
	if err := r.local.CopyFrom(r.remote); err != nil {
		return err
	}
	r.position = position
	return nil
}

// Sense diffs the edges touching every node within radius hops of the robot. the remote graph
// stays read-locked for the whole diff-and-copy pass.
func (r *GraphRobot) Sense(radius int) (SenseResult, error) {
	if radius < 0 {
		return SenseResult{}, ErrNegativeRadius
	}
	var (
		statuses []EdgeStatus
		err      error
	)
	r.remote.View(func(remote da.Graph) {
		nearby := NearbyNodes(remote, r.position, radius)
		localEdges := incidentEdges(r.local, nearby)
		remoteEdges := incidentEdges(remote, nearby)
		statuses = diffEdges(localEdges, remoteEdges)
		err = r.apply(statuses)
	})
	if err != nil {
		return SenseResult{}, err
	}
	return SenseResult{Nodes: endpoints(statuses), Edges: statuses}, nil
}

func (r *GraphRobot) apply(statuses []EdgeStatus) error {
	for _, s := range statuses {
		if s.WRemote == nil {
			r.local.BreakEdge(s.From, s.To)
			continue
		}
		if err := r.local.Update(s.From, s.To, *s.WRemote); err != nil {
			return err
		}
	}
	return nil
}

// NearbyNodes returns the nodes at most radius hops from center, following edges in either
// direction, sorted by id.
func NearbyNodes(g da.Graph, center da.Index, radius int) []da.Index {
	hops := map[da.Index]int{center: 0}
	queue := []da.Index{center}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if hops[u] == radius {
			continue
		}
		for _, v := range da.Neighbors(g, u) {
			if _, seen := hops[v]; seen {
				continue
			}
			hops[v] = hops[u] + 1
			queue = append(queue, v)
		}
	}

	out := make([]da.Index, 0, len(hops))
	for u := range hops {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// incidentEdges collects every edge with an endpoint in nodes, sorted by (from, to).
func incidentEdges(g da.Graph, nodes []da.Index) []da.Edge {
	seen := make(map[[2]da.Index]struct{})
	edges := make([]da.Edge, 0)
	add := func(from, to da.Index, w float64) {
		key := [2]da.Index{from, to}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		edges = append(edges, da.NewEdge(from, to, w))
	}
	for _, u := range nodes {
		for _, arc := range g.Successors(u) {
			add(u, arc.GetNode(), arc.GetWeight())
		}
		for _, arc := range g.Predecessors(u) {
			add(arc.GetNode(), u, arc.GetWeight())
		}
	}
	sort.Slice(edges, func(i, j int) bool { return da.EdgeLess(edges[i], edges[j]) })
	return edges
}

// diffEdges merge-joins two edge lists sorted by (from, to) and classifies each difference as
// removed, added or reweighted.
func diffEdges(local, remote []da.Edge) []EdgeStatus {
	out := make([]EdgeStatus, 0)
	i, j := 0, 0
	for i < len(local) || j < len(remote) {
		switch {
		case j >= len(remote) || (i < len(local) && da.EdgeLess(local[i], remote[j])):
			wl := local[i].GetWeight()
			out = append(out, EdgeStatus{From: local[i].GetFrom(), To: local[i].GetTo(), WLocal: &wl})
			i++
		case i >= len(local) || da.EdgeLess(remote[j], local[i]):
			wr := remote[j].GetWeight()
			out = append(out, EdgeStatus{From: remote[j].GetFrom(), To: remote[j].GetTo(), WRemote: &wr})
			j++
		default:
			wl, wr := local[i].GetWeight(), remote[j].GetWeight()
			if !da.Eq(wl, wr) {
				out = append(out, EdgeStatus{From: local[i].GetFrom(), To: local[i].GetTo(), WLocal: &wl, WRemote: &wr})
			}
			i++
			j++
		}
	}
	return out
}

func endpoints(statuses []EdgeStatus) []da.Index {
	seen := make(map[da.Index]struct{}, 2*len(statuses))
	out := make([]da.Index, 0, 2*len(statuses))
	for _, s := range statuses {
		for _, u := range []da.Index{s.From, s.To} {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
