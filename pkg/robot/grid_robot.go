package robot

import (
	"sort"

	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
)

// GridRobot keeps its belief as a grid and senses the (2*radius+1)^2 box around itself.
type GridRobot struct {
	position da.Index
	remote   *da.GridGraph
	local    *da.GridGraph
}

func NewGridRobot(remote *da.GridGraph, position da.Index) (*GridRobot, error) {
	if err := checkPosition(position, remote.NumberOfVertices()); err != nil {
		return nil, err
	}
	return &GridRobot{
		position: position,
		remote:   remote,
		local:    remote.Clone(),
	}, nil
}

func (r *GridRobot) GetPosition() da.Index {
	return r.position
}

func (r *GridRobot) MoveTo(v da.Index) da.Index {
	r.position = v
	return r.position
}

func (r *GridRobot) GetGraph() da.Graph {
	return r.local
}

func (r *GridRobot) GetLocal() *da.GridGraph {
	return r.local
}

func (r *GridRobot) GetRemote() *da.GridGraph {
	return r.remote
}

func (r *GridRobot) Reset(position da.Index) error {
	if err := checkPosition(position, r.remote.NumberOfVertices()); err != nil {
		return err
	}
	if err := r.local.CopyFrom(r.remote); err != nil {
		return err
	}
	r.position = position
	return nil
}

// Sense copies the changed cells of the box into the local grid. a cell change alters every edge
// touching the cell, so the result holds the 3x3 neighbourhood of each changed cell.
func (r *GridRobot) Sense(radius int) (SenseResult, error) {
	if radius < 0 {
		return SenseResult{}, ErrNegativeRadius
	}
	changed, err := r.remote.DiffInto(r.local, r.position, radius)
	if err != nil {
		return SenseResult{}, err
	}

	seen := make(map[da.Index]struct{}, 9*len(changed))
	nodes := make([]da.Index, 0, 9*len(changed))
	for _, u := range changed {
		for _, v := range r.local.ChebyshevBox(u, 1) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			nodes = append(nodes, v)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return SenseResult{Nodes: nodes}, nil
}
