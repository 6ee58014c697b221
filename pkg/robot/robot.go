package robot

import (
	"errors"
	"fmt"

	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
)

var (
	ErrNegativeRadius = errors.New("robot: sensor radius must be non-negative")
	ErrBadPosition    = errors.New("robot: position out of range")
)

// Robot holds an agent position and its belief of the world (the local graph), which it refreshes
// from the ground truth (the remote graph) by sensing.
type Robot interface {
	GetPosition() da.Index

	// MoveTo sets the position unconditionally and returns the position reached.
	MoveTo(v da.Index) da.Index

	// GetGraph returns the local graph. it stays the same object for the robot's lifetime.
	GetGraph() da.Graph

	// Sense copies every difference between the remote and local graph near the robot into the
	// local graph and returns what changed.
	Sense(radius int) (SenseResult, error)

	// Reset overwrites the local graph with the remote graph and moves to position.
	Reset(position da.Index) error
}

// EdgeStatus is one sensed edge difference. a nil weight means the edge does not exist on that
// side.
type EdgeStatus struct {
	From    da.Index
	To      da.Index
	WLocal  *float64
	WRemote *float64
}

func (e EdgeStatus) IsRemoved() bool {
	return e.WLocal != nil && e.WRemote == nil
}

func (e EdgeStatus) IsAdded() bool {
	return e.WLocal == nil && e.WRemote != nil
}

func (e EdgeStatus) String() string {
	return fmt.Sprintf("(%d, %d, %s, %s)", e.From, e.To, weightString(e.WLocal), weightString(e.WRemote))
}

func weightString(w *float64) string {
	if w == nil {
		return "null"
	}
	return fmt.Sprintf("%g", *w)
}

// SenseResult nodes whose incident edges changed, sorted by id. Edges is filled only by robots
// that diff edge lists.
type SenseResult struct {
	Nodes []da.Index
	Edges []EdgeStatus
}

func (s SenseResult) Changed() bool {
	return len(s.Nodes) > 0
}

func checkPosition(position da.Index, n int) error {
	if position < 0 || int(position) >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrBadPosition, position, n)
	}
	return nil
}
