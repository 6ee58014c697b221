package visual

import (
	"errors"
	"strings"

	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/lintang-b-s/navreplan/pkg/engine/dijkstra"
	"github.com/lintang-b-s/navreplan/pkg/engine/dstarlite"
	"github.com/lintang-b-s/navreplan/pkg/planner"
)

var ErrNotGrid = errors.New("visual: planner graph is not a grid")

type CellClass string

const (
	OBSTACLE         CellClass = "obstacle"
	OBSTACLE_OPEN    CellClass = "obstacle-open"
	OBSTACLE_ON_PATH CellClass = "obstacle-on-path"
	ENDPOINT         CellClass = "endpoint"
	ARRIVED          CellClass = "arrived"
	ON_PATH          CellClass = "on-path"
	ON_PATH_OPEN     CellClass = "on-path-open"
	ON_PATH_NO_ROUTE CellClass = "on-path-no-route"
	OPEN             CellClass = "open"
	OPEN_REVERSE     CellClass = "open-reverse"
	OPEN_BOTH        CellClass = "open-both"
	NO_ROUTE         CellClass = "no-route"
	CORRIDOR         CellClass = "corridor"
	FREE             CellClass = "free"
)

// CellView what a grid renderer needs for one cell. the arrow points at the next hop, (0, 0) when
// there is none. infinite values are left nil.
type CellView struct {
	Node   da.Index  `json:"node"`
	Row    int       `json:"row"`
	Col    int       `json:"col"`
	Class  CellClass `json:"class"`
	ArrowX int       `json:"arrow_x"`
	ArrowY int       `json:"arrow_y"`

	G          *float64 `json:"g,omitempty"`
	Rhs        *float64 `json:"rhs,omitempty"`
	ReverseG   *float64 `json:"reverse_g,omitempty"`
	ReverseRhs *float64 `json:"reverse_rhs,omitempty"`
	Total      *float64 `json:"total,omitempty"`
	Dist       *float64 `json:"dist,omitempty"`
	Stage      string   `json:"stage,omitempty"`
}

// Cells describes every cell of the planner's grid belief, row major.
func Cells(p *planner.Planner) ([]CellView, error) {
	grid, ok := p.GetRobot().GetGraph().(*da.GridGraph)
	if !ok {
		return nil, ErrNotGrid
	}

	onPath := make(map[da.Index]struct{})
	for _, u := range p.Path() {
		onPath[u] = struct{}{}
	}

	cells := make([]CellView, grid.NumberOfVertices())
	for i := range cells {
		u := da.Index(i)
		_, path := onPath[u]
		cells[i] = cellView(p, grid, u, path)
	}
	return cells, nil
}

func cellView(p *planner.Planner, grid *da.GridGraph, u da.Index, onPath bool) CellView {
	row, col := grid.Coordinate(u)
	view := CellView{Node: u, Row: row, Col: col}

	// the goal has no outgoing arrow.
	next := p.GetNext(u)
	if next != pkg.NO_ROUTE && u != p.GetGoal() {
		nrow, ncol := grid.Coordinate(next)
		view.ArrowX, view.ArrowY = ncol-col, nrow-row
	}

	var open, reverseOpen, corridor bool
	switch e := p.GetEngine().(type) {
	case *dstarlite.Engine:
		open = e.IsOpen(u)
		view.G, view.Rhs = finite(e.GetG(u)), finite(e.GetRhs(u))
	case *dstarlite.TwoWay:
		f, r := e.Forward(), e.Reverse()
		open, reverseOpen = f.IsOpen(u), r.IsOpen(u)
		corridor = e.OnOptimalCorridor(u)
		view.G, view.Rhs = finite(f.GetG(u)), finite(f.GetRhs(u))
		view.ReverseG, view.ReverseRhs = finite(r.GetG(u)), finite(r.GetRhs(u))
		view.Total = finite(f.GetG(u) + r.GetG(u))
	case *dijkstra.Dijkstra:
		info := e.GetInfo(u)
		open = info.GetStage() == dijkstra.OPEN
		view.Dist = finite(info.GetDist())
		view.Stage = info.GetStage().String()
	}

	view.Class = classify(grid.GetCell(u).GetType(), classInput{
		onPath:      onPath,
		open:        open,
		reverseOpen: reverseOpen,
		corridor:    corridor,
		noRoute:     next == pkg.NO_ROUTE,
		current:     u == p.GetPosition(),
		goal:        u == p.GetGoal(),
	})
	return view
}

type classInput struct {
	onPath, open, reverseOpen, corridor, noRoute, current, goal bool
}

func classify(cellType da.CellType, in classInput) CellClass {
	if cellType == da.OBSTACLE {
		switch {
		case in.onPath:
			return OBSTACLE_ON_PATH
		case in.open:
			return OBSTACLE_OPEN
		default:
			return OBSTACLE
		}
	}

	switch {
	case in.current && in.goal:
		return ARRIVED
	case in.current || in.goal:
		return ENDPOINT
	case in.onPath && (in.open || in.reverseOpen):
		return ON_PATH_OPEN
	case in.onPath && in.noRoute:
		return ON_PATH_NO_ROUTE
	case in.onPath:
		return ON_PATH
	case in.open && in.reverseOpen:
		return OPEN_BOTH
	case in.open:
		return OPEN
	case in.reverseOpen:
		return OPEN_REVERSE
	case in.noRoute:
		return NO_ROUTE
	case in.corridor:
		return CORRIDOR
	default:
		return FREE
	}
}

func finite(x float64) *float64 {
	if da.IsInf(x) {
		return nil
	}
	return &x
}

// Render draws the planner's grid belief as text: '#' obstacle, '*' path, 'R' robot, 'G' goal,
// '.' free cell.
func Render(p *planner.Planner) (string, error) {
	cells, err := Cells(p)
	if err != nil {
		return "", err
	}
	grid := p.GetRobot().GetGraph().(*da.GridGraph)

	var sb strings.Builder
	sb.Grow(grid.NumberOfVertices() + grid.GetRows())
	for _, c := range cells {
		switch c.Class {
		case OBSTACLE, OBSTACLE_OPEN, OBSTACLE_ON_PATH:
			sb.WriteByte('#')
		case ARRIVED, ENDPOINT:
			if c.Node == p.GetPosition() {
				sb.WriteByte('R')
			} else {
				sb.WriteByte('G')
			}
		case ON_PATH, ON_PATH_OPEN, ON_PATH_NO_ROUTE:
			sb.WriteByte('*')
		default:
			sb.WriteByte('.')
		}
		if c.Col == grid.GetCols()-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}
