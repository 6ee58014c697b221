package datastructure

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/lintang-b-s/navreplan/pkg"
)

var (
	ErrEmptyGrid       = errors.New("grid must have at least one row and one column")
	ErrNonRectangular  = errors.New("rows are of different lengths")
	ErrIllegalCell     = errors.New("illegal character in grid")
	ErrMissingStart    = errors.New("grid has no start marker")
	ErrMissingGoal     = errors.New("grid has no goal marker")
	ErrDuplicateMarker = errors.New("grid has more than one start or goal marker")
	ErrShapeMismatch   = errors.New("grid shapes do not match")
)

type CellType uint8

const (
	FREE CellType = iota
	OBSTACLE
)

func (t CellType) String() string {
	switch t {
	case FREE:
		return "free"
	case OBSTACLE:
		return "obstacle"
	default:
		return "unknown"
	}
}

// characters read as FREE cells, every other non-space character is an OBSTACLE.
const freeCells = "0-SsGg"

type Cell struct {
	cellType  CellType
	occupancy int
}

func NewCell(cellType CellType, occupancy int) Cell {
	if occupancy < 1 {
		occupancy = pkg.DEFAULT_OCCUPANCY
	}
	return Cell{cellType: cellType, occupancy: occupancy}
}

func (c Cell) GetType() CellType {
	return c.cellType
}

func (c Cell) GetOccupancy() int {
	return c.occupancy
}

func (c Cell) String() string {
	return fmt.Sprintf("Cell(%d, %d)", c.cellType, c.occupancy)
}

// GridGraph 8-connected lattice. two distinct cells are adjacent iff they differ by at most 1 in
// each coordinate and have the same type. the weight of an edge is the euclidean distance between
// the cells (1 or sqrt 2) times the larger occupancy of its endpoints. edges are implicit, so a
// cell change changes every edge touching it.
type GridGraph struct {
	mu    sync.RWMutex
	rows  int
	cols  int
	cells []Cell
}

func NewGridGraph(rows, cols int) (*GridGraph, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyGrid, rows, cols)
	}
	cells := make([]Cell, rows*cols)
	for i := range cells {
		cells[i] = NewCell(FREE, pkg.DEFAULT_OCCUPANCY)
	}
	return &GridGraph{rows: rows, cols: cols, cells: cells}, nil
}

// NewGridGraphFromTypes builds a grid from row major cell types, all with default occupancy.
func NewGridGraphFromTypes(rows, cols int, types []CellType) (*GridGraph, error) {
	g, err := NewGridGraph(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(types) != rows*cols {
		return nil, fmt.Errorf("%w: %d types for %dx%d grid", ErrShapeMismatch, len(types), rows, cols)
	}
	for i, t := range types {
		g.cells[i] = NewCell(t, pkg.DEFAULT_OCCUPANCY)
	}
	return g, nil
}

func (g *GridGraph) GetRows() int {
	return g.rows
}

func (g *GridGraph) GetCols() int {
	return g.cols
}

func (g *GridGraph) NumberOfVertices() int {
	return g.rows * g.cols
}

func (g *GridGraph) VertexID(row, col int) Index {
	return Index(row*g.cols + col)
}

func (g *GridGraph) Coordinate(u Index) (row, col int) {
	return int(u) / g.cols, int(u) % g.cols
}

func (g *GridGraph) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

func (g *GridGraph) GetCell(u Index) Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cells[u]
}

// SetCell replaces the state of cell u.
func (g *GridGraph) SetCell(u Index, c Cell) error {
	if err := checkRange(u, g.NumberOfVertices()); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells[u] = NewCell(c.cellType, c.occupancy)
	return nil
}

// ToggleCell flips cell u between FREE and OBSTACLE and returns the new cell.
func (g *GridGraph) ToggleCell(u Index) (Cell, error) {
	if err := checkRange(u, g.NumberOfVertices()); err != nil {
		return Cell{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.cells[u]
	if c.cellType == FREE {
		c.cellType = OBSTACLE
	} else {
		c.cellType = FREE
	}
	g.cells[u] = c
	return c, nil
}

// ChebyshevBox returns the cells at most radius rows and columns away from center, row major.
func (g *GridGraph) ChebyshevBox(center Index, radius int) []Index {
	ci, cj := g.Coordinate(center)
	out := make([]Index, 0, (2*radius+1)*(2*radius+1))
	for i := ci - radius; i <= ci+radius; i++ {
		for j := cj - radius; j <= cj+radius; j++ {
			if g.InBounds(i, j) {
				out = append(out, g.VertexID(i, j))
			}
		}
	}
	return out
}

// DiffInto copies into local every cell of the Chebyshev box around center whose state differs
// from g, and returns the changed cells. both grids are locked for the whole pass.
func (g *GridGraph) DiffInto(local *GridGraph, center Index, radius int) ([]Index, error) {
	if local.rows != g.rows || local.cols != g.cols {
		return nil, ErrShapeMismatch
	}
	if err := checkRange(center, g.NumberOfVertices()); err != nil {
		return nil, err
	}
	if local == g {
		return []Index{}, nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	local.mu.Lock()
	defer local.mu.Unlock()

	changed := make([]Index, 0)
	for _, v := range g.ChebyshevBox(center, radius) {
		if local.cells[v] != g.cells[v] {
			local.cells[v] = g.cells[v]
			changed = append(changed, v)
		}
	}
	return changed, nil
}

func (g *GridGraph) Clone() *GridGraph {
	g.mu.RLock()
	defer g.mu.RUnlock()
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &GridGraph{rows: g.rows, cols: g.cols, cells: cells}
}

// CopyFrom overwrites every cell with the cells of other.
func (g *GridGraph) CopyFrom(other *GridGraph) error {
	if other.rows != g.rows || other.cols != g.cols {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, g.rows, g.cols, other.rows, other.cols)
	}
	if other == g {
		return nil
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	copy(g.cells, other.cells)
	return nil
}

func (g *GridGraph) Successors(u Index) []Arc {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.neighbors(u)
}

// Predecessors equals Successors, grid adjacency is symmetric.
func (g *GridGraph) Predecessors(u Index) []Arc {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.neighbors(u)
}

func (g *GridGraph) HasEdge(u, v Index) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.norm(u, v) > 0
}

func (g *GridGraph) GetWeight(u, v Index) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.weight(u, v)
}

func (g *GridGraph) View(fn func(Graph)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(gridView{g: g})
}

// Serialize writes '-' for free and 'O' for obstacle cells, one line per row.
func (g *GridGraph) Serialize() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var sb strings.Builder
	sb.Grow(g.rows * (g.cols + 1))
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			if g.cells[i*g.cols+j].cellType == FREE {
				sb.WriteByte('-')
			} else {
				sb.WriteByte('O')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (g *GridGraph) String() string {
	return fmt.Sprintf("GridGraph(%d, %d)", g.rows, g.cols)
}

// norm squared euclidean distance between u and v, -1 if not adjacent, 0 if u == v.
func (g *GridGraph) norm(u, v Index) int {
	n := g.NumberOfVertices()
	if checkRange(u, n) != nil || checkRange(v, n) != nil {
		return -1
	}
	ui, uj := g.Coordinate(u)
	vi, vj := g.Coordinate(v)
	nrm := (ui-vi)*(ui-vi) + (uj-vj)*(uj-vj)
	if g.cells[u].cellType != g.cells[v].cellType || nrm > 2 {
		return -1
	}
	return nrm
}

func (g *GridGraph) weight(u, v Index) float64 {
	nrm := g.norm(u, v)
	if nrm <= 0 {
		return pkg.INF_WEIGHT
	}
	return edgeLength(nrm) * float64(max(g.cells[u].occupancy, g.cells[v].occupancy))
}

func edgeLength(nrm int) float64 {
	if nrm == 2 {
		return pkg.SQRT2
	}
	return math.Sqrt(float64(nrm))
}

// neighbors visits the 3x3 box around u row major, so arcs come out sorted by id.
func (g *GridGraph) neighbors(u Index) []Arc {
	if checkRange(u, g.NumberOfVertices()) != nil {
		return []Arc{}
	}
	arcs := make([]Arc, 0, 8)
	ui, uj := g.Coordinate(u)
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			vi, vj := ui+di, uj+dj
			if (di == 0 && dj == 0) || !g.InBounds(vi, vj) {
				continue
			}
			v := g.VertexID(vi, vj)
			if g.cells[u].cellType != g.cells[v].cellType {
				continue
			}
			arcs = append(arcs, NewArc(v, g.weight(u, v)))
		}
	}
	return arcs
}

type gridView struct {
	g *GridGraph
}

func (v gridView) NumberOfVertices() int        { return v.g.NumberOfVertices() }
func (v gridView) Successors(u Index) []Arc     { return v.g.neighbors(u) }
func (v gridView) Predecessors(u Index) []Arc   { return v.g.neighbors(u) }
func (v gridView) HasEdge(u, w Index) bool      { return v.g.norm(u, w) > 0 }
func (v gridView) GetWeight(u, w Index) float64 { return v.g.weight(u, w) }
func (v gridView) View(fn func(Graph))          { fn(v) }

// GridMap a parsed ASCII map: the grid plus its start and goal cells.
type GridMap struct {
	Grid  *GridGraph
	Start Index
	Goal  Index
}

// ParseGridCells parses rows of an ASCII map. start and goal markers are read as free cells but
// not required.
func ParseGridCells(lines []string) (*GridGraph, error) {
	m, err := parseGrid(lines)
	if err != nil {
		return nil, err
	}
	return m.Grid, nil
}

// ParseGridMap parses rows of an ASCII map that must contain exactly one start (S or s) and one
// goal (G or g) marker.
func ParseGridMap(lines []string) (*GridMap, error) {
	m, err := parseGrid(lines)
	if err != nil {
		return nil, err
	}
	if m.Start == INVALID_VERTEX_ID {
		return nil, ErrMissingStart
	}
	if m.Goal == INVALID_VERTEX_ID {
		return nil, ErrMissingGoal
	}
	return m, nil
}

func parseGrid(lines []string) (*GridMap, error) {
	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Trim(line, " \t"))
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}

	cols := len(rows[0])
	types := make([]CellType, 0, len(rows)*cols)
	start, goal := INVALID_VERTEX_ID, INVALID_VERTEX_ID
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrNonRectangular, i, len(row), cols)
		}
		for j := 0; j < cols; j++ {
			ch := row[j]
			t, err := cellTypeFromChar(ch)
			if err != nil {
				return nil, fmt.Errorf("%w at row %d col %d", err, i, j)
			}
			u := Index(i*cols + j)
			switch ch {
			case 'S', 's':
				if start != INVALID_VERTEX_ID {
					return nil, fmt.Errorf("%w: second start at row %d col %d", ErrDuplicateMarker, i, j)
				}
				start = u
			case 'G', 'g':
				if goal != INVALID_VERTEX_ID {
					return nil, fmt.Errorf("%w: second goal at row %d col %d", ErrDuplicateMarker, i, j)
				}
				goal = u
			}
			types = append(types, t)
		}
	}

	grid, err := NewGridGraphFromTypes(len(rows), cols, types)
	if err != nil {
		return nil, err
	}
	return &GridMap{Grid: grid, Start: start, Goal: goal}, nil
}

func cellTypeFromChar(ch byte) (CellType, error) {
	if ch == ' ' || ch == '\t' {
		return OBSTACLE, fmt.Errorf("%w: %q", ErrIllegalCell, ch)
	}
	if strings.IndexByte(freeCells, ch) >= 0 {
		return FREE, nil
	}
	return OBSTACLE, nil
}
