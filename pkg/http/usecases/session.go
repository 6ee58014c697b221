package usecases

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/lintang-b-s/navreplan/pkg/planner"
	"github.com/lintang-b-s/navreplan/pkg/robot"
	"github.com/lintang-b-s/navreplan/pkg/util"
	"github.com/lintang-b-s/navreplan/pkg/visual"
	"go.uber.org/zap"
)

var (
	ErrNoMap        = errors.New("no map loaded")
	ErrOutOfGrid    = errors.New("cell outside the grid")
	ErrReservedCell = errors.New("cell holds the robot or the goal")
)

// Snapshot the session state a client needs to draw the grid.
type Snapshot struct {
	SessionID uuid.UUID
	Kind      pkg.PlannerKind
	Rows      int
	Cols      int
	Position  da.Index
	Goal      da.Index
	Distance  float64
	Cells     []visual.CellView
}

type PathState struct {
	Nodes []da.Index
	// Coords (row, col) of every node in Nodes.
	Coords [][]float64
	Cost   float64
}

// PlannerSession one planning session over a grid map: the true map the client edits, a grid
// robot holding its belief and the planner driving it. methods are safe for concurrent use.
//
// run serializes planner calls and mu guards the session fields; writers hold both, run first.
// ToggleCell only takes mu, so the true map stays editable while a move is running.
type PlannerSession struct {
	run     sync.Mutex
	mu      sync.RWMutex
	id      uuid.UUID
	log     *zap.Logger
	kind    pkg.PlannerKind
	radius  int
	maps    *lru.Cache[string, *da.GridMap]
	bus     *planner.EventBus
	grid    *da.GridGraph
	start   da.Index
	planner *planner.Planner

	// robot position and goal as of the last planner call.
	position atomic.Int64
	goal     atomic.Int64
}

func NewPlannerSession(log *zap.Logger, kind pkg.PlannerKind, radius, cacheSize int) (*PlannerSession, error) {
	maps, err := lru.New[string, *da.GridMap](cacheSize)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PlannerSession{
		id:     uuid.New(),
		log:    log,
		kind:   kind,
		radius: radius,
		maps:   maps,
		bus:    planner.NewEventBus(),
	}, nil
}

func (s *PlannerSession) ID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *PlannerSession) GetBus() *planner.EventBus {
	return s.bus
}

// LoadMapFile loads (or takes from the cache) the grid map at filename and starts a new session on
// a copy of it.
func (s *PlannerSession) LoadMapFile(filename string) error {
	m, ok := s.maps.Get(filename)
	if !ok {
		var err error
		m, err = da.ReadGridMapFile(filename)
		if err != nil {
			return util.WrapErrorf(err, util.ErrBadParamInput, "cannot load map %s", filename)
		}
		s.maps.Add(filename, m)
	} else {
		s.log.Debug("map cache hit", zap.String("file", filename))
	}
	return s.LoadMap(m)
}

// LoadMap starts a new session on a copy of m, replacing the previous planner.
func (s *PlannerSession) LoadMap(m *da.GridMap) error {
	grid := m.Grid.Clone()
	r, err := robot.NewGridRobot(grid, m.Start)
	if err != nil {
		return util.WrapErrorf(err, util.ErrBadParamInput, "bad start")
	}

	s.run.Lock()
	defer s.run.Unlock()
	p, err := planner.NewPlanner(s.kind, r, m.Goal, s.log, s.bus)
	if err != nil {
		return util.WrapErrorf(err, util.ErrBadParamInput, "bad goal")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid = grid
	s.start = m.Start
	s.planner = p
	s.id = uuid.New()
	s.track()
	s.log.Info("planning session started", zap.String("session", s.id.String()),
		zap.String("planner", s.kind.String()), zap.Int("rows", grid.GetRows()), zap.Int("cols", grid.GetCols()))
	return nil
}

func (s *PlannerSession) Snapshot() (Snapshot, error) {
	s.run.Lock()
	defer s.run.Unlock()
	if s.planner == nil {
		return Snapshot{}, util.WrapErrorf(ErrNoMap, util.ErrNotFound, "no planning session")
	}
	cells, err := visual.Cells(s.planner)
	if err != nil {
		return Snapshot{}, util.WrapErrorf(err, util.ErrInternalServerError, "cannot describe grid")
	}
	return Snapshot{
		SessionID: s.id,
		Kind:      s.kind,
		Rows:      s.grid.GetRows(),
		Cols:      s.grid.GetCols(),
		Position:  s.planner.GetPosition(),
		Goal:      s.planner.GetGoal(),
		Distance:  s.planner.GetDistance(),
		Cells:     cells,
	}, nil
}

// Path the planned path from the robot to the goal. an empty path is reported as not found.
func (s *PlannerSession) Path() (PathState, error) {
	s.run.Lock()
	defer s.run.Unlock()
	if s.planner == nil {
		return PathState{}, util.WrapErrorf(ErrNoMap, util.ErrNotFound, "no planning session")
	}
	nodes := s.planner.Path()
	if len(nodes) == 0 {
		return PathState{}, util.WrapErrorf(planner.ErrNoPath, util.ErrNotFound,
			"no path from %d to %d", s.planner.GetPosition(), s.planner.GetGoal())
	}
	return PathState{
		Nodes:  nodes,
		Coords: s.coords(nodes),
		Cost:   s.planner.Value(nodes[0]),
	}, nil
}

// Move senses with radius (the session default when nil) and steps once.
func (s *PlannerSession) Move(radius *int) (planner.MoveResult, error) {
	s.run.Lock()
	defer s.run.Unlock()
	if s.planner == nil {
		return planner.MoveResult{}, util.WrapErrorf(ErrNoMap, util.ErrNotFound, "no planning session")
	}
	r := s.radius
	if radius != nil {
		r = *radius
	}
	res, err := s.planner.Move(r)
	s.track()
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, planner.ErrAlreadyAtGoal):
		return res, util.WrapErrorf(err, util.ErrConflict, "robot is at the goal")
	case errors.Is(err, planner.ErrNoPath):
		return res, util.WrapErrorf(err, util.ErrNotFound, "no path to destination")
	case errors.Is(err, robot.ErrNegativeRadius):
		return res, util.WrapErrorf(err, util.ErrBadParamInput, "bad radius %d", r)
	default:
		return res, err
	}
}

// ToggleCell flips a cell of the true map. the robot only learns about it when it senses the cell.
// it does not wait for a running move.
func (s *PlannerSession) ToggleCell(row, col int) (da.Cell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, err := s.cell(row, col)
	if err != nil {
		return da.Cell{}, err
	}
	if int64(u) == s.position.Load() || int64(u) == s.goal.Load() {
		return da.Cell{}, util.WrapErrorf(ErrReservedCell, util.ErrConflict, "cannot toggle (%d, %d)", row, col)
	}
	c, err := s.grid.ToggleCell(u)
	if err != nil {
		return da.Cell{}, util.WrapErrorf(err, util.ErrBadParamInput, "cannot toggle (%d, %d)", row, col)
	}
	s.log.Debug("cell toggled", zap.Int("row", row), zap.Int("col", col), zap.String("cell", c.String()))
	return c, nil
}

// Reset moves the robot back to the start with a fresh view of the true map.
func (s *PlannerSession) Reset() (int, error) {
	s.run.Lock()
	defer s.run.Unlock()
	if s.planner == nil {
		return 0, util.WrapErrorf(ErrNoMap, util.ErrNotFound, "no planning session")
	}
	if s.grid.GetCell(s.start).GetType() == da.OBSTACLE {
		return 0, util.WrapErrorf(ErrReservedCell, util.ErrConflict, "start cell is an obstacle")
	}
	defer s.track()
	return s.planner.Reset(s.start)
}

func (s *PlannerSession) SetGoal(row, col int) (int, error) {
	s.run.Lock()
	defer s.run.Unlock()
	u, err := s.cell(row, col)
	if err != nil {
		return 0, err
	}
	defer s.track()
	return s.planner.SetGoal(u)
}

func (s *PlannerSession) Subscribe(fn func(planner.Event)) uuid.UUID {
	return s.bus.Subscribe(fn)
}

func (s *PlannerSession) Unsubscribe(id uuid.UUID) bool {
	return s.bus.Unsubscribe(id)
}

// track records the planner's position and goal for ToggleCell. callers hold run.
func (s *PlannerSession) track() {
	s.position.Store(int64(s.planner.GetPosition()))
	s.goal.Store(int64(s.planner.GetGoal()))
}

// cell callers hold run or mu.
func (s *PlannerSession) cell(row, col int) (da.Index, error) {
	if s.planner == nil {
		return 0, util.WrapErrorf(ErrNoMap, util.ErrNotFound, "no planning session")
	}
	if !s.grid.InBounds(row, col) {
		return 0, util.WrapErrorf(ErrOutOfGrid, util.ErrBadParamInput,
			"(%d, %d) outside %dx%d grid", row, col, s.grid.GetRows(), s.grid.GetCols())
	}
	return s.grid.VertexID(row, col), nil
}

func (s *PlannerSession) coords(nodes []da.Index) [][]float64 {
	coords := make([][]float64, len(nodes))
	for i, u := range nodes {
		row, col := s.grid.Coordinate(u)
		coords[i] = []float64{float64(row), float64(col)}
	}
	return coords
}
