package simulation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/lintang-b-s/navreplan/pkg/planner"
	"github.com/lintang-b-s/navreplan/pkg/robot"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

var (
	ErrStepLimit   = errors.New("simulation: step limit reached before the goal")
	ErrBadScenario = errors.New("simulation: bad scenario")
)

// Toggle flips the cell at (Row, Col) of the true map before move Step (0 based).
type Toggle struct {
	Step int `json:"step"`
	Row  int `json:"row"`
	Col  int `json:"col"`
}

// Scenario an ASCII map with start and goal markers plus the map edits the robot discovers
// while moving.
type Scenario struct {
	Name    string   `json:"name"`
	Lines   []string `json:"lines"`
	Toggles []Toggle `json:"toggles"`
	Radius  int      `json:"radius"`
}

// Result of running one scenario with one planner kind.
type Result struct {
	Scenario string
	Kind     pkg.PlannerKind
	Reached  bool
	Steps    int
	Distance float64
	// InitialIterations iterations of the first full search, Iterations the sum over every
	// replan triggered by sensing.
	InitialIterations int
	Iterations        int
	Replans           int
	SkippedToggles    int
	Elapsed           time.Duration
	Err               error
}

func (r Result) String() string {
	status := "reached"
	if !r.Reached {
		status = "failed"
		if r.Err != nil {
			status = r.Err.Error()
		}
	}
	return fmt.Sprintf("%s/%v: %s steps=%d distance=%.4f replans=%d iterations=%d (+%d initial) in %v",
		r.Scenario, r.Kind, status, r.Steps, r.Distance, r.Replans, r.Iterations, r.InitialIterations, r.Elapsed)
}

// Run drives a grid robot from the scenario's start until it reaches the goal, finds no path or
// exceeds the step limit. each run parses its own copy of the map.
func Run(s Scenario, kind pkg.PlannerKind, log *zap.Logger) (res Result) {
	res = Result{Scenario: s.Name, Kind: kind}
	if log == nil {
		log = zap.NewNop()
	}
	m, err := da.ParseGridMap(s.Lines)
	if err != nil {
		res.Err = fmt.Errorf("%w %q: %w", ErrBadScenario, s.Name, err)
		return res
	}
	radius := s.Radius
	if radius <= 0 {
		radius = pkg.DEFAULT_SENSOR_RADIUS
	}

	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	r, err := robot.NewGridRobot(m.Grid, m.Start)
	if err != nil {
		res.Err = err
		return res
	}
	p, err := planner.NewPlanner(kind, r, m.Goal, log, nil)
	if err != nil {
		res.Err = err
		return res
	}
	res.InitialIterations = p.GetFullIterations()

	limit := 4 * m.Grid.NumberOfVertices()
	for step := 0; !p.AtGoal(); step++ {
		if step >= limit {
			res.Err = ErrStepLimit
			break
		}
		res.SkippedToggles += applyToggles(m.Grid, s.Toggles, step, p.GetPosition(), m.Goal)

		mv, err := p.Move(radius)
		if mv.Sensed.Changed() {
			res.Replans++
			res.Iterations += mv.Iterations
		}
		if err != nil {
			res.Err = err
			break
		}
		res.Steps++
	}
	res.Reached = p.AtGoal()
	res.Distance = p.GetDistance()
	log.Debug("scenario finished", zap.String("scenario", s.Name), zap.String("planner", kind.String()),
		zap.Bool("reached", res.Reached), zap.Int("steps", res.Steps), zap.Int("iterations", res.Iterations))
	return res
}

func applyToggles(grid *da.GridGraph, toggles []Toggle, step int, protected ...da.Index) int {
	skipped := 0
	for _, t := range toggles {
		if t.Step != step {
			continue
		}
		if !grid.InBounds(t.Row, t.Col) {
			skipped++
			continue
		}
		u := grid.VertexID(t.Row, t.Col)
		if contains(protected, u) {
			skipped++
			continue
		}
		if _, err := grid.ToggleCell(u); err != nil {
			skipped++
		}
	}
	return skipped
}

func contains(nodes []da.Index, u da.Index) bool {
	for _, v := range nodes {
		if v == u {
			return true
		}
	}
	return false
}

// RandomScenario builds a rows x cols map with start and goal in opposite corners, obstacles placed
// with the given density and numToggles random edits spread over the first rows+cols moves.
func RandomScenario(r *rand.Rand, name string, rows, cols int, density float64, numToggles int) (Scenario, error) {
	if rows < 1 || cols < 2 {
		return Scenario{}, fmt.Errorf("%w: %dx%d map", ErrBadScenario, rows, cols)
	}
	grid := make([][]byte, rows)
	for i := range grid {
		grid[i] = make([]byte, cols)
		for j := range grid[i] {
			grid[i][j] = '-'
			if r.Float64() < density {
				grid[i][j] = 'O'
			}
		}
	}
	grid[0][0] = 'S'
	grid[rows-1][cols-1] = 'G'

	lines := make([]string, rows)
	for i := range grid {
		lines[i] = string(grid[i])
	}

	toggles := make([]Toggle, 0, numToggles)
	for len(toggles) < numToggles {
		row, col := r.Intn(rows), r.Intn(cols)
		if (row == 0 && col == 0) || (row == rows-1 && col == cols-1) {
			continue
		}
		toggles = append(toggles, Toggle{Step: r.Intn(rows + cols), Row: row, Col: col})
	}
	return Scenario{Name: name, Lines: lines, Toggles: toggles, Radius: pkg.DEFAULT_SENSOR_RADIUS}, nil
}

// ParseScenario reads a map file body: the ASCII rows, then optional "toggle step row col" lines.
func ParseScenario(name string, lines []string) (Scenario, error) {
	s := Scenario{Name: name, Radius: pkg.DEFAULT_SENSOR_RADIUS}
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != "toggle" {
			s.Lines = append(s.Lines, line)
			continue
		}
		var t Toggle
		if _, err := fmt.Sscanf(strings.TrimSpace(line), "toggle %d %d %d", &t.Step, &t.Row, &t.Col); err != nil {
			return Scenario{}, fmt.Errorf("%w: line %d: %w", ErrBadScenario, i+1, err)
		}
		s.Toggles = append(s.Toggles, t)
	}
	return s, nil
}
