package planner

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/lintang-b-s/navreplan/pkg/engine"
	"github.com/lintang-b-s/navreplan/pkg/robot"
	"go.uber.org/zap"
)

var (
	ErrAlreadyAtGoal = errors.New("already at goal")
	ErrNoPath        = errors.New("no path to destination")
)

// MoveResult what one Move did.
type MoveResult struct {
	From       da.Index
	To         da.Index
	Iterations int
	Sensed     robot.SenseResult
	// Changed nodes whose planner values changed, empty when FullUpdate is set.
	Changed    []da.Index
	FullUpdate bool
	Distance   float64
}

// Planner drives a robot toward a goal: sense, replan on changes, step to the next hop.
// it is not safe for concurrent use, the remote graph may be mutated concurrently.
type Planner struct {
	kind     pkg.PlannerKind
	robot    robot.Robot
	engine   engine.PathEngine
	goal     da.Index
	distance float64
	// iterations of the last search from scratch.
	fullIterations int

	bus *EventBus
	log *zap.Logger
}

// NewPlanner binds an engine of the given kind to the robot's local graph and runs the initial
// search. bus may be nil.
func NewPlanner(kind pkg.PlannerKind, r robot.Robot, goal da.Index, log *zap.Logger, bus *EventBus) (*Planner,
	error) {
	e, err := engine.NewPathEngine(kind, r.GetGraph(), r.GetPosition(), goal)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Planner{
		kind:   kind,
		robot:  r,
		engine: e,
		goal:   goal,
		bus:    bus,
		log:    log,
	}
	p.fullReplan("init")
	return p, nil
}

func (p *Planner) GetKind() pkg.PlannerKind {
	return p.kind
}

func (p *Planner) GetRobot() robot.Robot {
	return p.robot
}

func (p *Planner) GetEngine() engine.PathEngine {
	return p.engine
}

func (p *Planner) GetGoal() da.Index {
	return p.goal
}

func (p *Planner) GetPosition() da.Index {
	return p.robot.GetPosition()
}

// GetDistance cost travelled since the last reset.
func (p *Planner) GetDistance() float64 {
	return p.distance
}

func (p *Planner) GetFullIterations() int {
	return p.fullIterations
}

func (p *Planner) GetBus() *EventBus {
	return p.bus
}

func (p *Planner) AtGoal() bool {
	return p.robot.GetPosition() == p.goal
}

func (p *Planner) GetNext(u da.Index) da.Index {
	return p.engine.GetNext(u)
}

// Value the engine's cost-to-goal estimate of u.
func (p *Planner) Value(u da.Index) float64 {
	return p.engine.Value(u)
}

// Path from the robot's position to the goal, empty if there is none.
func (p *Planner) Path() []da.Index {
	return p.PathFrom(p.robot.GetPosition())
}

func (p *Planner) PathFrom(u da.Index) []da.Index {
	return engine.FollowPath(p.engine, u, p.robot.GetGraph().NumberOfVertices())
}

// Move senses within radius, replans if anything changed and steps to the next hop.
func (p *Planner) Move(radius int) (MoveResult, error) {
	label := p.kind.String()
	curr := p.robot.GetPosition()
	if curr == p.goal {
		movesTotal.WithLabelValues(label, "at_goal").Inc()
		return MoveResult{From: curr, To: curr, Distance: p.distance}, ErrAlreadyAtGoal
	}

	sensed, err := p.robot.Sense(radius)
	if err != nil {
		movesTotal.WithLabelValues(label, "error").Inc()
		return MoveResult{}, fmt.Errorf("sense: %w", err)
	}
	sensedNodes.Observe(float64(len(sensed.Nodes)))

	iterations := 0
	if sensed.Changed() {
		p.engine.ExamineUpdates(sensed.Nodes)
		iterations = p.engine.Replan(curr)
		replanIterations.WithLabelValues(label).Observe(float64(iterations))
	}
	changed, full := p.engine.DrainChanges()
	res := MoveResult{
		From:       curr,
		To:         curr,
		Iterations: iterations,
		Sensed:     sensed,
		Changed:    changed,
		FullUpdate: full,
		Distance:   p.distance,
	}

	next := p.engine.GetNext(curr)
	if next == pkg.NO_ROUTE {
		movesTotal.WithLabelValues(label, "no_path").Inc()
		p.publishChanges(changed, full)
		p.bus.Publish(Event{Kind: PATH_CHANGED})
		p.log.Debug("no path to destination",
			zap.Int("position", int(curr)), zap.Int("goal", int(p.goal)), zap.Int("iterations", iterations))
		return res, ErrNoPath
	}

	reached := p.robot.MoveTo(next)
	p.distance += p.robot.GetGraph().GetWeight(curr, reached)
	res.To = reached
	res.Distance = p.distance
	movesTotal.WithLabelValues(label, "ok").Inc()

	p.publishChanges(changed, full)
	events := []Event{{Kind: MOVE, From: curr, To: reached}}
	for _, u := range []da.Index{curr, reached} {
		// drained nodes were already announced.
		if full || !slices.Contains(changed, u) {
			events = append(events, Event{Kind: NODE_CHANGED, Node: u})
		}
	}
	events = append(events, Event{Kind: PATH_CHANGED})
	p.bus.Publish(events...)
	p.log.Debug("moved",
		zap.Int("from", int(curr)), zap.Int("to", int(reached)),
		zap.Int("iterations", iterations), zap.Int("sensed", len(sensed.Nodes)),
		zap.Float64("distance", p.distance))
	return res, nil
}

// Reset discards the travelled distance, refreshes the robot's belief from the remote graph,
// moves it to start and replans from scratch. it returns the replan iterations.
func (p *Planner) Reset(start da.Index) (int, error) {
	if err := p.robot.Reset(start); err != nil {
		return 0, err
	}
	p.engine.Restart(start)
	return p.fullReplan("reset"), nil
}

// SetGoal retargets the planner and replans from scratch.
func (p *Planner) SetGoal(goal da.Index) (int, error) {
	if err := p.engine.SetGoal(goal); err != nil {
		return 0, err
	}
	p.goal = goal
	p.engine.Restart(p.robot.GetPosition())
	return p.fullReplan("goal"), nil
}

// ResetRobot binds the planner to another robot, with a fresh engine over its local graph.
func (p *Planner) ResetRobot(r robot.Robot) (int, error) {
	e, err := engine.NewPathEngine(p.kind, r.GetGraph(), r.GetPosition(), p.goal)
	if err != nil {
		return 0, err
	}
	p.robot = r
	p.engine = e
	return p.fullReplan("robot"), nil
}

func (p *Planner) fullReplan(cause string) int {
	p.distance = 0
	curr := p.robot.GetPosition()
	iterations := p.engine.Replan(curr)
	p.fullIterations = iterations
	replanIterations.WithLabelValues(p.kind.String()).Observe(float64(iterations))
	resetsTotal.WithLabelValues(p.kind.String(), cause).Inc()

	p.engine.DrainChanges()
	p.bus.Publish(Event{Kind: FULL_UPDATE}, Event{Kind: PATH_CHANGED})
	p.log.Info("planner replanned from scratch",
		zap.String("planner", p.kind.String()), zap.String("cause", cause),
		zap.Int("position", int(curr)), zap.Int("goal", int(p.goal)),
		zap.Int("iterations", iterations), zap.String("cost", strconv.FormatFloat(p.engine.Value(curr), 'f', -1, 64)))
	return iterations
}

func (p *Planner) publishChanges(changed []da.Index, full bool) {
	if full {
		p.bus.Publish(Event{Kind: FULL_UPDATE})
		return
	}
	events := make([]Event, 0, len(changed))
	for _, u := range changed {
		events = append(events, Event{Kind: NODE_CHANGED, Node: u})
	}
	p.bus.Publish(events...)
}
