package pkg

import "math"

// enum of planner kinds
type PlannerKind uint8

const (
	DSTAR_LITE PlannerKind = iota
	DIJKSTRA
	TWO_WAY_DSTAR_LITE
)

func (k PlannerKind) String() string {
	switch k {
	case DSTAR_LITE:
		return "dstarlite"
	case DIJKSTRA:
		return "dijkstra"
	case TWO_WAY_DSTAR_LITE:
		return "twoway"
	default:
		return "unknown"
	}
}

func GetPlannerKind(name string) (PlannerKind, bool) {
	switch name {
	case "dstarlite", "dstar", "DStarLitePlanner":
		return DSTAR_LITE, true
	case "dijkstra", "DijkstraPlanner":
		return DIJKSTRA, true
	case "twoway", "twdsl", "TWDSLPlanner":
		return TWO_WAY_DSTAR_LITE, true
	default:
		return DSTAR_LITE, false
	}
}

const (
	// two weights or priorities closer than EPSILON are the same value.
	EPSILON float64 = 1e-5
	SQRT2   float64 = 1.414213562373095048802

	DEFAULT_SENSOR_RADIUS = 1
	DEFAULT_OCCUPANCY     = 1

	// returned as next hop when the node has no route to the goal.
	NO_ROUTE = -1
)

var INF_WEIGHT = math.Inf(1)
