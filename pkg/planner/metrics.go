package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// replanIterations counts iterations per replan, labelled by planner kind.
	replanIterations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "navreplan_replan_iterations",
		Help:    "Iterations per replan",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
	}, []string{"planner"})

	// movesTotal counts move calls by result: "ok", "at_goal", "no_path", "error".
	movesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "navreplan_moves_total",
		Help: "Total move calls by result",
	}, []string{"planner", "result"})

	sensedNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "navreplan_sensed_changed_nodes",
		Help:    "Nodes reported changed per sensing pass",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	resetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "navreplan_resets_total",
		Help: "Full replans by cause",
	}, []string{"planner", "cause"})
)
