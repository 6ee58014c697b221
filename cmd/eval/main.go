package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/lintang-b-s/navreplan/pkg"
	"github.com/lintang-b-s/navreplan/pkg/logger"
	"github.com/lintang-b-s/navreplan/pkg/simulation"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

var (
	numScenarios = flag.Int("n", 100, "number of random scenarios")
	rows         = flag.Int("rows", 40, "map rows")
	cols         = flag.Int("cols", 40, "map columns")
	density      = flag.Float64("density", 0.2, "obstacle density of the random maps")
	numToggles   = flag.Int("toggles", 30, "random map edits per scenario")
	radius       = flag.Int("radius", pkg.DEFAULT_SENSOR_RADIUS, "sensor radius in cells")
	workers      = flag.Int("workers", 4, "number of simulation workers")
	seed         = flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	r := rand.New(rand.NewSource(*seed))
	logger.Info("generating scenarios", zap.Int("n", *numScenarios), zap.Uint64("seed", *seed))

	scenarios := make([]simulation.Scenario, 0, *numScenarios)
	for i := 0; i < *numScenarios; i++ {
		s, err := simulation.RandomScenario(r, fmt.Sprintf("random-%d", i), *rows, *cols, *density, *numToggles)
		if err != nil {
			logger.Fatal("cannot generate scenario", zap.Error(err))
		}
		s.Radius = *radius
		scenarios = append(scenarios, s)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kinds := []pkg.PlannerKind{pkg.DSTAR_LITE, pkg.DIJKSTRA, pkg.TWO_WAY_DSTAR_LITE}
	results, err := simulation.NewRunner(*workers, logger).Compare(ctx, scenarios, kinds)
	if err != nil {
		logger.Fatal("simulation stopped", zap.Error(err))
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "planner\truns\treached\tdistance\tinitial iterations\treplans\titerations/replan\telapsed")
	for _, s := range simulation.Summarize(results) {
		fmt.Fprintf(tw, "%v\t%d\t%d\t%.2f\t%d\t%d\t%.2f\t%v\n", s.Kind, s.Runs, s.Reached, s.Distance,
			s.InitialIterations, s.Replans, s.MeanIterations(), s.Elapsed)
	}
	_ = tw.Flush()
}
