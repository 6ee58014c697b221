package simulation

import (
	"context"
	"sort"
	"time"

	"github.com/lintang-b-s/navreplan/pkg"
	"github.com/lintang-b-s/navreplan/pkg/concurrent"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type job struct {
	index    int
	scenario Scenario
	kind     pkg.PlannerKind
}

type jobResult struct {
	index  int
	result Result
}

// Runner runs every scenario with every planner kind on a worker pool.
type Runner struct {
	numWorkers int
	log        *zap.Logger
}

func NewRunner(numWorkers int, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{numWorkers: numWorkers, log: log}
}

// Compare returns one result per (scenario, kind) pair, ordered by scenario then by the order of
// kinds. it stops queueing work once ctx is done and returns ctx's error.
func (r *Runner) Compare(ctx context.Context, scenarios []Scenario, kinds []pkg.PlannerKind) ([]Result, error) {
	total := len(scenarios) * len(kinds)
	wp := concurrent.NewWorkerPool[job, jobResult](r.numWorkers, r.numWorkers)
	wp.Start(ctx, func(_ context.Context, j job) jobResult {
		return jobResult{index: j.index, result: Run(j.scenario, j.kind, r.log)}
	})

	results := make([]Result, total)
	done := make([]bool, total)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer wp.Close()
		for i, s := range scenarios {
			for k, kind := range kinds {
				if !wp.AddJob(gctx, job{index: i*len(kinds) + k, scenario: s, kind: kind}) {
					return gctx.Err()
				}
			}
		}
		return nil
	})
	g.Go(func() error {
		for res := range wp.CollectResults() {
			results[res.index] = res.result
			done[res.index] = true
		}
		return nil
	})

	start := time.Now()
	go wp.Wait()
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		finished := make([]Result, 0, total)
		for i, ok := range done {
			if ok {
				finished = append(finished, results[i])
			}
		}
		return finished, err
	}

	r.log.Info("simulation finished", zap.Int("runs", total), zap.Int("workers", wp.NumWorkers()),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

// Summary per planner kind totals over a batch of results.
type Summary struct {
	Kind              pkg.PlannerKind
	Runs              int
	Reached           int
	Distance          float64
	InitialIterations int
	Iterations        int
	Replans           int
	Elapsed           time.Duration
}

// MeanIterations replan iterations per sensing-triggered replan.
func (s Summary) MeanIterations() float64 {
	if s.Replans == 0 {
		return 0
	}
	return float64(s.Iterations) / float64(s.Replans)
}

func Summarize(results []Result) []Summary {
	byKind := make(map[pkg.PlannerKind]*Summary)
	for _, res := range results {
		s, ok := byKind[res.Kind]
		if !ok {
			s = &Summary{Kind: res.Kind}
			byKind[res.Kind] = s
		}
		s.Runs++
		if res.Reached {
			s.Reached++
			s.Distance += res.Distance
		}
		s.InitialIterations += res.InitialIterations
		s.Iterations += res.Iterations
		s.Replans += res.Replans
		s.Elapsed += res.Elapsed
	}

	summaries := make([]Summary, 0, len(byKind))
	for _, s := range byKind {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Kind < summaries[j].Kind })
	return summaries
}
