package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lintang-b-s/navreplan/pkg"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/lintang-b-s/navreplan/pkg/logger"
	"github.com/lintang-b-s/navreplan/pkg/planner"
	"github.com/lintang-b-s/navreplan/pkg/robot"
	"github.com/lintang-b-s/navreplan/pkg/simulation"
	"github.com/lintang-b-s/navreplan/pkg/util"
	"github.com/lintang-b-s/navreplan/pkg/visual"
	"go.uber.org/zap"
)

var (
	mapFile     = flag.String("map", "./data/scenario.txt", "ASCII map with optional \"toggle step row col\" lines, .bz2 allowed")
	plannerName = flag.String("planner", "all", "dstarlite, dijkstra, twoway or all")
	radius      = flag.Int("radius", pkg.DEFAULT_SENSOR_RADIUS, "sensor radius in cells")
	render      = flag.Bool("render", true, "print the initial plan of every planner")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	lines, err := readMapLines(*mapFile)
	if err != nil {
		logger.Fatal("cannot read map", zap.String("file", *mapFile), zap.Error(err))
	}
	scenario, err := simulation.ParseScenario(filepath.Base(*mapFile), lines)
	if err != nil {
		logger.Fatal("cannot parse scenario", zap.Error(err))
	}
	scenario.Radius = *radius

	kinds, err := plannerKinds(*plannerName)
	if err != nil {
		logger.Fatal("bad planner flag", zap.Error(err))
	}

	for _, kind := range kinds {
		if *render {
			plan, err := initialPlan(scenario, kind)
			if err != nil {
				logger.Fatal("cannot plan", zap.String("planner", kind.String()), zap.Error(err))
			}
			fmt.Printf("%v initial plan:\n%s\n", kind, plan)
		}
		fmt.Println(simulation.Run(scenario, kind, logger))
	}
}

func readMapLines(filename string) ([]string, error) {
	rc, err := da.OpenMapFile(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	var lines []string
	for {
		line, err := util.ReadLine(br)
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
}

func plannerKinds(name string) ([]pkg.PlannerKind, error) {
	if name == "all" {
		return []pkg.PlannerKind{pkg.DSTAR_LITE, pkg.DIJKSTRA, pkg.TWO_WAY_DSTAR_LITE}, nil
	}
	kind, ok := pkg.GetPlannerKind(name)
	if !ok {
		return nil, fmt.Errorf("unknown planner %q", name)
	}
	return []pkg.PlannerKind{kind}, nil
}

func initialPlan(s simulation.Scenario, kind pkg.PlannerKind) (string, error) {
	m, err := da.ParseGridMap(s.Lines)
	if err != nil {
		return "", err
	}
	r, err := robot.NewGridRobot(m.Grid, m.Start)
	if err != nil {
		return "", err
	}
	p, err := planner.NewPlanner(kind, r, m.Goal, zap.NewNop(), nil)
	if err != nil {
		return "", err
	}
	return visual.Render(p)
}
