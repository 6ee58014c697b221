package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/navreplan/pkg"
	"github.com/lintang-b-s/navreplan/pkg/http"
	"github.com/lintang-b-s/navreplan/pkg/http/usecases"
	"github.com/lintang-b-s/navreplan/pkg/logger"
	"github.com/lintang-b-s/navreplan/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath   = flag.String("config", "./data/", "directory holding config.yaml")
	useRateLimit = flag.Bool("rate_limit", true, "rate limit the api")
)

func main() {
	flag.Parse()
	if err := util.ReadConfig(*configPath); err != nil {
		panic(err)
	}
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	kind, ok := pkg.GetPlannerKind(viper.GetString("PLANNER"))
	if !ok {
		logger.Fatal("unknown planner", zap.String("planner", viper.GetString("PLANNER")))
	}
	session, err := usecases.NewPlannerSession(logger, kind, viper.GetInt("SENSOR_RADIUS"),
		viper.GetInt("MAP_CACHE_SIZE"))
	if err != nil {
		logger.Fatal("cannot create planning session", zap.Error(err))
	}
	if err := session.LoadMapFile(viper.GetString("MAP_FILE")); err != nil {
		logger.Fatal("cannot load map", zap.Error(err))
	}

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	api, err := http.NewServer(logger).Use(ctx, logger, *useRateLimit, session, session)
	if err != nil {
		logger.Fatal("cannot start api", zap.Error(err))
	}

	signal := http.GracefulShutdown()
	logger.Info("navreplan server stopping", zap.String("signal", signal.String()))
	cleanup()
	if err := api.Wait(); err != nil {
		logger.Error("api stopped with error", zap.Error(err))
	}
	logger.Info("navreplan server stopped")
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
