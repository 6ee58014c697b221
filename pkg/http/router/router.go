package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/navreplan/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/navreplan/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/navreplan/pkg/http/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type RateLimit struct {
	RPS   float64
	Burst int
}

type API struct {
	log *zap.Logger
	hub *controllers.Hub
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

//	@title			navreplan API
//	@version		1.0
//	@description	Incremental path replanning for a robot exploring a grid map.

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api

// Handler builds the middleware chain and routes. rateLimit may be nil.
func (api *API) Handler(plannerService controllers.PlannerService, events controllers.EventSource,
	rateLimit *RateLimit) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.GET("/doc/*any", swaggerHandler)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	if events != nil {
		api.hub = controllers.NewHub(events, api.log)
	}
	group := router_helper.NewRouteGroup(router, "/api")
	plannerRoutes := controllers.New(plannerService, api.hub, api.log)
	plannerRoutes.Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log)}
	if rateLimit != nil {
		mwChain = append(mwChain, Limit(rateLimit.RPS, rateLimit.Burst))
	}
	return alice.New(mwChain...).Then(router)
}

// Run serves the api until ctx is canceled or the server fails, then shuts down gracefully.
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	plannerService controllers.PlannerService,
	events controllers.EventSource,
	rateLimit *RateLimit,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(plannerService, events, rateLimit), config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		api.log.Info("HTTP server stopped", zap.Error(err))
		api.closeHub()
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		api.closeHub()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (api *API) closeHub() {
	if api.hub != nil {
		api.hub.RemoveAllUser()
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, p httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
