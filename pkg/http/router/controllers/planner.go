package controllers

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/navreplan/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type plannerAPI struct {
	plannerService PlannerService
	hub            *Hub
	validate       *requestValidator
	log            *zap.Logger
}

func New(plannerService PlannerService, hub *Hub, log *zap.Logger) *plannerAPI {
	return &plannerAPI{
		plannerService: plannerService,
		hub:            hub,
		validate:       newRequestValidator(),
		log:            log,
	}
}

func (api *plannerAPI) Routes(group *helper.RouteGroup) {
	group.GET("/grid", api.grid)
	group.GET("/path", api.path)
	group.POST("/move", api.move)
	group.POST("/cells/toggle", api.toggleCell)
	group.POST("/reset", api.reset)
	group.POST("/goal", api.setGoal)
	group.GET("/events", api.events)
}

func (api *plannerAPI) grid(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	snapshot, err := api.plannerService.Snapshot()
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewGridResponse(snapshot)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *plannerAPI) path(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	path, err := api.plannerService.Path()
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPathResponse(path)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *plannerAPI) move(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request moveRequest
	if r.ContentLength != 0 {
		if err := api.readJSON(w, r, &request); err != nil {
			api.BadRequestResponse(w, r, err)
			return
		}
	}
	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	res, err := api.plannerService.Move(request.Radius)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewMoveResponse(res)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *plannerAPI) readCell(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	var request cellRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return 0, 0, false
	}
	if err := api.validate.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return 0, 0, false
	}
	return *request.Row, *request.Col, true
}

func (api *plannerAPI) toggleCell(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	row, col, ok := api.readCell(w, r)
	if !ok {
		return
	}
	cell, err := api.plannerService.ToggleCell(row, col)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	resp := cellResponse{Row: row, Col: col, Type: cell.GetType().String(), Occupancy: cell.GetOccupancy()}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *plannerAPI) reset(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	iterations, err := api.plannerService.Reset()
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": replanResponse{Iterations: iterations}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *plannerAPI) setGoal(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	row, col, ok := api.readCell(w, r)
	if !ok {
		return
	}
	iterations, err := api.plannerService.SetGoal(row, col)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": replanResponse{Iterations: iterations}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// events upgrades the request to a websocket that streams planner events as json text frames.
func (api *plannerAPI) events(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if api.hub == nil {
		api.NotFoundResponse(w, r, errors.New("event stream disabled"))
		return
	}
	if err := api.hub.Serve(w, r); err != nil {
		api.log.Info("websocket upgrade failed", zap.Error(err))
	}
}
