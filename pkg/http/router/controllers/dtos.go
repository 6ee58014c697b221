package controllers

import (
	"github.com/lintang-b-s/navreplan/pkg/http/usecases"
	"github.com/lintang-b-s/navreplan/pkg/planner"
	"github.com/lintang-b-s/navreplan/pkg/visual"
	"github.com/twpayne/go-polyline"
)

type moveRequest struct {
	Radius *int `json:"radius" validate:"omitempty,min=0,max=64"`
}

type cellRequest struct {
	Row *int `json:"row" validate:"required,min=0"`
	Col *int `json:"col" validate:"required,min=0"`
}

type gridResponse struct {
	SessionID string            `json:"session_id"`
	Planner   string            `json:"planner"`
	Rows      int               `json:"rows"`
	Cols      int               `json:"cols"`
	Position  int               `json:"position"`
	Goal      int               `json:"goal"`
	Distance  float64           `json:"distance"`
	Cells     []visual.CellView `json:"cells"`
}

func NewGridResponse(s usecases.Snapshot) gridResponse {
	return gridResponse{
		SessionID: s.SessionID.String(),
		Planner:   s.Kind.String(),
		Rows:      s.Rows,
		Cols:      s.Cols,
		Position:  int(s.Position),
		Goal:      int(s.Goal),
		Distance:  s.Distance,
		Cells:     s.Cells,
	}
}

type pathResponse struct {
	Nodes []int   `json:"nodes"`
	Cost  float64 `json:"cost"`
	// Path polyline encoded (row, col) pairs.
	Path string `json:"path"`
}

func NewPathResponse(p usecases.PathState) pathResponse {
	nodes := make([]int, len(p.Nodes))
	for i, u := range p.Nodes {
		nodes[i] = int(u)
	}
	return pathResponse{
		Nodes: nodes,
		Cost:  p.Cost,
		Path:  string(polyline.EncodeCoords(p.Coords)),
	}
}

type edgeStatusResponse struct {
	From    int      `json:"from"`
	To      int      `json:"to"`
	WLocal  *float64 `json:"w_local"`
	WRemote *float64 `json:"w_remote"`
}

type moveResponse struct {
	From       int                  `json:"from"`
	To         int                  `json:"to"`
	Iterations int                  `json:"iterations"`
	Sensed     []int                `json:"sensed"`
	Edges      []edgeStatusResponse `json:"edges"`
	Changed    []int                `json:"changed"`
	FullUpdate bool                 `json:"full_update"`
	Distance   float64              `json:"distance"`
}

func NewMoveResponse(res planner.MoveResult) moveResponse {
	edges := make([]edgeStatusResponse, len(res.Sensed.Edges))
	for i, e := range res.Sensed.Edges {
		edges[i] = edgeStatusResponse{From: int(e.From), To: int(e.To), WLocal: e.WLocal, WRemote: e.WRemote}
	}
	sensed := make([]int, len(res.Sensed.Nodes))
	for i, u := range res.Sensed.Nodes {
		sensed[i] = int(u)
	}
	changed := make([]int, len(res.Changed))
	for i, u := range res.Changed {
		changed[i] = int(u)
	}
	return moveResponse{
		From:       int(res.From),
		To:         int(res.To),
		Iterations: res.Iterations,
		Sensed:     sensed,
		Edges:      edges,
		Changed:    changed,
		FullUpdate: res.FullUpdate,
		Distance:   res.Distance,
	}
}

type cellResponse struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Type      string `json:"type"`
	Occupancy int    `json:"occupancy"`
}

type replanResponse struct {
	Iterations int `json:"iterations"`
}

type eventResponse struct {
	Kind string `json:"kind"`
	Node *int   `json:"node,omitempty"`
	From *int   `json:"from,omitempty"`
	To   *int   `json:"to,omitempty"`
}

func NewEventResponse(e planner.Event) eventResponse {
	resp := eventResponse{Kind: e.Kind.String()}
	switch e.Kind {
	case planner.NODE_CHANGED:
		node := int(e.Node)
		resp.Node = &node
	case planner.MOVE:
		from, to := int(e.From), int(e.To)
		resp.From, resp.To = &from, &to
	}
	return resp
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
