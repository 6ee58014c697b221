package controllers

import (
	"github.com/google/uuid"
	da "github.com/lintang-b-s/navreplan/pkg/datastructure"
	"github.com/lintang-b-s/navreplan/pkg/http/usecases"
	"github.com/lintang-b-s/navreplan/pkg/planner"
)

type PlannerService interface {
	Snapshot() (usecases.Snapshot, error)
	Path() (usecases.PathState, error)
	Move(radius *int) (planner.MoveResult, error)
	ToggleCell(row, col int) (da.Cell, error)
	Reset() (int, error)
	SetGoal(row, col int) (int, error)
}

type EventSource interface {
	Subscribe(fn func(planner.Event)) uuid.UUID
	Unsubscribe(id uuid.UUID) bool
}
