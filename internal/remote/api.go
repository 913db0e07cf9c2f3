// Package remote describes the operation set of the task API and provides an
// HTTP/JSON client for it.
package remote

import (
	"context"

	"github.com/julianstephens/tweeklike/internal/models"
)

// API is the system of record a local store mirrors its mutations to. Every
// call is independent; ids in arguments are authoritative ids.
type API interface {
	// List returns every task, or only tasks dated in [from, to] plus all
	// someday tasks when both bounds are set.
	List(ctx context.Context, from, to models.Date) ([]models.Task, error)
	Create(ctx context.Context, req CreateRequest) (models.Task, error)
	Patch(ctx context.Context, id string, patch models.Patch) (models.Task, error)
	Delete(ctx context.Context, id string) error
	DeleteAndFuture(ctx context.Context, id string) ([]string, error)

	AddSubtask(ctx context.Context, taskID, title string) (models.Subtask, error)
	SetSubtaskCompleted(ctx context.Context, taskID, subtaskID string, completed bool) (models.Subtask, error)
	DeleteSubtask(ctx context.Context, taskID, subtaskID string) error

	SetRecurrence(ctx context.Context, id string, rule models.Recurrence) ([]models.Task, error)
	ClearRecurrence(ctx context.Context, id string) error

	Move(ctx context.Context, req MoveRequest) ([]models.Task, error)
	Rollover(ctx context.Context) (int, error)
}

type CreateRequest struct {
	Title    string          `json:"title"`
	Date     models.Date     `json:"date"`
	Category models.Category `json:"category"`
	IsLabel  bool            `json:"isLabel,omitempty"`
}

type MoveRequest struct {
	TaskID      string          `json:"taskId"`
	NewDate     models.Date     `json:"newDate"`
	NewCategory models.Category `json:"newCategory"`
	NewIndex    int             `json:"newIndex"`
}

type SubtaskCreate struct {
	Title string `json:"title"`
}

type SubtaskUpdate struct {
	Completed bool `json:"completed"`
}

type DeleteFutureResponse struct {
	Removed []string `json:"removed"`
}

type RolloverResponse struct {
	RolledOver int `json:"rolled_over"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
