// Package transport delivers task submissions to the task board.
package transport

import (
	"context"

	"pos-taskbridge/internal/models"
)

// Backend endpoints
const (
	PreparationTaskPath = "/pos_project_integration/create_preparation_task"
	OrderTaskPath       = "/pos_project_integration/create_task"
)

// Submitter sends one submission and returns the backend's answer.
// A returned error is always a *models.TransportError; submissions are
// never retried.
type Submitter interface {
	CreatePreparationTask(ctx context.Context, data *models.OrderData) (*models.TaskResult, error)
	CreateTask(ctx context.Context, req models.TaskRequest) (*models.TaskResult, error)
}
