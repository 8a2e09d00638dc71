package transport

import (
	"context"

	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/models"
)

// TaskPublisher is the broker side of QueueSubmitter
type TaskPublisher interface {
	PublishTaskRequest(ctx context.Context, msg *models.TaskRequestMessage) error
}

// QueueSubmitter hands submissions to the task worker through the broker.
// A published submission counts as accepted; the worker reports the outcome.
type QueueSubmitter struct {
	publisher TaskPublisher
	logger    *logger.Logger
}

// NewQueueSubmitter creates a submitter publishing through pub
func NewQueueSubmitter(pub TaskPublisher, log *logger.Logger) *QueueSubmitter {
	return &QueueSubmitter{publisher: pub, logger: log}
}

func (s *QueueSubmitter) CreatePreparationTask(ctx context.Context, data *models.OrderData) (*models.TaskResult, error) {
	return s.publish(ctx, "create_preparation_task", models.NewPreparationMessage(logger.GenerateRequestID(), data))
}

func (s *QueueSubmitter) CreateTask(ctx context.Context, req models.TaskRequest) (*models.TaskResult, error) {
	return s.publish(ctx, "create_task", models.NewOrderTaskMessage(logger.GenerateRequestID(), req))
}

func (s *QueueSubmitter) publish(ctx context.Context, op string, msg *models.TaskRequestMessage) (*models.TaskResult, error) {
	if err := s.publisher.PublishTaskRequest(ctx, msg); err != nil {
		return nil, &models.TransportError{Op: op, Err: err}
	}

	s.logger.Info("task_queued", "Task request queued", msg.RequestID, map[string]any{
		"operation": op,
		"kind":      string(msg.Kind),
	})
	return &models.TaskResult{Success: true, Message: "Task queued"}, nil
}
