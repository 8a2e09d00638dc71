package taskboard

import (
	"context"
	"errors"
	"fmt"

	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/messaging"
	"pos-taskbridge/internal/models"
	"pos-taskbridge/internal/notify"
)

// Consumer delivers queued task requests to a handler
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
}

// Worker creates tasks from requests queued by point of sale terminals
type Worker struct {
	name     string
	service  *Service
	consumer Consumer
	notifier notify.Notifier
	logger   *logger.Logger
}

// NewWorker creates a task worker consuming through consumer
func NewWorker(name string, service *Service, consumer Consumer, notifier notify.Notifier, log *logger.Logger) *Worker {
	return &Worker{
		name:     name,
		service:  service,
		consumer: consumer,
		notifier: notifier,
		logger:   log,
	}
}

// Start consumes requests until ctx is done
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker_started", fmt.Sprintf("Task worker %s started", w.name), "", map[string]any{
		"worker_name": w.name,
		"queue":       messaging.TaskRequestsQueue,
	})

	err := w.consumer.StartConsuming(ctx, w.handleMessage)
	if errors.Is(err, context.Canceled) {
		w.logger.Info("graceful_shutdown", "Task worker stopped", "", map[string]any{"worker_name": w.name})
		return nil
	}
	return err
}

// handleMessage runs one queued request. Rejected requests are final and
// acknowledged; storage faults are requeued.
func (w *Worker) handleMessage(ctx context.Context, body []byte) error {
	var msg models.TaskRequestMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		return err
	}

	requestID := msg.RequestID
	if requestID == "" {
		requestID = logger.GenerateRequestID()
	}

	w.logger.Debug("task_request_received", "Processing queued task request", requestID, map[string]any{
		"kind":        string(msg.Kind),
		"worker_name": w.name,
	})

	var (
		result *models.TaskResult
		err    error
	)
	switch msg.Kind {
	case models.TaskKindPreparation:
		result, err = w.service.CreatePreparationTask(ctx, &models.PreparationTaskRequest{OrderData: msg.OrderData}, requestID)
	case models.TaskKindOrder:
		if msg.Order == nil {
			return messaging.Permanent(fmt.Errorf("order request %s has no order", requestID))
		}
		result, err = w.service.CreateOrderTask(ctx, *msg.Order, requestID)
	default:
		return messaging.Permanent(fmt.Errorf("unknown task kind %q", msg.Kind))
	}
	if err != nil {
		return fmt.Errorf("failed to create %s task: %w", msg.Kind, err)
	}

	level := models.NoticeSuccess
	if !result.Success {
		level = models.NoticeWarning
	}
	w.notifier.Notify(ctx, notify.Notice{Level: level, Message: result.Message})
	return nil
}
