package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/models"
)

// HTTPSubmitter posts JSON submissions to the task board
type HTTPSubmitter struct {
	client *resty.Client
	logger *logger.Logger
}

// NewHTTPSubmitter creates a submitter for the task board at baseURL
func NewHTTPSubmitter(baseURL string, timeout time.Duration, log *logger.Logger) *HTTPSubmitter {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	return &HTTPSubmitter{client: client, logger: log}
}

// CreatePreparationTask posts data to the preparation task endpoint
func (s *HTTPSubmitter) CreatePreparationTask(ctx context.Context, data *models.OrderData) (*models.TaskResult, error) {
	return s.post(ctx, "create_preparation_task", PreparationTaskPath, models.PreparationTaskRequest{OrderData: data})
}

// CreateTask posts req to the order task endpoint
func (s *HTTPSubmitter) CreateTask(ctx context.Context, req models.TaskRequest) (*models.TaskResult, error) {
	return s.post(ctx, "create_task", OrderTaskPath, req)
}

func (s *HTTPSubmitter) post(ctx context.Context, op, path string, body any) (*models.TaskResult, error) {
	var result models.TaskResult

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post(path)
	if err != nil {
		return nil, &models.TransportError{Op: op, Err: fmt.Errorf("request failed: %w", err)}
	}
	if resp.IsError() {
		return nil, &models.TransportError{
			Op:  op,
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	s.logger.Debug("task_submitted", "Submission answered by task board", "", map[string]any{
		"operation":   op,
		"status_code": resp.StatusCode(),
		"success":     result.Success,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return &result, nil
}
