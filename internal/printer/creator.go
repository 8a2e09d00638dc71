package printer

import (
	"context"

	"pos-taskbridge/internal/i18n"
	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/models"
	"pos-taskbridge/internal/normalize"
	"pos-taskbridge/internal/notify"
	"pos-taskbridge/internal/transport"
)

// CreatorConfig is the integration section of the point of sale
type CreatorConfig struct {
	Enabled    bool
	ProjectRef any
}

// TaskCreator creates one task per validated order, referencing the saved
// order instead of sending its lines
type TaskCreator struct {
	cfg       CreatorConfig
	assembler *normalize.Assembler
	submitter transport.Submitter
	notifier  notify.Notifier
	tr        i18n.Printer
	logger    *logger.Logger
}

// NewTaskCreator creates a task creator, filling unset deps with defaults
func NewTaskCreator(cfg CreatorConfig, deps Deps) *TaskCreator {
	c := &TaskCreator{
		cfg:       cfg,
		assembler: deps.Assembler,
		submitter: deps.Submitter,
		notifier:  deps.Notifier,
		tr:        deps.Printer,
		logger:    deps.Logger,
	}
	if c.tr == nil {
		c.tr = i18n.English()
	}
	if c.logger == nil {
		c.logger = logger.Discard()
	}
	if c.notifier == nil {
		c.notifier = notify.NewLogNotifier(c.logger)
	}
	if c.assembler == nil {
		c.assembler = normalize.NewAssembler(c.logger, c.tr)
	}
	return c
}

// Enabled reports whether the integration is on and has a project
func (c *TaskCreator) Enabled() bool {
	_, err := c.projectID()
	return err == nil
}

func (c *TaskCreator) projectID() (int64, error) {
	if !c.cfg.Enabled {
		return 0, &models.ConfigurationError{Reason: "project integration is not enabled"}
	}
	return normalize.ResolveProjectID(c.cfg.ProjectRef)
}

// CreateTask submits order as a single-order task
func (c *TaskCreator) CreateTask(ctx context.Context, order normalize.Record) models.TaskResult {
	requestID := logger.GenerateRequestID()

	projectID, err := c.projectID()
	if err != nil {
		c.logger.Warn("create_task", "Project integration unavailable", requestID, map[string]any{"reason": err.Error()})
		return c.failed(c.tr.Sprintf("Project integration is not enabled"))
	}
	if order == nil {
		return c.failed(c.tr.Sprintf("No order selected"))
	}
	if c.assembler.LineCount(order) == 0 {
		verr := models.ValidationError{Field: "orderlines", Message: "order has no lines"}
		c.logger.Warn("create_task", "Rejected order", requestID, map[string]any{"error": verr.Error()})
		return c.failed(c.tr.Sprintf("No products in the order"))
	}
	orderID, ok := c.assembler.BackendID(order)
	if !ok {
		return c.failed(c.tr.Sprintf("Order could not be saved"))
	}

	fields := map[string]any{"order_id": orderID, "project_id": projectID}
	res, err := c.submitter.CreateTask(ctx, models.TaskRequest{OrderID: orderID, ProjectID: projectID})
	if err != nil {
		c.logger.Error("create_task", "Failed to create task", requestID, err, fields)
		return c.failed(c.tr.Sprintf("Error creating task"))
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = c.tr.Sprintf("Error creating task")
		}
		c.logger.Warn("create_task", "Task board rejected the task", requestID, map[string]any{
			"order_id": orderID,
			"message":  msg,
		})
		return c.failed(msg)
	}

	c.logger.Info("create_task", "Task created", requestID, fields)
	return models.TaskResult{
		Success: true,
		Message: c.tr.Sprintf("Task created successfully"),
		TaskID:  res.TaskID,
	}
}

// OrderValidated runs after the point of sale validates an order. Orders
// that were never saved, or a disabled integration, are ignored.
func (c *TaskCreator) OrderValidated(ctx context.Context, order normalize.Record) {
	if !c.Enabled() || order == nil {
		return
	}
	if _, ok := c.assembler.BackendID(order); !ok {
		return
	}

	res := c.CreateTask(ctx, order)
	level := models.NoticeSuccess
	if !res.Success {
		level = models.NoticeWarning
	}
	c.notifier.Notify(ctx, notify.Notice{Level: level, Message: res.Message})
}

func (c *TaskCreator) failed(msg string) models.TaskResult {
	return models.TaskResult{Success: false, Message: msg}
}
