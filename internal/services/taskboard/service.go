package taskboard

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"pos-taskbridge/internal/i18n"
	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/models"
	"pos-taskbridge/internal/normalize"
)

var orderTokenPattern = regexp.MustCompile(`(\d+-\d+-\d+)`)

// Store is the persistence the service needs
type Store interface {
	Ping(ctx context.Context) error
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	InsertTask(ctx context.Context, task *models.Task) error
	InsertOrderTask(ctx context.Context, task *models.Task, orderID int64) error
	ListTasks(ctx context.Context, projectID int64) ([]models.Task, error)
	GetPosOrder(ctx context.Context, id int64) (*models.PosOrder, error)
}

// Service creates project tasks from point of sale submissions.
// Business failures come back as a TaskResult with Success false; the
// returned error is reserved for storage and rendering faults.
type Service struct {
	store    Store
	describe *Describer
	names    *normalize.NameSynthesizer
	validate *validator.Validate
	tr       i18n.Printer
	logger   *logger.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithClock sets the clock used for deadlines, names and footers
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithNames sets the synthesizer for orders without a conventional name
func WithNames(names *normalize.NameSynthesizer) Option {
	return func(s *Service) {
		s.names = names
	}
}

// NewService creates a task board service over store
func NewService(store Store, tr i18n.Printer, log *logger.Logger, opts ...Option) (*Service, error) {
	if tr == nil {
		tr = i18n.English()
	}
	describe, err := NewDescriber(tr)
	if err != nil {
		return nil, err
	}

	s := &Service{
		store:    store,
		describe: describe,
		validate: newValidator(),
		tr:       tr,
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.names == nil {
		s.names = normalize.NewNameSynthesizer(tr, normalize.WithClock(s.now))
	}
	return s, nil
}

// CreatePreparationTask stores a task describing what to prepare for data
func (s *Service) CreatePreparationTask(ctx context.Context, req *models.PreparationTaskRequest, requestID string) (*models.TaskResult, error) {
	if req == nil || req.OrderData == nil {
		return s.rejected(requestID, s.tr.Sprintf("No order data provided"), nil), nil
	}
	data := req.OrderData
	if data.ProjectID <= 0 {
		return s.rejected(requestID, s.tr.Sprintf("No project id provided"), nil), nil
	}
	if err := validateRequest(s.validate, req); err != nil {
		return s.rejected(requestID, err.Error(), map[string]any{"project_id": data.ProjectID}), nil
	}

	project, err := s.store.GetProject(ctx, data.ProjectID)
	if errors.Is(err, ErrNotFound) {
		return s.rejected(requestID, s.tr.Sprintf("Project not found"), map[string]any{"project_id": data.ProjectID}), nil
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	description, err := s.describe.Preparation(data, now)
	if err != nil {
		s.logger.Error("description_failed", "Failed to render preparation description", requestID, err, nil)
		description = fmt.Sprintf("<p>%s</p>", s.tr.Sprintf("No name"))
	}

	task := &models.Task{
		ProjectID:   project.ID,
		Name:        s.preparationTaskName(data),
		Description: description,
		Deadline:    dateOf(now),
	}
	if data.Customer != nil && data.Customer.ID > 0 {
		id := data.Customer.ID
		task.PartnerID = &id
	}

	if err := s.store.InsertTask(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("preparation_task_created", "Preparation task created", requestID, map[string]any{
		"task_id":    task.ID,
		"task_name":  task.Name,
		"project_id": project.ID,
		"lines":      len(data.OrderLines),
	})
	return &models.TaskResult{
		Success: true,
		Message: s.tr.Sprintf("Preparation task created successfully"),
		TaskID:  &task.ID,
	}, nil
}

// preparationTaskName keeps the order token of data's name and carries its
// reprint and added markers over
func (s *Service) preparationTaskName(data *models.OrderData) string {
	reprint := s.names.ReprintSuffix()
	added := s.names.AddedSuffix()

	if m := orderTokenPattern.FindStringSubmatch(data.Name); m != nil {
		name := "Order " + m[1]
		if hasMarker(data.Name, reprint, " (Reprint)") {
			name += reprint
		}
		if data.IsAddedOrder || hasMarker(data.Name, added, " (Added)") {
			name += added
		}
		return name
	}

	name := s.names.Synthesize()
	if data.Reprint {
		name += reprint
	}
	if data.IsAddedOrder {
		name += added
	}
	return name
}

func hasMarker(name string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(name, strings.TrimSpace(m)) {
			return true
		}
	}
	return false
}

// CreateOrderTask stores a task for a saved order and links the two
func (s *Service) CreateOrderTask(ctx context.Context, req models.TaskRequest, requestID string) (*models.TaskResult, error) {
	if req.OrderID <= 0 {
		return s.rejected(requestID, s.tr.Sprintf("No order id provided"), nil), nil
	}

	order, err := s.store.GetPosOrder(ctx, req.OrderID)
	if errors.Is(err, ErrNotFound) {
		return s.rejected(requestID, s.tr.Sprintf("Order not found"), map[string]any{"order_id": req.OrderID}), nil
	}
	if err != nil {
		return nil, err
	}

	projectID := req.ProjectID
	if projectID <= 0 && order.ProjectID != nil {
		projectID = *order.ProjectID
	}
	if projectID <= 0 {
		return s.rejected(requestID, s.tr.Sprintf("No project configured"), map[string]any{"order": order.Name}), nil
	}

	project, err := s.store.GetProject(ctx, projectID)
	if errors.Is(err, ErrNotFound) {
		return s.rejected(requestID, s.tr.Sprintf("Project not found"), map[string]any{"project_id": projectID}), nil
	}
	if err != nil {
		return nil, err
	}

	description, err := s.describe.Order(order)
	if err != nil {
		s.logger.Error("description_failed", "Failed to render order description", requestID, err, nil)
		description = fmt.Sprintf("<p>%s: %s</p>", s.tr.Sprintf("Order"), order.Name)
	}

	task := &models.Task{
		ProjectID:   project.ID,
		Name:        s.orderTaskName(order),
		Description: description,
		Deadline:    dateOf(order.CreatedAt),
		PartnerID:   order.CustomerID,
	}
	if err := s.store.InsertOrderTask(ctx, task, order.ID); err != nil {
		return nil, err
	}

	s.logger.Info("order_task_created", "Order task created", requestID, map[string]any{
		"task_id":    task.ID,
		"task_name":  task.Name,
		"order_id":   order.ID,
		"project_id": project.ID,
	})
	return &models.TaskResult{
		Success: true,
		Message: s.tr.Sprintf("Task created successfully"),
		TaskID:  &task.ID,
	}, nil
}

func (s *Service) orderTaskName(o *models.PosOrder) string {
	if m := orderTokenPattern.FindStringSubmatch(o.Name); m != nil {
		return "Order " + m[1]
	}
	return fmt.Sprintf("Order %s-%04d", s.now().Format("060102"), o.ID)
}

// ListTasks returns the tasks of a project, oldest first
func (s *Service) ListTasks(ctx context.Context, projectID int64) ([]models.Task, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx, projectID)
}

// HealthCheck reports whether the store answers
func (s *Service) HealthCheck(ctx context.Context) bool {
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health_check_failed", "Store ping failed", "", map[string]any{"error": err.Error()})
		return false
	}
	return true
}

func (s *Service) rejected(requestID, message string, fields map[string]any) *models.TaskResult {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["reason"] = message
	s.logger.Warn("task_rejected", "Task request rejected", requestID, fields)
	return &models.TaskResult{Success: false, Message: message}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
