package taskboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-taskbridge/internal/i18n"
	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/models"
	"pos-taskbridge/internal/normalize"
)

var serviceNow = time.Date(2025, time.March, 7, 9, 5, 30, 0, time.UTC)

type fakeStore struct {
	projects map[int64]*models.Project
	orders   map[int64]*models.PosOrder
	tasks    []*models.Task
	links    map[int64]int64
	err      error
	pingErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: map[int64]*models.Project{3: {ID: 3, Name: "Kitchen"}},
		orders:   map[int64]*models.PosOrder{},
		links:    map[int64]int64{},
	}
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

func (s *fakeStore) GetProject(_ context.Context, id int64) (*models.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) InsertTask(_ context.Context, task *models.Task) error {
	if s.err != nil {
		return s.err
	}
	task.ID = int64(len(s.tasks) + 1)
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *fakeStore) InsertOrderTask(ctx context.Context, task *models.Task, orderID int64) error {
	if err := s.InsertTask(ctx, task); err != nil {
		return err
	}
	s.links[orderID] = task.ID
	return nil
}

func (s *fakeStore) ListTasks(_ context.Context, projectID int64) ([]models.Task, error) {
	var out []models.Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeStore) GetPosOrder(_ context.Context, id int64) (*models.PosOrder, error) {
	if s.err != nil {
		return nil, s.err
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func newTestService(t *testing.T, store Store, tr i18n.Printer) *Service {
	t.Helper()
	clock := func() time.Time { return serviceNow }
	names := normalize.NewNameSynthesizer(tr, normalize.WithClock(clock), normalize.WithRandom(func(int) int { return 42 }))
	s, err := NewService(store, tr, logger.Discard(), WithClock(clock), WithNames(names))
	require.NoError(t, err)
	return s
}

func preparationData(name string) *models.OrderData {
	data := models.NewOrderData(3)
	data.Name = name
	data.OrderLines = []models.OrderLine{{ProductID: 7, ProductName: "Burger", Quantity: decimal.NewFromInt(2)}}
	return data
}

func TestService_CreatePreparationTask(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, nil)

	data := preparationData("Order 00012-003-0004")
	data.Customer = &models.Customer{ID: 11, Name: "Ana"}

	res, err := s.CreatePreparationTask(context.Background(), &models.PreparationTaskRequest{OrderData: data}, "req-1")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "Preparation task created successfully", res.Message)
	require.NotNil(t, res.TaskID)
	require.Len(t, store.tasks, 1)

	task := store.tasks[0]
	assert.Equal(t, *res.TaskID, task.ID)
	assert.Equal(t, int64(3), task.ProjectID)
	assert.Equal(t, "Order 00012-003-0004", task.Name)
	assert.Equal(t, time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC), task.Deadline)
	assert.Equal(t, int64Ptr(11), task.PartnerID)
	assert.Contains(t, task.Description, "Burger")
}

func TestService_PreparationTaskName(t *testing.T) {
	tests := []struct {
		name    string
		order   string
		reprint bool
		added   bool
		want    string
	}{
		{"conventional name", "Order 00012-003-0004", false, false, "Order 00012-003-0004"},
		{"reprint marker kept", "Order 00012-003-0004 (Reprint)", true, false, "Order 00012-003-0004 (Reprint)"},
		{"flag alone does not mark a named order", "Order 00012-003-0004", true, false, "Order 00012-003-0004"},
		{"added order", "Order 00012-003-0004", false, true, "Order 00012-003-0004 (Added)"},
		{"token without prefix", "POS/1-2-3", false, false, "Order 1-2-3"},
		{"synthesized", "Table 4", false, false, "Order 250307-0905-1042"},
		{"synthesized reprint and added", "", true, true, "Order 250307-0905-1042 (Reprint) (Added)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			s := newTestService(t, store, nil)

			data := preparationData(tt.order)
			data.Reprint = tt.reprint
			data.IsAddedOrder = tt.added

			res, err := s.CreatePreparationTask(context.Background(), &models.PreparationTaskRequest{OrderData: data}, "")
			require.NoError(t, err)
			require.True(t, res.Success)
			assert.Equal(t, tt.want, store.tasks[0].Name)
		})
	}
}

func TestService_SpanishMarkers(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, i18n.NewPrinter("es"))

	data := preparationData("Order 1-2-3 (Reimpresión)")
	data.IsAddedOrder = true

	res, err := s.CreatePreparationTask(context.Background(), &models.PreparationTaskRequest{OrderData: data}, "")
	require.NoError(t, err)
	assert.Equal(t, "Se creó la tarea de preparación correctamente", res.Message)
	assert.Equal(t, "Order 1-2-3 (Reimpresión) (Agregado)", store.tasks[0].Name)
}

func TestService_CreatePreparationTaskRejections(t *testing.T) {
	tests := []struct {
		name string
		req  *models.PreparationTaskRequest
		want string
	}{
		{"no data", &models.PreparationTaskRequest{}, "No order data provided"},
		{"no project", &models.PreparationTaskRequest{OrderData: &models.OrderData{OrderLines: preparationData("").OrderLines}}, "No project id provided"},
		{"unknown project", &models.PreparationTaskRequest{OrderData: func() *models.OrderData {
			d := preparationData("")
			d.ProjectID = 99
			return d
		}()}, "Project not found"},
		{"no lines", &models.PreparationTaskRequest{OrderData: models.NewOrderData(3)}, "order_data.order_lines: must have at least 1 items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			s := newTestService(t, store, nil)

			res, err := s.CreatePreparationTask(context.Background(), tt.req, "")
			require.NoError(t, err)
			assert.Equal(t, &models.TaskResult{Success: false, Message: tt.want}, res)
			assert.Empty(t, store.tasks)
		})
	}
}

func TestService_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection reset")
	s := newTestService(t, store, nil)

	_, err := s.CreatePreparationTask(context.Background(), &models.PreparationTaskRequest{OrderData: preparationData("")}, "")
	assert.ErrorContains(t, err, "connection reset")

	_, err = s.CreateOrderTask(context.Background(), models.TaskRequest{OrderID: 5}, "")
	assert.ErrorContains(t, err, "connection reset")
}

func savedPosOrder(id int64, name string) *models.PosOrder {
	return &models.PosOrder{
		ID:           id,
		Name:         name,
		CustomerID:   int64Ptr(11),
		CustomerName: strPtr("Ana"),
		ProjectID:    int64Ptr(3),
		AmountTotal:  decimal.RequireFromString("20.5"),
		CreatedAt:    time.Date(2025, time.March, 6, 21, 15, 0, 0, time.UTC),
		Lines: []models.PosOrderLine{
			{ID: 1, OrderID: id, ProductName: "Burger", Quantity: decimal.NewFromInt(2), PriceUnit: decimal.RequireFromString("10.25")},
		},
	}
}

func TestService_CreateOrderTask(t *testing.T) {
	tests := []struct {
		name     string
		order    *models.PosOrder
		req      models.TaskRequest
		wantName string
		wantMsg  string
	}{
		{
			name:     "conventional name",
			order:    savedPosOrder(5, "Order 00012-003-0004"),
			req:      models.TaskRequest{OrderID: 5, ProjectID: 3},
			wantName: "Order 00012-003-0004",
		},
		{
			name:     "project from order config",
			order:    savedPosOrder(5, "Shop/0042"),
			req:      models.TaskRequest{OrderID: 5},
			wantName: "Order 250307-0005",
		},
		{
			name:    "missing order id",
			req:     models.TaskRequest{ProjectID: 3},
			wantMsg: "No order id provided",
		},
		{
			name:    "unknown order",
			req:     models.TaskRequest{OrderID: 8, ProjectID: 3},
			wantMsg: "Order not found",
		},
		{
			name: "no project anywhere",
			order: func() *models.PosOrder {
				o := savedPosOrder(5, "Order 1-2-3")
				o.ProjectID = nil
				return o
			}(),
			req:     models.TaskRequest{OrderID: 5},
			wantMsg: "No project configured",
		},
		{
			name:    "unknown project",
			order:   savedPosOrder(5, "Order 1-2-3"),
			req:     models.TaskRequest{OrderID: 5, ProjectID: 99},
			wantMsg: "Project not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			if tt.order != nil {
				store.orders[tt.order.ID] = tt.order
			}
			s := newTestService(t, store, nil)

			res, err := s.CreateOrderTask(context.Background(), tt.req, "")
			require.NoError(t, err)

			if tt.wantMsg != "" {
				assert.Equal(t, &models.TaskResult{Success: false, Message: tt.wantMsg}, res)
				assert.Empty(t, store.tasks)
				return
			}

			require.True(t, res.Success)
			assert.Equal(t, "Task created successfully", res.Message)
			require.Len(t, store.tasks, 1)
			task := store.tasks[0]
			assert.Equal(t, tt.wantName, task.Name)
			assert.Equal(t, time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC), task.Deadline)
			assert.Equal(t, int64Ptr(11), task.PartnerID)
			assert.Equal(t, task.ID, store.links[tt.order.ID])
		})
	}
}

func TestService_HealthCheck(t *testing.T) {
	store := newFakeStore()
	s := newTestService(t, store, nil)
	assert.True(t, s.HealthCheck(context.Background()))

	store.pingErr = errors.New("down")
	assert.False(t, s.HealthCheck(context.Background()))
}
