package taskboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-taskbridge/internal/models"
)

func int64Ptr(n int64) *int64 { return &n }
func strPtr(s string) *string { return &s }

func newMockRepository(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestRepository_GetProject(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM projects WHERE id").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at"}).AddRow(int64(3), "Kitchen", created))
	mock.ExpectQuery("FROM projects WHERE id").
		WithArgs(int64(4)).
		WillReturnError(pgx.ErrNoRows)

	p, err := repo.GetProject(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, &models.Project{ID: 3, Name: "Kitchen", CreatedAt: created}, p)

	_, err = repo.GetProject(context.Background(), 4)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertTask(t *testing.T) {
	repo, mock := newMockRepository(t)
	deadline := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	created := deadline.Add(9 * time.Hour)

	task := &models.Task{ProjectID: 3, Name: "Order 1-2-3", Description: "<p></p>", Deadline: deadline, PartnerID: int64Ptr(11)}

	mock.ExpectQuery("INSERT INTO project_tasks").
		WithArgs(int64(3), "Order 1-2-3", "<p></p>", deadline, int64Ptr(11)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), created))

	require.NoError(t, repo.InsertTask(context.Background(), task))
	assert.Equal(t, int64(42), task.ID)
	assert.Equal(t, created, task.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertOrderTask(t *testing.T) {
	t.Run("commits task and link", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		task := &models.Task{ProjectID: 3, Name: "Order 1-2-3"}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO project_tasks").
			WithArgs(int64(3), "Order 1-2-3", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))
		mock.ExpectExec("INSERT INTO order_task_links").
			WithArgs(int64(5), int64(7)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		require.NoError(t, repo.InsertOrderTask(context.Background(), task, 5))
		assert.Equal(t, int64(7), task.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("link failure rolls back", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO project_tasks").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), time.Now()))
		mock.ExpectExec("INSERT INTO order_task_links").
			WithArgs(int64(5), int64(7)).
			WillReturnError(errors.New("foreign key violation"))
		mock.ExpectRollback()

		err := repo.InsertOrderTask(context.Background(), &models.Task{ProjectID: 3}, 5)
		assert.ErrorContains(t, err, "failed to link order 5")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ListTasks(t *testing.T) {
	repo, mock := newMockRepository(t)
	day := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM project_tasks").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "project_id", "name", "description", "date_deadline", "partner_id", "created_at"}).
			AddRow(int64(1), int64(3), "Order 1-2-3", "<p>a</p>", day, int64Ptr(11), day).
			AddRow(int64(2), int64(3), "Order 1-2-4", "<p>b</p>", day, int64Ptr(12), day))

	tasks, err := repo.ListTasks(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Order 1-2-4", tasks[1].Name)
	assert.Equal(t, int64Ptr(11), tasks[0].PartnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetPosOrder(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2025, 3, 7, 12, 30, 0, 0, time.UTC)

	mock.ExpectQuery("FROM pos_orders WHERE id").
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "table_name", "server_name", "customer_id", "customer_name",
			"note", "project_id", "amount_total", "created_at",
		}).AddRow(int64(5), "Order 00012-003-0004", strPtr("T4"), strPtr("Luis"), int64Ptr(11), strPtr("Ana"),
			"rush", int64Ptr(3), "25.50", created))
	mock.ExpectQuery("FROM pos_order_lines").
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "qty", "price_unit", "note"}).
			AddRow(int64(1), int64(5), int64(7), "Burger", "2", "10.25", "no onions").
			AddRow(int64(2), int64(5), int64(8), "Soda", "1", "5", ""))

	o, err := repo.GetPosOrder(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "Order 00012-003-0004", o.Name)
	assert.Equal(t, strPtr("T4"), o.TableName)
	assert.Equal(t, "25.5", o.AmountTotal.String())
	require.Len(t, o.Lines, 2)
	assert.Equal(t, "20.5", o.Lines[0].Subtotal().String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetPosOrderNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("FROM pos_orders WHERE id").
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetPosOrder(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}
