package taskboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pos-taskbridge/internal/database"
	"pos-taskbridge/internal/models"
)

// ErrNotFound is returned when a project or order does not exist
var ErrNotFound = errors.New("not found")

// Repository persists projects and tasks in PostgreSQL
type Repository struct {
	db database.Querier
}

// NewRepository creates a repository over db
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// GetProject loads a project, returning ErrNotFound when it does not exist
func (r *Repository) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	var p models.Project
	err := r.db.QueryRow(ctx, database.GetProjectSQL, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return &p, nil
}

// InsertTask stores task and fills in its id and creation time
func (r *Repository) InsertTask(ctx context.Context, task *models.Task) error {
	err := r.db.QueryRow(ctx, database.InsertTaskSQL,
		task.ProjectID, task.Name, task.Description, task.Deadline, task.PartnerID,
	).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// InsertOrderTask stores task and links it to the order in one transaction
func (r *Repository) InsertOrderTask(ctx context.Context, task *models.Task, orderID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, database.InsertTaskSQL,
		task.ProjectID, task.Name, task.Description, task.Deadline, task.PartnerID,
	).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	if _, err := tx.Exec(ctx, database.LinkOrderTaskSQL, orderID, task.ID); err != nil {
		return fmt.Errorf("failed to link order %d to task: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order task: %w", err)
	}
	return nil
}

// ListTasks returns the tasks of a project ordered by id
func (r *Repository) ListTasks(ctx context.Context, projectID int64) ([]models.Task, error) {
	rows, err := r.db.Query(ctx, database.ListProjectTasksSQL, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Description, &t.Deadline, &t.PartnerID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetPosOrder loads a saved order with its lines
func (r *Repository) GetPosOrder(ctx context.Context, id int64) (*models.PosOrder, error) {
	var o models.PosOrder
	err := r.db.QueryRow(ctx, database.GetPosOrderSQL, id).Scan(
		&o.ID,
		&o.Name,
		&o.TableName,
		&o.ServerName,
		&o.CustomerID,
		&o.CustomerName,
		&o.Note,
		&o.ProjectID,
		&o.AmountTotal,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}

	rows, err := r.db.Query(ctx, database.GetPosOrderLinesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.PosOrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.PriceUnit, &l.Note); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order lines: %w", err)
	}
	return &o, nil
}
