package models

import (
	"time"
)

// TaskRequest is the simple single-order task variant
type TaskRequest struct {
	OrderID   int64 `json:"order_id" validate:"required,gt=0"`
	ProjectID int64 `json:"project_id"`
}

// PreparationTaskRequest wraps a canonical payload on the wire
type PreparationTaskRequest struct {
	OrderData *OrderData `json:"order_data" validate:"required"`
}

// TaskResult is what the task backend answers for every submission
type TaskResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	TaskID  *int64 `json:"task_id,omitempty"`
}

// PrintMessage is the title/body pair shown by the notification collaborator
type PrintMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PrintResult is the structured outcome of every caller-facing operation
type PrintResult struct {
	Successful bool          `json:"successful"`
	Message    *PrintMessage `json:"message,omitempty"`
}

// Project is a task board project
type Project struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Task is a project task stored by the task board
type Task struct {
	ID          int64     `json:"id" db:"id"`
	ProjectID   int64     `json:"project_id" db:"project_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Deadline    time.Time `json:"date_deadline" db:"date_deadline"`
	PartnerID   *int64    `json:"partner_id,omitempty" db:"partner_id"`
	CreatedAt   time.Time `json:"created_at,omitempty" db:"created_at"`
}
