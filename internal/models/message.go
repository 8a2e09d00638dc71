package models

import (
	"time"
)

// TaskKind selects the backend operation a queued request runs
type TaskKind string

const (
	TaskKindPreparation TaskKind = "preparation"
	TaskKindOrder       TaskKind = "order"
)

// TaskRequestMessage is a task submission travelling over the broker
type TaskRequestMessage struct {
	Kind      TaskKind     `json:"kind"`
	RequestID string       `json:"request_id"`
	OrderData *OrderData   `json:"order_data,omitempty"`
	Order     *TaskRequest `json:"order,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// NoticeLevel is the severity of a user-visible notification
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeDanger  NoticeLevel = "danger"
)

// NotificationMessage is a notice broadcast to every subscriber
type NotificationMessage struct {
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewPreparationMessage wraps a canonical payload for the queue
func NewPreparationMessage(requestID string, data *OrderData) *TaskRequestMessage {
	return &TaskRequestMessage{
		Kind:      TaskKindPreparation,
		RequestID: requestID,
		OrderData: data,
		CreatedAt: time.Now().UTC(),
	}
}

// NewOrderTaskMessage wraps a single-order request for the queue
func NewOrderTaskMessage(requestID string, req TaskRequest) *TaskRequestMessage {
	return &TaskRequestMessage{
		Kind:      TaskKindOrder,
		RequestID: requestID,
		Order:     &req,
		CreatedAt: time.Now().UTC(),
	}
}

// RoutingKey returns the broker routing key of the message
func (m *TaskRequestMessage) RoutingKey() string {
	return "task." + string(m.Kind)
}
