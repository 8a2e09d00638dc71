// Package notify delivers user-visible notices about task submissions.
package notify

import (
	"context"
	"time"

	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/models"
)

// Notice is one message for the operator
type Notice struct {
	Level   models.NoticeLevel
	Message string
}

// Notifier shows notices; delivery problems never reach the caller
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// LogNotifier writes notices to the structured log
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a notifier writing to log
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// Notify logs notice at the level matching its severity
func (n *LogNotifier) Notify(_ context.Context, notice Notice) {
	fields := map[string]any{"level": string(notice.Level)}
	switch notice.Level {
	case models.NoticeDanger:
		n.logger.Error("notice", notice.Message, "", nil, fields)
	case models.NoticeWarning:
		n.logger.Warn("notice", notice.Message, "", fields)
	default:
		n.logger.Info("notice", notice.Message, "", fields)
	}
}

// NotificationPublisher is the broker side of BroadcastNotifier
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, msg *models.NotificationMessage) error
}

// BroadcastNotifier fans notices out to every notification subscriber
type BroadcastNotifier struct {
	publisher NotificationPublisher
	source    string
	logger    *logger.Logger
	now       func() time.Time
}

// NewBroadcastNotifier creates a notifier publishing as source
func NewBroadcastNotifier(pub NotificationPublisher, source string, log *logger.Logger) *BroadcastNotifier {
	return &BroadcastNotifier{
		publisher: pub,
		source:    source,
		logger:    log,
		now:       time.Now,
	}
}

// Notify publishes notice; publish failures are only logged
func (n *BroadcastNotifier) Notify(ctx context.Context, notice Notice) {
	msg := &models.NotificationMessage{
		Level:     notice.Level,
		Message:   notice.Message,
		Source:    n.source,
		Timestamp: n.now().UTC(),
	}
	if err := n.publisher.PublishNotification(ctx, msg); err != nil {
		n.logger.Error("notice_broadcast_failed", "Failed to broadcast notice", "", err, map[string]any{
			"level":   string(notice.Level),
			"message": notice.Message,
		})
	}
}

// Multi sends every notice to all notifiers in order
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, notice Notice) {
	for _, n := range m {
		n.Notify(ctx, notice)
	}
}
