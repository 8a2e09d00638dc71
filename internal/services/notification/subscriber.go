package notification

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/messaging"
	"pos-taskbridge/internal/models"
)

// Consumer delivers notification messages to a handler
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints broadcast notices for operators
type Subscriber struct {
	consumer Consumer
	out      io.Writer
	logger   *logger.Logger
}

// NewSubscriber creates a subscriber writing one line per notice to out
func NewSubscriber(consumer Consumer, out io.Writer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		out:      out,
		logger:   log,
	}
}

// Start consumes notices until ctx is done
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleNotification)
	if errors.Is(err, context.Canceled) {
		return s.gracefulShutdown(requestID)
	}
	if err != nil {
		s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
	}
	return err
}

// handleNotification processes one broadcast notice
func (s *Subscriber) handleNotification(_ context.Context, body []byte) error {
	var msg models.NotificationMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(s.out, formatNotification(&msg)); err != nil {
		return fmt.Errorf("failed to display notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed to user", "", map[string]any{
		"level":     string(msg.Level),
		"source":    msg.Source,
		"timestamp": msg.Timestamp.Format("2006-01-02 15:04:05"),
	})
	return nil
}

// formatNotification creates a human-readable notification line
func formatNotification(msg *models.NotificationMessage) string {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")

	var icon string
	switch msg.Level {
	case models.NoticeSuccess:
		icon = "✅"
	case models.NoticeWarning:
		icon = "⚠️"
	case models.NoticeDanger:
		icon = "❌"
	default:
		icon = "📋"
	}

	if msg.Source == "" {
		return fmt.Sprintf("%s [%s] %s", icon, timestamp, msg.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", icon, timestamp, msg.Source, msg.Message)
}

func (s *Subscriber) gracefulShutdown(requestID string) error {
	s.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, nil)

	if err := s.consumer.Close(); err != nil {
		s.logger.Error("graceful_shutdown", "Failed to close consumer", requestID, err, nil)
	}

	s.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return nil
}
