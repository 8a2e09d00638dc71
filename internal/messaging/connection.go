package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"

	"pos-taskbridge/internal/config"
	"pos-taskbridge/internal/logger"
)

// Exchange and queue names shared by publishers and consumers
const (
	TasksExchange         = "project_tasks"
	TaskRequestsQueue     = "project_task_requests"
	NotificationsExchange = "notifications_fanout"
	NotificationsQueue    = "notifications_queue"
)

const connectAttempts = 5

// Connection wraps RabbitMQ connection with reconnection logic
type Connection struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *logger.Logger
	url     string
	backoff time.Duration
}

// New creates a new RabbitMQ connection
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Connection, error) {
	conn := &Connection{
		logger:  log,
		url:     cfg.RabbitMQURL(),
		backoff: 2 * time.Second,
	}

	if err := conn.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}
	return conn, nil
}

// connect dials RabbitMQ and declares the topology, retrying with exponential backoff
func (c *Connection) connect(ctx context.Context) error {
	backoff := retry.WithMaxRetries(connectAttempts-1, retry.NewExponential(c.backoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := c.dial(); err != nil {
			c.logger.Error("rabbitmq_connection_failed", "Failed to connect to RabbitMQ, retrying", "startup", err, map[string]any{
				"attempt": attempt,
			})
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempt, err)
	}
	return nil
}

func (c *Connection) dial() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	c.conn, c.channel = conn, ch
	if err := c.setupTopology(); err != nil {
		c.close()
		return err
	}
	return nil
}

// setupTopology creates exchanges and queues
func (c *Connection) setupTopology() error {
	err := c.channel.ExchangeDeclare(
		TasksExchange, // name
		"topic",       // type
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", TasksExchange, err)
	}

	err = c.channel.ExchangeDeclare(
		NotificationsExchange, // name
		"fanout",              // type
		true,                  // durable
		false,                 // auto-deleted
		false,                 // internal
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", NotificationsExchange, err)
	}

	_, err = c.channel.QueueDeclare(
		TaskRequestsQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", TaskRequestsQueue, err)
	}

	if err = c.channel.QueueBind(TaskRequestsQueue, "task.*", TasksExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", TaskRequestsQueue, err)
	}

	_, err = c.channel.QueueDeclare(
		NotificationsQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		amqp091.Table{
			"x-message-ttl": 300000, // 5 minutes TTL
		},
	)
	if err != nil {
		return fmt.Errorf("failed to declare notifications queue: %w", err)
	}

	// routing key is ignored for fanout
	if err = c.channel.QueueBind(NotificationsQueue, "", NotificationsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind notifications queue: %w", err)
	}
	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp091.Channel {
	return c.channel
}

// Close closes the connection
func (c *Connection) Close() error {
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsClosed checks if the connection is closed
func (c *Connection) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

// Reconnect attempts to reconnect to RabbitMQ
func (c *Connection) Reconnect(ctx context.Context) error {
	c.close()
	return c.connect(ctx)
}
