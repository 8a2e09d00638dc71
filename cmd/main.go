package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pos-taskbridge/internal/config"
	"pos-taskbridge/internal/database"
	"pos-taskbridge/internal/i18n"
	"pos-taskbridge/internal/logger"
	"pos-taskbridge/internal/messaging"
	"pos-taskbridge/internal/notify"
	"pos-taskbridge/internal/services/notification"
	"pos-taskbridge/internal/services/taskboard"
	"pos-taskbridge/migrations"
)

const serviceName = "pos-taskbridge"

type globalOptions struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Turn point of sale orders into project tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "Path to the configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	cmd.AddCommand(
		newTaskboardCommand(opts),
		newTaskWorkerCommand(opts),
		newSubscriberCommand(opts),
		newNormalizeCommand(opts),
		newPrintCommand(opts),
		newCreateTaskCommand(opts),
	)
	return cmd
}

// load reads the configuration and builds a logger for one mode. CLI modes
// log to stderr so stdout stays machine readable.
func (o *globalOptions) load(mode string, stderr bool) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	out := os.Stdout
	if stderr {
		out = os.Stderr
	}
	return cfg, logger.NewWithWriter(mode, cfg.Log.Level, out), nil
}

func newTaskboardCommand(opts *globalOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "taskboard",
		Short: "Serve the project task board API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load("taskboard", false)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return runTaskboard(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP port")
	return cmd
}

func newTaskWorkerCommand(opts *globalOptions) *cobra.Command {
	var (
		workerName string
		prefetch   int
	)
	cmd := &cobra.Command{
		Use:   "task-worker",
		Short: "Create tasks from queued task requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workerName == "" {
				return errors.New("--worker-name is required")
			}
			cfg, log, err := opts.load("task-worker", false)
			if err != nil {
				return err
			}
			return runTaskWorker(cmd.Context(), cfg, log, workerName, prefetch)
		},
	}
	cmd.Flags().StringVar(&workerName, "worker-name", "", "Unique worker name")
	cmd.Flags().IntVar(&prefetch, "prefetch", 1, "RabbitMQ prefetch count")
	return cmd
}

func newSubscriberCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notification-subscriber",
		Short: "Print task notices as they are broadcast",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load("notification-subscriber", true)
			if err != nil {
				return err
			}
			return runNotificationSubscriber(cmd.Context(), cfg, log)
		},
	}
}

func runTaskboard(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()
	log.Info("service_started", "Starting task board", requestID, map[string]any{"port": cfg.Server.Port})

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool, migrations.FS, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	service, err := taskboard.NewService(taskboard.NewRepository(db.Pool), i18n.NewPrinter(cfg.Integration.Locale), log)
	if err != nil {
		return err
	}
	handler := taskboard.NewHandler(service, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_listening", fmt.Sprintf("Task board listening on port %d", cfg.Server.Port), requestID, nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("graceful_shutdown", "Shutting down task board", requestID, nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("service_stopped", "Task board stopped", requestID, nil)
	return nil
}

func runTaskWorker(ctx context.Context, cfg *config.Config, log *logger.Logger, workerName string, prefetch int) error {
	requestID := logger.GenerateRequestID()
	log.Info("service_started", "Starting task worker", requestID, map[string]any{
		"worker_name": workerName,
		"prefetch":    prefetch,
	})

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	service, err := taskboard.NewService(taskboard.NewRepository(db.Pool), i18n.NewPrinter(cfg.Integration.Locale), log)
	if err != nil {
		return err
	}

	publisher := messaging.NewPublisher(conn, log)
	notifier := notify.Multi{
		notify.NewLogNotifier(log),
		notify.NewBroadcastNotifier(publisher, workerName, log),
	}

	consumer := messaging.NewConsumer(conn, log, messaging.TaskRequestsQueue, workerName, prefetch)
	defer consumer.Close()

	worker := taskboard.NewWorker(workerName, service, consumer, notifier, log)
	if err := worker.Start(ctx); err != nil {
		return err
	}

	log.Info("service_stopped", "Task worker stopped", requestID, nil)
	return nil
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()
	log.Info("service_started", "Starting notification subscriber", requestID, nil)

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", 10)
	subscriber := notification.NewSubscriber(consumer, os.Stdout, log)
	if err := subscriber.Start(ctx); err != nil {
		return err
	}

	log.Info("service_stopped", "Notification subscriber stopped", requestID, nil)
	return nil
}
