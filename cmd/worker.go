package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"servicebot/internal/app"
	"servicebot/internal/worker"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background routing worker",
	Long:  `Starts the Asynq worker process that routes completed conversations to their category's team.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get application context: %w", err)
		}
		if !appInstance.Config.Routing.Enabled {
			log.Warn("routing.enabled is false; the API will not enqueue routing tasks for this worker")
		}

		if err := runWorker(appInstance); err != nil {
			log.Errorf("Worker exited with error: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

// runWorker initializes and runs the Asynq worker server.
func runWorker(appInstance *app.App) error {
	cfg := appInstance.Config

	srv := asynq.NewServer(
		appInstance.RedisOpt(),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues:      cfg.Worker.Queues,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				taskID, _ := asynq.GetTaskID(ctx)
				log.WithFields(log.Fields{
					"task_id": taskID,
					"type":    task.Type(),
					"payload": string(task.Payload()),
				}).Errorf("Asynq task failed: %v", err)
			}),
			Logger:   log.StandardLogger(),
			LogLevel: asynq.InfoLevel,
		},
	)

	mux := asynq.NewServeMux()
	worker.RegisterHandlers(mux, worker.RoutingDeps{
		Conversations: appInstance.Store,
		JobStore:      appInstance.Store,
		Catalog:       appInstance.Catalog,
	})

	log.Infof("Starting Asynq worker server (Concurrency: %d, Queues: %v)...", cfg.Worker.Concurrency, cfg.Worker.Queues)
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start Asynq server: %w", err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	log.Info("Shutdown signal received. Initiating graceful shutdown...")
	srv.Shutdown()

	log.Info("Worker shutdown complete.")
	return nil
}
