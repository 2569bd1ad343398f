package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/2025-Database-Soongsil/database/internal/config"
	"github.com/2025-Database-Soongsil/database/internal/logging"
	"github.com/2025-Database-Soongsil/database/internal/notify"
	"github.com/2025-Database-Soongsil/database/internal/webhook"
)

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger interface
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Run starts the Asynq worker server and blocks until shutdown signal.
// Use this for standalone worker mode.
func Run(cfg *config.Config, materializer *notify.Materializer, webhookClient *webhook.Client) error {
	srv, mux, err := newServer(cfg, materializer, webhookClient)
	if err != nil {
		return err
	}
	return srv.Run(mux)
}

// Start starts the Asynq worker in non-blocking mode and returns a stop function.
// Use this for embedded mode so the caller can coordinate shutdown.
func Start(cfg *config.Config, materializer *notify.Materializer, webhookClient *webhook.Client) (stop func(), err error) {
	srv, mux, err := newServer(cfg, materializer, webhookClient)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return func() { srv.Shutdown() }, nil
}

func newServer(cfg *config.Config, materializer *notify.Materializer, webhookClient *webhook.Client) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	// Dedicated Redis client for the sweep's last-run cache, separate from
	// the Asynq internal connection.
	rdb, err := newSweepRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sweep Redis client: %w", err)
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNotificationsSweep, handleNotificationsSweep(logger, materializer, webhookClient, rdb))

	logger.Info("Worker starting", "concurrency", 5, "redis", cfg.RedisURL)
	return srv, mux, nil
}

func makeErrorHandler(logger *slog.Logger) func(ctx context.Context, task *asynq.Task, err error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		logger.Error("Task failed", "type", task.Type(), "error", err)
	}
}

func newSweepRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// sweepLastRunKey guards against double delivery when the scheduler fires the
// same minute twice (e.g. across a restart).
const sweepLastRunKey = "notifications:sweep:last_run"

// handleNotificationsSweep delivers all due notifications and marks them sent.
// A notification whose delivery fails stays unsent and is retried on the next
// sweep.
func handleNotificationsSweep(logger *slog.Logger, materializer *notify.Materializer, webhookClient *webhook.Client, rdb *redis.Client) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		now := time.Now()
		minute := now.Format("2006-01-02T15:04")
		logger := logger.With("run_id", uuid.NewString())

		// Claim this minute; a second sweep in the same minute is a no-op.
		// Redis being down degrades to sweeping anyway: delivery is
		// guarded by is_sent, duplication here only costs extra reads.
		claimed, err := rdb.SetNX(ctx, sweepLastRunKey, minute, 2*time.Minute).Result()
		if err != nil {
			logger.Warn("sweep last-run cache unavailable", "error", err)
		} else if !claimed {
			last, _ := rdb.Get(ctx, sweepLastRunKey).Result()
			if last == minute {
				logger.Debug("sweep already ran this minute, skipping")
				return nil
			}
			rdb.Set(ctx, sweepLastRunKey, minute, 2*time.Minute)
		}

		due, err := materializer.Due(ctx, now)
		if err != nil {
			return fmt.Errorf("failed to collect due notifications: %w", err)
		}
		if len(due) == 0 {
			return nil
		}

		logger.Info("Processing notifications:sweep task", "due", len(due))

		var delivered, failed int
		for _, n := range due {
			err := webhookClient.Deliver(ctx, webhook.Payload{
				NotificationID: n.ID,
				UserID:         n.UserID,
				Title:          n.Title,
				NotifyTime:     n.NotifyTime,
			})
			if err != nil {
				failed++
				logger.Error("Notification delivery failed",
					"notification_id", n.ID, "user_id", n.UserID, "error", err)
				continue
			}
			if err := materializer.MarkSent(ctx, n.ID); err != nil {
				failed++
				logger.Error("Failed to mark notification sent",
					"notification_id", n.ID, "error", err)
				continue
			}
			delivered++
		}

		logger.Info("Sweep completed", "delivered", delivered, "failed", failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d deliveries failed", failed, len(due))
		}
		return nil
	}
}
