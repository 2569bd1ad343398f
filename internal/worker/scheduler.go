package worker

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/2025-Database-Soongsil/database/internal/config"
	"github.com/2025-Database-Soongsil/database/internal/logging"
)

// StartScheduler creates and starts an Asynq Scheduler that fires the
// notification delivery sweep on the configured cron expression.
// Returns a stop function for graceful shutdown.
func StartScheduler(cfg *config.Config) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)

	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: cfg.Location(),
			LogLevel: asynq.InfoLevel,
			Logger:   &asynqLoggerAdapter{logger: logger},
		},
	)

	task := asynq.NewTask(
		TaskNotificationsSweep,
		nil,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(time.Minute), // one sweep in flight per tick
	)

	entryID, err := scheduler.Register(cfg.SweepSchedule, task)
	if err != nil {
		return nil, fmt.Errorf("failed to register sweep schedule: %w", err)
	}

	if err := scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info("Scheduler started",
		"schedule", cfg.SweepSchedule,
		"timezone", cfg.Timezone,
		"entry_id", entryID,
	)

	return func() { scheduler.Shutdown() }, nil
}
