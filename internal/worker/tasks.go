package worker

import (
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskNotificationsSweep = "notifications:sweep"
)

// Package-level Asynq client (singleton)
var client *asynq.Client

// InitClient initializes the global Asynq client for task enqueueing.
// Must be called before any EnqueueX functions.
func InitClient(redisURL string) error {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return err
	}

	client = asynq.NewClient(opt)
	return nil
}

// CloseClient closes the Asynq client connection gracefully.
func CloseClient() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// EnqueueNotificationsSweep enqueues an immediate delivery sweep, outside the
// regular schedule. Used by operational tooling after bulk changes.
func EnqueueNotificationsSweep() error {
	task := asynq.NewTask(
		TaskNotificationsSweep,
		nil,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	_, err := client.Enqueue(task)
	return err
}
