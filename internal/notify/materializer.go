// Package notify materializes and delivers notifications for calendar events.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/2025-Database-Soongsil/database/internal/metrics"
	"github.com/2025-Database-Soongsil/database/internal/models"
	"github.com/2025-Database-Soongsil/database/internal/store"
	"gorm.io/gorm"
)

// Materializer ensures each calendar event has exactly one pending
// notification per scheduled time.
type Materializer struct {
	store  *store.Store
	logger *slog.Logger
}

// NewMaterializer creates a Materializer
func NewMaterializer(st *store.Store, logger *slog.Logger) *Materializer {
	return &Materializer{store: st, logger: logger}
}

// EnsureForEvent guarantees at most one notification exists for the event's
// start time. An existing row is returned unchanged. When the user has
// notifications disabled and no row exists yet, nothing is created and
// (nil, nil) is returned.
func (m *Materializer) EnsureForEvent(ctx context.Context, event *models.CalendarEvent) (*models.Notification, error) {
	existing, err := m.store.NotificationByEventAndTime(ctx, event.ID, event.StartDatetime)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up notification: %w", err)
	}

	enabled, err := m.store.NotificationEnabled(ctx, event.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to read notification flag: %w", err)
	}
	if !enabled {
		metrics.SuppressedNotifications.Inc()
		m.logger.Debug("notification suppressed, user disabled notifications",
			"user_id", event.UserID, "event_id", event.ID)
		return nil, nil
	}

	return m.store.EnsureNotification(ctx, event.ID, event.StartDatetime)
}

// MarkSent transitions a notification to sent. Repeat calls are no-ops.
func (m *Materializer) MarkSent(ctx context.Context, notificationID int64) error {
	return m.store.MarkNotificationSent(ctx, notificationID)
}

// DueNotification is a pending notification joined to its owning event for delivery
type DueNotification struct {
	ID         int64     `json:"id"`
	EventID    int64     `json:"event_id"`
	NotifyTime time.Time `json:"notify_time"`
	IsSent     bool      `json:"is_sent"`
	Title      string    `json:"title"`
	UserID     int64     `json:"user_id"`
}

// Due returns all unsent notifications scheduled at or before now, each joined
// to its owning event. Notifications whose event has been deleted are dropped,
// not errored: the row is unreachable garbage, not a delivery failure.
func (m *Materializer) Due(ctx context.Context, now time.Time) ([]DueNotification, error) {
	pending, err := m.store.UnsentNotificationsBefore(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due notifications: %w", err)
	}

	due := make([]DueNotification, 0, len(pending))
	for _, n := range pending {
		event, err := m.store.EventByID(ctx, n.EventID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.OrphanedNotifications.Inc()
			m.logger.Warn("dropping orphaned notification", "notification_id", n.ID, "event_id", n.EventID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch owning event: %w", err)
		}
		due = append(due, DueNotification{
			ID:         n.ID,
			EventID:    n.EventID,
			NotifyTime: n.NotifyTime,
			IsSent:     n.IsSent,
			Title:      event.Title,
			UserID:     event.UserID,
		})
	}
	return due, nil
}
