package store

import (
	"context"
	"fmt"
	"time"

	"github.com/2025-Database-Soongsil/database/internal/models"
	"gorm.io/gorm/clause"
)

// NotificationByID fetches one notification
func (s *Store) NotificationByID(ctx context.Context, notificationID int64) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.WithContext(ctx).First(&notification, notificationID).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// NotificationByEventAndTime fetches a notification by its natural key
func (s *Store) NotificationByEventAndTime(ctx context.Context, eventID int64, notifyTime time.Time) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND notify_time = ?", eventID, notifyTime).
		First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// EnsureNotification inserts a pending notification for (event_id, notify_time)
// unless one already exists. The conditional insert rides on the unique index,
// so concurrent callers cannot create duplicates.
func (s *Store) EnsureNotification(ctx context.Context, eventID int64, notifyTime time.Time) (*models.Notification, error) {
	notification := models.Notification{
		EventID:    eventID,
		NotifyTime: notifyTime,
		IsSent:     false,
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "event_id"},
				{Name: "notify_time"},
			},
			DoNothing: true,
		}).
		Create(&notification)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to ensure notification: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return &notification, nil
	}

	var existing models.Notification
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND notify_time = ?", eventID, notifyTime).
		First(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing notification: %w", err)
	}
	return &existing, nil
}

// MarkNotificationSent flips is_sent to true. The transition is one-way and
// repeat calls are harmless no-ops.
func (s *Store) MarkNotificationSent(ctx context.Context, notificationID int64) error {
	return s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Update("is_sent", true).Error
}

// UnsentNotificationsBefore returns notifications with notify_time <= now that
// have not been sent yet.
func (s *Store) UnsentNotificationsBefore(ctx context.Context, now time.Time) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("notify_time <= ? AND is_sent = ?", now, false).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}
