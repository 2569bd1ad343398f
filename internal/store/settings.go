package store

import (
	"context"
	"errors"

	"github.com/2025-Database-Soongsil/database/internal/models"
	"gorm.io/gorm"
)

// SettingsByUser returns a user's reminder-time rows ordered by time of day
func (s *Store) SettingsByUser(ctx context.Context, userID int64) ([]models.UserSetting, error) {
	var settings []models.UserSetting
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("default_notify_time").
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// AddSettingTime adds a daily reminder time for the user. The shared
// notification_enabled flag is copied from an existing row, defaulting to true
// for the first one. Re-adding an existing time returns the existing row.
func (s *Store) AddSettingTime(ctx context.Context, userID int64, notifyTime string) (*models.UserSetting, error) {
	var existing models.UserSetting
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND default_notify_time = ?", userID, notifyTime).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enabled := true
	var sibling models.UserSetting
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sibling).Error; err == nil {
		enabled = sibling.NotificationEnabled
	}

	setting := models.UserSetting{
		UserID:              userID,
		NotificationEnabled: enabled,
		DefaultNotifyTime:   notifyTime,
	}
	if err := s.db.WithContext(ctx).Create(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// DeleteSettingTime removes one reminder time, reporting whether a row was removed
func (s *Store) DeleteSettingTime(ctx context.Context, userID int64, notifyTime string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND default_notify_time = ?", userID, notifyTime).
		Delete(&models.UserSetting{})
	return result.RowsAffected > 0, result.Error
}

// SetNotificationEnabled updates the shared flag across all of the user's rows
func (s *Store) SetNotificationEnabled(ctx context.Context, userID int64, enabled bool) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.UserSetting{}).
		Where("user_id = ?", userID).
		Update("notification_enabled", enabled)
	return result.RowsAffected > 0, result.Error
}

// NotificationEnabled reports whether notifications are on for the user.
// A user without setting rows defaults to enabled.
func (s *Store) NotificationEnabled(ctx context.Context, userID int64) (bool, error) {
	var setting models.UserSetting
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return setting.NotificationEnabled, nil
}
