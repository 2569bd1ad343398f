package models

import (
	"time"

	"gorm.io/gorm"
)

// UserSetting is one daily reminder time for a user. A user keeps one row per
// reminder time; notification_enabled is a shared flag copied across all of a
// user's rows.
type UserSetting struct {
	ID                  int64  `gorm:"primaryKey"`
	UserID              int64  `gorm:"not null;uniqueIndex:idx_user_settings_time"`
	// No gorm default tag: a default would make Create skip the zero value,
	// silently turning an explicit false back into true. The DB-level default
	// lives in the migration.
	NotificationEnabled bool   `gorm:"not null"`
	DefaultNotifyTime   string `gorm:"not null;uniqueIndex:idx_user_settings_time"` // HH:MM
	Language            string `gorm:"not null;default:'ko'"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// BeforeCreate assigns a generated id when none was provided
func (s *UserSetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == 0 {
		s.ID = NewID()
	}
	return nil
}
