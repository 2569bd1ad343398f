package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is a pending reminder for a calendar event. At most one row
// exists per (event_id, notify_time). is_sent transitions false -> true once.
type Notification struct {
	ID         int64     `gorm:"primaryKey"`
	EventID    int64     `gorm:"not null;uniqueIndex:idx_notifications_natural"`
	NotifyTime time.Time `gorm:"not null;index;uniqueIndex:idx_notifications_natural"`
	IsSent     bool      `gorm:"not null;default:false;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BeforeCreate assigns a generated id when none was provided
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == 0 {
		n.ID = NewID()
	}
	return nil
}
