package models

import (
	"time"

	"gorm.io/gorm"
)

// Calendar event type constants
const (
	EventTypeSupplement = "supplement"
	EventTypeTodo       = "todo"
)

// CalendarEvent is a single materialized occurrence, not a recurring rule:
// repeat_cycle is always stored as "none". For supplement events the tuple
// (user_id, type, linked_supplement_id, start_datetime) is unique, which makes
// materialization idempotent.
type CalendarEvent struct {
	ID                 int64  `gorm:"primaryKey"`
	UserID             int64  `gorm:"not null;uniqueIndex:idx_calendar_events_natural"`
	Type               string `gorm:"not null;uniqueIndex:idx_calendar_events_natural"`
	Title              string `gorm:"not null"`
	StartDatetime      time.Time `gorm:"not null;index;uniqueIndex:idx_calendar_events_natural"`
	EndDatetime        *time.Time
	RepeatCycle        string `gorm:"not null;default:'none'"`
	LinkedSupplementID *int64 `gorm:"uniqueIndex:idx_calendar_events_natural"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Notifications []Notification `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`
}

// BeforeCreate assigns a generated id when none was provided
func (e *CalendarEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == 0 {
		e.ID = NewID()
	}
	return nil
}
