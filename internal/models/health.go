package models

import "time"

// PregnancyInfo is the zero-or-one pregnancy window for a user.
// ovulation_week_start is derived at write time: pregnancy_start + 14 days.
type PregnancyInfo struct {
	UserID             int64 `gorm:"primaryKey"`
	PregnancyStart     *time.Time
	DueDate            *time.Time
	OvulationWeekStart *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PeriodInfo is the zero-or-one menstrual cycle anchor for a user.
// last_period is the most recent period start used as the phase-cycle anchor.
type PeriodInfo struct {
	UserID      int64 `gorm:"primaryKey"`
	LastPeriod  *time.Time
	PeriodStart *time.Time
	UpdatedAt   time.Time
}
