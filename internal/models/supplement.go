package models

import (
	"time"

	"gorm.io/gorm"
)

// Intake cycle constants for UserSupplement. "monthly" steps a fixed 30 days,
// a documented approximation that drifts against calendar months.
const (
	CycleNone    = "none"
	CycleDaily   = "daily"
	CycleWeekly  = "weekly"
	CycleMonthly = "monthly"
)

// DefaultTimeOfDay is used when an assignment has no intake time set
const DefaultTimeOfDay = "09:00"

// Nutrient is catalog reference data grouping supplements by concern
type Nutrient struct {
	ID                int64  `gorm:"primaryKey"`
	Code              string `gorm:"uniqueIndex;not null"`
	Name              string `gorm:"not null"`
	Description       string `gorm:"type:text"`
	RecommendedPeriod string `gorm:"index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Supplements []Supplement `gorm:"many2many:supplement_nutrients;"`
}

// BeforeCreate assigns a generated id when none was provided
func (n *Nutrient) BeforeCreate(tx *gorm.DB) error {
	if n.ID == 0 {
		n.ID = NewID()
	}
	return nil
}

// Supplement is an immutable catalog entry, many-to-many with Nutrient
type Supplement struct {
	ID         int64  `gorm:"primaryKey"`
	Code       string `gorm:"uniqueIndex;not null"`
	Name       string `gorm:"not null"`
	Brand      string
	DosageInfo string
	Caution    string `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BeforeCreate assigns a generated id when none was provided
func (s *Supplement) BeforeCreate(tx *gorm.DB) error {
	if s.ID == 0 {
		s.ID = NewID()
	}
	return nil
}

// SupplementNutrient is the explicit join table between Supplement and Nutrient
type SupplementNutrient struct {
	SupplementID int64 `gorm:"primaryKey"`
	NutrientID   int64 `gorm:"primaryKey"`
}

// UserSupplement assigns a catalog supplement to a user with an intake window
// and cycle. end_date nil means open-ended.
type UserSupplement struct {
	ID           int64 `gorm:"primaryKey"`
	UserID       int64 `gorm:"not null;index"`
	SupplementID int64 `gorm:"not null;index"`
	StartDate    time.Time `gorm:"not null"`
	EndDate      *time.Time
	Cycle        string `gorm:"not null;default:'daily'"`
	TimeOfDay    string `gorm:"not null;default:'09:00'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeCreate assigns a generated id when none was provided
func (us *UserSupplement) BeforeCreate(tx *gorm.DB) error {
	if us.ID == 0 {
		us.ID = NewID()
	}
	return nil
}

// CustomSupplement is a user-authored supplement outside the preset catalog
type CustomSupplement struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    int64  `gorm:"not null;index"`
	Name      string `gorm:"not null"`
	Note      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a generated id when none was provided
func (cs *CustomSupplement) BeforeCreate(tx *gorm.DB) error {
	if cs.ID == 0 {
		cs.ID = NewID()
	}
	return nil
}
