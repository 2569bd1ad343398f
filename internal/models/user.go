package models

import (
	"time"

	"gorm.io/gorm"
)

// Auth provider constants
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
)

// User represents an application user with auth provider info and owned
// health/calendar records. Deleting a user cascades to everything it owns.
type User struct {
	ID         int64  `gorm:"primaryKey"`
	Email      string `gorm:"uniqueIndex;not null"`
	Password   string // empty for social accounts
	Provider   string `gorm:"not null;default:'local';index:idx_users_provider_social"`
	SocialID   string `gorm:"index:idx_users_provider_social"`
	Nickname   string
	Gender     string
	IsPregnant bool `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Associations
	Profile           *UserProfile       `gorm:"constraint:OnDelete:CASCADE;"`
	PregnancyInfo     *PregnancyInfo     `gorm:"constraint:OnDelete:CASCADE;"`
	PeriodInfo        *PeriodInfo        `gorm:"constraint:OnDelete:CASCADE;"`
	Supplements       []UserSupplement   `gorm:"constraint:OnDelete:CASCADE;"`
	CustomSupplements []CustomSupplement `gorm:"constraint:OnDelete:CASCADE;"`
	Events            []CalendarEvent    `gorm:"constraint:OnDelete:CASCADE;"`
	Settings          []UserSetting      `gorm:"constraint:OnDelete:CASCADE;"`
	DoctorsNotes      []DoctorsNote      `gorm:"constraint:OnDelete:CASCADE;"`
}

// BeforeCreate assigns a generated id when none was provided
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = NewID()
	}
	return nil
}

// UserProfile holds body measurements used for the weight-gain guidance
type UserProfile struct {
	UserID        int64 `gorm:"primaryKey"`
	Height        *float64
	InitialWeight *float64
	CurrentWeight *float64
	UpdatedAt     time.Time
}
