package models

import (
	"time"

	"gorm.io/gorm"
)

// DoctorsNote is a free-form record of a clinic visit
type DoctorsNote struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    int64  `gorm:"not null;index"`
	Content   string `gorm:"type:text;not null"`
	VisitDate *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a generated id when none was provided
func (n *DoctorsNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == 0 {
		n.ID = NewID()
	}
	return nil
}

// Tip is a short rotating wellness tip shown on the home screen
type Tip struct {
	ID        int64  `gorm:"primaryKey"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// BeforeCreate assigns a generated id when none was provided
func (t *Tip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == 0 {
		t.ID = NewID()
	}
	return nil
}
