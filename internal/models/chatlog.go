package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatLog records one chatbot exchange with the document chunks that were
// retrieved as context, so answers can be audited later.
type ChatLog struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    int64  `gorm:"not null;index"`
	Message   string `gorm:"type:text;not null"`
	Reply     string `gorm:"type:text"`
	Context   datatypes.JSON
	CreatedAt time.Time
}

// BeforeCreate assigns a generated id when none was provided
func (c *ChatLog) BeforeCreate(tx *gorm.DB) error {
	if c.ID == 0 {
		c.ID = NewID()
	}
	return nil
}
