package store

import (
	"context"
	"time"

	"github.com/2025-Database-Soongsil/database/internal/models"
	"gorm.io/datatypes"
)

// NotesByUser returns a user's doctors notes, most recent visit first
func (s *Store) NotesByUser(ctx context.Context, userID int64) ([]models.DoctorsNote, error) {
	var notes []models.DoctorsNote
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("visit_date DESC, created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote records a doctors note
func (s *Store) CreateNote(ctx context.Context, userID int64, content string, visitDate *time.Time) (*models.DoctorsNote, error) {
	note := models.DoctorsNote{
		UserID:    userID,
		Content:   content,
		VisitDate: visitDate,
	}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes a note owned by the user, reporting whether a row was removed
func (s *Store) DeleteNote(ctx context.Context, noteID, userID int64) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", noteID, userID).
		Delete(&models.DoctorsNote{})
	return result.RowsAffected > 0, result.Error
}

// RandomTips returns up to limit tips in random order
func (s *Store) RandomTips(ctx context.Context, limit int) ([]models.Tip, error) {
	var tips []models.Tip
	err := s.db.WithContext(ctx).
		Order("RANDOM()").
		Limit(limit).
		Find(&tips).Error
	if err != nil {
		return nil, err
	}
	return tips, nil
}

// CreateChatLog records one chatbot exchange
func (s *Store) CreateChatLog(ctx context.Context, userID int64, message, reply string, contextJSON datatypes.JSON) error {
	return s.db.WithContext(ctx).Create(&models.ChatLog{
		UserID:  userID,
		Message: message,
		Reply:   reply,
		Context: contextJSON,
	}).Error
}
