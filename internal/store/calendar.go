package store

import (
	"context"
	"fmt"
	"time"

	"github.com/2025-Database-Soongsil/database/internal/models"
	"gorm.io/gorm/clause"
)

// EventByID fetches one calendar event
func (s *Store) EventByID(ctx context.Context, eventID int64) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := s.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// EventsInRange returns a user's events with start_datetime in [start, end),
// optionally filtered by type.
func (s *Store) EventsInRange(ctx context.Context, userID int64, start, end time.Time, eventType string) ([]models.CalendarEvent, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ? AND start_datetime >= ? AND start_datetime < ?", userID, start, end)
	if eventType != "" {
		query = query.Where("type = ?", eventType)
	}
	var events []models.CalendarEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// UpsertSupplementEvent materializes one supplement-intake occurrence as a
// calendar event. The insert is conditional on the natural key
// (user_id, type, linked_supplement_id, start_datetime): a conflicting insert
// is a no-op and the existing row is returned, so concurrent materializations
// of the same occurrence cannot produce duplicates.
func (s *Store) UpsertSupplementEvent(ctx context.Context, userID, supplementID int64, start time.Time, title string) (*models.CalendarEvent, bool, error) {
	event := models.CalendarEvent{
		UserID:             userID,
		Type:               models.EventTypeSupplement,
		Title:              title,
		StartDatetime:      start,
		RepeatCycle:        models.CycleNone,
		LinkedSupplementID: &supplementID,
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "type"},
				{Name: "linked_supplement_id"},
				{Name: "start_datetime"},
			},
			DoNothing: true,
		}).
		Create(&event)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to upsert supplement event: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return &event, true, nil
	}

	// Conflict: another writer owns this occurrence, fetch its row
	var existing models.CalendarEvent
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND linked_supplement_id = ? AND start_datetime = ?",
			userID, models.EventTypeSupplement, supplementID, start).
		First(&existing).Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch existing supplement event: %w", err)
	}
	return &existing, false, nil
}

// CreateTodoEvent inserts a user todo as a single-occurrence calendar event.
// Todos are not deduplicated: two todos with the same title and date are two rows.
func (s *Store) CreateTodoEvent(ctx context.Context, userID int64, title string, start time.Time) (*models.CalendarEvent, error) {
	event := models.CalendarEvent{
		UserID:        userID,
		Type:          models.EventTypeTodo,
		Title:         title,
		StartDatetime: start,
		RepeatCycle:   models.CycleNone,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create todo event: %w", err)
	}
	return &event, nil
}

// DeleteEvent removes an event owned by the user along with its notifications.
// Returns whether an event row was actually removed.
func (s *Store) DeleteEvent(ctx context.Context, eventID, userID int64) (bool, error) {
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.Notification{}).Error; err != nil {
		return false, err
	}
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", eventID, userID).
		Delete(&models.CalendarEvent{})
	return result.RowsAffected > 0, result.Error
}
