package store

import (
	"context"
	"errors"
	"time"

	"github.com/2025-Database-Soongsil/database/internal/models"
	"gorm.io/gorm"
)

// Supplements returns the full supplement catalog
func (s *Store) Supplements(ctx context.Context) ([]models.Supplement, error) {
	var supplements []models.Supplement
	if err := s.db.WithContext(ctx).Find(&supplements).Error; err != nil {
		return nil, err
	}
	return supplements, nil
}

// NutrientCatalog returns every nutrient with its supplement options preloaded
func (s *Store) NutrientCatalog(ctx context.Context) ([]models.Nutrient, error) {
	var nutrients []models.Nutrient
	if err := s.db.WithContext(ctx).Preload("Supplements").Find(&nutrients).Error; err != nil {
		return nil, err
	}
	return nutrients, nil
}

// SupplementByID fetches one catalog entry
func (s *Store) SupplementByID(ctx context.Context, supplementID int64) (*models.Supplement, error) {
	var supplement models.Supplement
	if err := s.db.WithContext(ctx).First(&supplement, supplementID).Error; err != nil {
		return nil, err
	}
	return &supplement, nil
}

// SupplementByCode fetches one catalog entry by its stable preset code
func (s *Store) SupplementByCode(ctx context.Context, code string) (*models.Supplement, error) {
	var supplement models.Supplement
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&supplement).Error; err != nil {
		return nil, err
	}
	return &supplement, nil
}

// NutrientByCode fetches one nutrient with its supplements preloaded
func (s *Store) NutrientByCode(ctx context.Context, code string) (*models.Nutrient, error) {
	var nutrient models.Nutrient
	err := s.db.WithContext(ctx).
		Preload("Supplements").
		Where("code = ?", code).
		First(&nutrient).Error
	if err != nil {
		return nil, err
	}
	return &nutrient, nil
}

// NutrientsByPeriod returns nutrients recommended for a preparation period,
// each with its supplement options preloaded.
func (s *Store) NutrientsByPeriod(ctx context.Context, period string) ([]models.Nutrient, error) {
	var nutrients []models.Nutrient
	err := s.db.WithContext(ctx).
		Preload("Supplements").
		Where("recommended_period = ?", period).
		Find(&nutrients).Error
	if err != nil {
		return nil, err
	}
	return nutrients, nil
}

// UserSupplements returns all of a user's supplement assignments
func (s *Store) UserSupplements(ctx context.Context, userID int64) ([]models.UserSupplement, error) {
	var assignments []models.UserSupplement
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// AddUserSupplement assigns a catalog supplement to a user. Re-adding the same
// supplement returns the existing assignment instead of duplicating it.
func (s *Store) AddUserSupplement(ctx context.Context, userID, supplementID int64, startDate time.Time, endDate *time.Time, cycle, timeOfDay string) (*models.UserSupplement, error) {
	var existing models.UserSupplement
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND supplement_id = ?", userID, supplementID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if cycle == "" {
		cycle = models.CycleDaily
	}
	if timeOfDay == "" {
		timeOfDay = models.DefaultTimeOfDay
	}
	assignment := models.UserSupplement{
		UserID:       userID,
		SupplementID: supplementID,
		StartDate:    startDate,
		EndDate:      endDate,
		Cycle:        cycle,
		TimeOfDay:    timeOfDay,
	}
	if err := s.db.WithContext(ctx).Create(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// RemoveUserSupplement deletes an assignment, reporting whether a row was removed
func (s *Store) RemoveUserSupplement(ctx context.Context, assignmentID, userID int64) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", assignmentID, userID).
		Delete(&models.UserSupplement{})
	return result.RowsAffected > 0, result.Error
}

// AddCustomSupplement records a user-authored supplement
func (s *Store) AddCustomSupplement(ctx context.Context, userID int64, name, note string) (*models.CustomSupplement, error) {
	custom := models.CustomSupplement{
		UserID: userID,
		Name:   name,
		Note:   note,
	}
	if err := s.db.WithContext(ctx).Create(&custom).Error; err != nil {
		return nil, err
	}
	return &custom, nil
}

// CustomSupplements returns a user's custom supplements
func (s *Store) CustomSupplements(ctx context.Context, userID int64) ([]models.CustomSupplement, error) {
	var customs []models.CustomSupplement
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&customs).Error; err != nil {
		return nil, err
	}
	return customs, nil
}
