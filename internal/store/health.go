package store

import (
	"context"
	"errors"
	"time"

	"github.com/2025-Database-Soongsil/database/internal/models"
	"gorm.io/gorm"
)

// ovulationOffset derives ovulation_week_start from the pregnancy start (LMP)
const ovulationOffset = 14 * 24 * time.Hour

// PregnancyInfoByUser returns the user's pregnancy window, or
// gorm.ErrRecordNotFound when none has been recorded.
func (s *Store) PregnancyInfoByUser(ctx context.Context, userID int64) (*models.PregnancyInfo, error) {
	var info models.PregnancyInfo
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&info).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

// PeriodInfoByUser returns the user's period anchor, or gorm.ErrRecordNotFound
func (s *Store) PeriodInfoByUser(ctx context.Context, userID int64) (*models.PeriodInfo, error) {
	var info models.PeriodInfo
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&info).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

// UpsertPregnancyInfo inserts or coalesce-updates the one-per-user pregnancy
// record. Nil arguments keep the stored value. ovulation_week_start is derived
// at write time as pregnancy_start + 14 days.
func (s *Store) UpsertPregnancyInfo(ctx context.Context, userID int64, pregnancyStart, dueDate *time.Time) error {
	var ovulationWeekStart *time.Time
	if pregnancyStart != nil {
		derived := pregnancyStart.Add(ovulationOffset)
		ovulationWeekStart = &derived
	}

	var existing models.PregnancyInfo
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.WithContext(ctx).Create(&models.PregnancyInfo{
			UserID:             userID,
			PregnancyStart:     pregnancyStart,
			DueDate:            dueDate,
			OvulationWeekStart: ovulationWeekStart,
		}).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if pregnancyStart != nil {
		updates["pregnancy_start"] = pregnancyStart
		updates["ovulation_week_start"] = ovulationWeekStart
	}
	if dueDate != nil {
		updates["due_date"] = dueDate
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&existing).Updates(updates).Error
}

// UpsertPeriodInfo inserts or coalesce-updates the one-per-user period record
func (s *Store) UpsertPeriodInfo(ctx context.Context, userID int64, lastPeriod, periodStart *time.Time) error {
	var existing models.PeriodInfo
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.WithContext(ctx).Create(&models.PeriodInfo{
			UserID:      userID,
			LastPeriod:  lastPeriod,
			PeriodStart: periodStart,
		}).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if lastPeriod != nil {
		updates["last_period"] = lastPeriod
	}
	if periodStart != nil {
		updates["period_start"] = periodStart
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&existing).Updates(updates).Error
}

// ProfileByUser returns the user's body-measurement profile
func (s *Store) ProfileByUser(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile inserts or coalesce-updates the user's profile. On first
// insert the initial weight defaults to the current weight.
func (s *Store) UpsertProfile(ctx context.Context, userID int64, height, preWeight, currentWeight *float64) error {
	var existing models.UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		initial := preWeight
		if initial == nil {
			initial = currentWeight
		}
		return s.db.WithContext(ctx).Create(&models.UserProfile{
			UserID:        userID,
			Height:        height,
			InitialWeight: initial,
			CurrentWeight: currentWeight,
		}).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if height != nil {
		updates["height"] = height
	}
	if preWeight != nil {
		updates["initial_weight"] = preWeight
	}
	if currentWeight != nil {
		updates["current_weight"] = currentWeight
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&existing).Updates(updates).Error
}
