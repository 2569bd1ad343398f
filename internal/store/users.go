package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/2025-Database-Soongsil/database/internal/models"
	"gorm.io/gorm"
)

// UserByID fetches a user by primary key
func (s *Store) UserByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByEmail fetches a user by email
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserBySocial fetches a user by auth provider and provider-side id
func (s *Store) UserBySocial(ctx context.Context, provider, socialID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("provider = ? AND social_id = ?", provider, socialID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user row
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// UpsertSocialUser returns the existing user for (provider, social_id),
// attaches the social identity to an existing email account, or creates a new
// user. Lookup order follows the login flow: social identity first, then email.
func (s *Store) UpsertSocialUser(ctx context.Context, provider, socialID, email, nickname string) (*models.User, error) {
	user, err := s.UserBySocial(ctx, provider, socialID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err = s.UserByEmail(ctx, email)
	if err == nil {
		updates := map[string]interface{}{
			"provider":  provider,
			"social_id": socialID,
			"nickname":  nickname,
		}
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to attach social identity: %w", err)
		}
		return s.UserByID(ctx, user.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.User{
		Email:    email,
		Provider: provider,
		SocialID: socialID,
		Nickname: nickname,
	}
	if err := s.db.WithContext(ctx).Create(&created).Error; err != nil {
		return nil, fmt.Errorf("failed to create social user: %w", err)
	}
	return &created, nil
}

// UpdateNickname changes a user's nickname, reporting whether the row existed
func (s *Store) UpdateNickname(ctx context.Context, userID int64, nickname string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("nickname", nickname)
	return result.RowsAffected > 0, result.Error
}

// UpdatePregnancyFlag flips the is_pregnant flag on the user row
func (s *Store) UpdatePregnancyFlag(ctx context.Context, userID int64, isPregnant bool) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_pregnant", isPregnant)
	return result.RowsAffected > 0, result.Error
}

// DeleteUser removes a user and everything it owns. The cascade is explicit so
// it holds on databases without enforced foreign keys. Returns whether a user
// row was actually removed.
func (s *Store) DeleteUser(ctx context.Context, userID int64) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eventIDs := tx.Model(&models.CalendarEvent{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("event_id IN (?)", eventIDs).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		for _, owned := range []interface{}{
			&models.CalendarEvent{},
			&models.UserSupplement{},
			&models.CustomSupplement{},
			&models.PregnancyInfo{},
			&models.PeriodInfo{},
			&models.UserProfile{},
			&models.UserSetting{},
			&models.DoctorsNote{},
			&models.ChatLog{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(owned).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}
