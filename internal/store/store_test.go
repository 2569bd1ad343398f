package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/2025-Database-Soongsil/database/internal/database"
	"github.com/2025-Database-Soongsil/database/internal/models"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return New(db), db
}

func TestUpsertSocialUserLookupOrder(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()

	// A local account with the same email gets the social identity attached
	local := &models.User{Email: "known@babyprep.local", Password: "pw", Provider: models.ProviderLocal}
	if err := db.Create(local).Error; err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	attached, err := st.UpsertSocialUser(ctx, models.ProviderGoogle, "g-123", "known@babyprep.local", "구글러")
	if err != nil {
		t.Fatalf("UpsertSocialUser() error: %v", err)
	}
	if attached.ID != local.ID {
		t.Errorf("expected existing account %d, got %d", local.ID, attached.ID)
	}
	if attached.Provider != models.ProviderGoogle || attached.SocialID != "g-123" {
		t.Errorf("social identity not attached: %+v", attached)
	}

	// Same social identity again resolves to the same account, even with a
	// different email from the provider
	again, err := st.UpsertSocialUser(ctx, models.ProviderGoogle, "g-123", "changed@babyprep.local", "구글러")
	if err != nil {
		t.Fatalf("UpsertSocialUser() error: %v", err)
	}
	if again.ID != local.ID {
		t.Errorf("social lookup should win over email, got user %d", again.ID)
	}

	// Unknown identity and email creates a fresh account
	fresh, err := st.UpsertSocialUser(ctx, models.ProviderKakao, "k-9", "kakao@connected", "카카오 사용자")
	if err != nil {
		t.Fatalf("UpsertSocialUser() error: %v", err)
	}
	if fresh.ID == local.ID {
		t.Error("expected a new account for unknown identity")
	}

	var n int64
	db.Model(&models.User{}).Count(&n)
	if n != 2 {
		t.Errorf("expected 2 users, got %d", n)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Email: "gone@babyprep.local", Provider: models.ProviderLocal}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	sup := &models.Supplement{Code: "folic", Name: "엽산"}
	if err := db.Create(sup).Error; err != nil {
		t.Fatalf("failed to seed supplement: %v", err)
	}

	start := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	event, _, err := st.UpsertSupplementEvent(ctx, user.ID, sup.ID, start, "엽산 복용")
	if err != nil {
		t.Fatalf("UpsertSupplementEvent() error: %v", err)
	}
	if _, err := st.EnsureNotification(ctx, event.ID, start); err != nil {
		t.Fatalf("EnsureNotification() error: %v", err)
	}
	if _, err := st.AddUserSupplement(ctx, user.ID, sup.ID, start, nil, models.CycleDaily, "09:00"); err != nil {
		t.Fatalf("AddUserSupplement() error: %v", err)
	}
	if _, err := st.AddSettingTime(ctx, user.ID, "09:00"); err != nil {
		t.Fatalf("AddSettingTime() error: %v", err)
	}

	deleted, err := st.DeleteUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}
	if !deleted {
		t.Fatal("expected deletion")
	}

	for _, owned := range []interface{}{
		&models.User{},
		&models.CalendarEvent{},
		&models.Notification{},
		&models.UserSupplement{},
		&models.UserSetting{},
	} {
		var n int64
		db.Model(owned).Count(&n)
		if n != 0 {
			t.Errorf("%T: expected 0 rows after cascade, got %d", owned, n)
		}
	}

	// Deleting again reports not found
	deleted, err = st.DeleteUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("DeleteUser() second call error: %v", err)
	}
	if deleted {
		t.Error("second delete should report not found")
	}
}

func TestUpsertSupplementEventConflict(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()

	user := &models.User{Email: "dup@babyprep.local", Provider: models.ProviderLocal}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	start := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

	first, created, err := st.UpsertSupplementEvent(ctx, user.ID, 42, start, "엽산 복용")
	if err != nil {
		t.Fatalf("UpsertSupplementEvent() error: %v", err)
	}
	if !created {
		t.Error("first insert should report created")
	}

	second, created, err := st.UpsertSupplementEvent(ctx, user.ID, 42, start, "엽산 복용")
	if err != nil {
		t.Fatalf("UpsertSupplementEvent() conflict error: %v", err)
	}
	if created {
		t.Error("conflicting insert should not report created")
	}
	if second.ID != first.ID {
		t.Errorf("conflict should return existing row: %d vs %d", second.ID, first.ID)
	}

	// A different supplement at the same time is a distinct occurrence
	_, created, err = st.UpsertSupplementEvent(ctx, user.ID, 43, start, "철분제 복용")
	if err != nil {
		t.Fatalf("UpsertSupplementEvent() error: %v", err)
	}
	if !created {
		t.Error("different supplement should create a new row")
	}

	var n int64
	db.Model(&models.CalendarEvent{}).Count(&n)
	if n != 2 {
		t.Errorf("expected 2 events, got %d", n)
	}
}

func TestSettingsSharedEnabledFlag(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()

	// No rows defaults to enabled
	enabled, err := st.NotificationEnabled(ctx, 7)
	if err != nil || !enabled {
		t.Fatalf("NotificationEnabled() = (%v, %v), want (true, nil)", enabled, err)
	}

	if _, err := st.AddSettingTime(ctx, 7, "08:00"); err != nil {
		t.Fatalf("AddSettingTime() error: %v", err)
	}
	if _, err := st.SetNotificationEnabled(ctx, 7, false); err != nil {
		t.Fatalf("SetNotificationEnabled() error: %v", err)
	}

	// A new time inherits the shared flag from its siblings
	added, err := st.AddSettingTime(ctx, 7, "21:00")
	if err != nil {
		t.Fatalf("AddSettingTime() error: %v", err)
	}
	if added.NotificationEnabled {
		t.Error("new time should inherit the disabled flag")
	}

	// The stored row must carry false too, not just the returned struct
	var stored models.UserSetting
	if err := db.Where("user_id = ? AND default_notify_time = ?", 7, "21:00").First(&stored).Error; err != nil {
		t.Fatalf("failed to reload setting: %v", err)
	}
	if stored.NotificationEnabled {
		t.Error("persisted row should keep the disabled flag")
	}

	enabled, err = st.NotificationEnabled(ctx, 7)
	if err != nil || enabled {
		t.Errorf("NotificationEnabled() = (%v, %v), want (false, nil)", enabled, err)
	}

	// Re-adding an existing time returns the existing row
	dup, err := st.AddSettingTime(ctx, 7, "08:00")
	if err != nil {
		t.Fatalf("AddSettingTime() duplicate error: %v", err)
	}
	settings, err := st.SettingsByUser(ctx, 7)
	if err != nil {
		t.Fatalf("SettingsByUser() error: %v", err)
	}
	if len(settings) != 2 {
		t.Errorf("expected 2 setting rows, got %d", len(settings))
	}
	if dup.DefaultNotifyTime != "08:00" {
		t.Errorf("unexpected dup row %+v", dup)
	}
}

func TestAddUserSupplementIdempotent(t *testing.T) {
	st, db := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	first, err := st.AddUserSupplement(ctx, 5, 100, start, nil, "", "")
	if err != nil {
		t.Fatalf("AddUserSupplement() error: %v", err)
	}
	// Empty cycle and time fall back to defaults
	if first.Cycle != models.CycleDaily || first.TimeOfDay != models.DefaultTimeOfDay {
		t.Errorf("defaults not applied: %+v", first)
	}

	second, err := st.AddUserSupplement(ctx, 5, 100, start.AddDate(0, 1, 0), nil, models.CycleWeekly, "20:00")
	if err != nil {
		t.Fatalf("AddUserSupplement() error: %v", err)
	}
	if second.ID != first.ID {
		t.Error("re-adding the same supplement should return the existing assignment")
	}

	var n int64
	db.Model(&models.UserSupplement{}).Count(&n)
	if n != 1 {
		t.Errorf("expected 1 assignment, got %d", n)
	}
}
