package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/2025-Database-Soongsil/database/internal/database"
	"github.com/2025-Database-Soongsil/database/internal/models"
	"github.com/2025-Database-Soongsil/database/internal/store"
)

func newTestMaterializer(t *testing.T) (*Materializer, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMaterializer(store.New(db), logger), db
}

func seedEvent(t *testing.T, db *gorm.DB, userID int64, title string, start time.Time) *models.CalendarEvent {
	t.Helper()
	user := &models.User{ID: userID, Email: "n@babyprep.local", Provider: models.ProviderLocal}
	if err := db.FirstOrCreate(user, "id = ?", userID).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	event := &models.CalendarEvent{
		UserID:        userID,
		Type:          models.EventTypeSupplement,
		Title:         title,
		StartDatetime: start,
		RepeatCycle:   models.CycleNone,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return event
}

func TestEnsureForEventIsIdempotent(t *testing.T) {
	m, db := newTestMaterializer(t)
	event := seedEvent(t, db, 1, "엽산 복용", time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC))

	first, err := m.EnsureForEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("EnsureForEvent() error: %v", err)
	}
	if first == nil {
		t.Fatal("expected a notification for enabled user")
	}

	second, err := m.EnsureForEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("EnsureForEvent() second call error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second call returned a different notification: %d vs %d", second.ID, first.ID)
	}

	var n int64
	db.Model(&models.Notification{}).Count(&n)
	if n != 1 {
		t.Errorf("expected exactly 1 notification row, got %d", n)
	}
}

func TestEnsureForEventSuppressedWhenDisabled(t *testing.T) {
	m, db := newTestMaterializer(t)
	event := seedEvent(t, db, 2, "철분제 복용", time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC))

	if err := db.Create(&models.UserSetting{
		UserID:              2,
		NotificationEnabled: false,
		DefaultNotifyTime:   "09:00",
	}).Error; err != nil {
		t.Fatalf("failed to seed setting: %v", err)
	}

	notification, err := m.EnsureForEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("EnsureForEvent() error: %v", err)
	}
	if notification != nil {
		t.Error("expected suppression for disabled user")
	}

	var n int64
	db.Model(&models.Notification{}).Count(&n)
	if n != 0 {
		t.Errorf("expected no notification rows, got %d", n)
	}
}

func TestEnsureForEventKeepsExistingRowWhenDisabled(t *testing.T) {
	m, db := newTestMaterializer(t)
	event := seedEvent(t, db, 3, "오메가3 복용", time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC))

	created, err := m.EnsureForEvent(context.Background(), event)
	if err != nil || created == nil {
		t.Fatalf("EnsureForEvent() = (%v, %v), want notification", created, err)
	}

	// Disabling afterwards does not retract the already-materialized row
	if err := db.Create(&models.UserSetting{
		UserID:              3,
		NotificationEnabled: false,
		DefaultNotifyTime:   "09:00",
	}).Error; err != nil {
		t.Fatalf("failed to seed setting: %v", err)
	}

	got, err := m.EnsureForEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("EnsureForEvent() error: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Errorf("existing notification should still be returned, got %+v", got)
	}
}

func TestDueJoinsEventsAndDropsOrphans(t *testing.T) {
	m, db := newTestMaterializer(t)
	now := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

	past := seedEvent(t, db, 4, "엽산 복용", now.Add(-time.Hour))
	future := seedEvent(t, db, 4, "칼슘 복용", now.Add(time.Hour))

	if _, err := m.EnsureForEvent(context.Background(), past); err != nil {
		t.Fatalf("EnsureForEvent() error: %v", err)
	}
	if _, err := m.EnsureForEvent(context.Background(), future); err != nil {
		t.Fatalf("EnsureForEvent() error: %v", err)
	}

	// An orphan: notification whose event row is gone
	if err := db.Create(&models.Notification{EventID: 987654, NotifyTime: now.Add(-2 * time.Hour)}).Error; err != nil {
		t.Fatalf("failed to seed orphan: %v", err)
	}

	due, err := m.Due(context.Background(), now)
	if err != nil {
		t.Fatalf("Due() error: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 due notification, got %d", len(due))
	}
	if due[0].Title != "엽산 복용" || due[0].UserID != 4 {
		t.Errorf("unexpected due notification %+v", due[0])
	}

	// Sent notifications drop out of the due set
	if err := m.MarkSent(context.Background(), due[0].ID); err != nil {
		t.Fatalf("MarkSent() error: %v", err)
	}
	due, err = m.Due(context.Background(), now)
	if err != nil {
		t.Fatalf("Due() error: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("expected no due notifications after MarkSent, got %d", len(due))
	}
}
