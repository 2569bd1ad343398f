package calendar

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
	"github.com/2025-Database-Soongsil/database/internal/notify"
	"github.com/2025-Database-Soongsil/database/internal/store"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(db)
	svc := NewService(st, notify.NewMaterializer(st, logger), logger, time.UTC)
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{Email: "test@babyprep.local", Provider: models.ProviderLocal, Nickname: "tester"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedSupplement(t *testing.T, db *gorm.DB, code, name string) *models.Supplement {
	t.Helper()
	sup := &models.Supplement{Code: code, Name: name}
	if err := db.Create(sup).Error; err != nil {
		t.Fatalf("failed to seed supplement: %v", err)
	}
	return sup
}

func seedAssignment(t *testing.T, db *gorm.DB, userID, supplementID int64, start time.Time, end *time.Time, cycle, timeOfDay string) {
	t.Helper()
	assignment := &models.UserSupplement{
		UserID:       userID,
		SupplementID: supplementID,
		StartDate:    start,
		EndDate:      end,
		Cycle:        cycle,
		TimeOfDay:    timeOfDay,
	}
	if err := db.Create(assignment).Error; err != nil {
		t.Fatalf("failed to seed assignment: %v", err)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}

func TestMonthlyViewDailyProjection(t *testing.T) {
	svc, db := newTestService(t)
	user := seedUser(t, db)
	sup := seedSupplement(t, db, "folic-acid-400", "엽산")
	seedAssignment(t, db, user.ID, sup.ID, date(2024, time.January, 15), nil, models.CycleDaily, "08:30")

	days, err := svc.MonthlyView(context.Background(), user.ID, 2024, 1)
	if err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}
	if len(days) != 31 {
		t.Fatalf("expected 31 days for January, got %d", len(days))
	}

	if got := len(days[13].Supplements); got != 0 {
		t.Errorf("Jan 14 should have no occurrences, got %d", got)
	}
	for i := 14; i < 31; i++ {
		occ := days[i].Supplements
		if len(occ) != 1 {
			t.Fatalf("%s: expected 1 occurrence, got %d", days[i].Date, len(occ))
		}
		if occ[0].Name != "엽산" || occ[0].Time != "08:30" {
			t.Errorf("%s: unexpected occurrence %+v", days[i].Date, occ[0])
		}
	}

	// Projection materializes one event and one notification per occurrence
	if n := countRows(t, db, &models.CalendarEvent{}); n != 17 {
		t.Errorf("expected 17 calendar events, got %d", n)
	}
	if n := countRows(t, db, &models.Notification{}); n != 17 {
		t.Errorf("expected 17 notifications, got %d", n)
	}

	// Events carry the intake title and the combined date+time
	var event models.CalendarEvent
	if err := db.Order("start_datetime").First(&event).Error; err != nil {
		t.Fatalf("failed to load first event: %v", err)
	}
	if event.Title != "엽산 복용" {
		t.Errorf("event title = %q, want %q", event.Title, "엽산 복용")
	}
	want := time.Date(2024, time.January, 15, 8, 30, 0, 0, time.UTC)
	if !event.StartDatetime.Equal(want) {
		t.Errorf("event start = %v, want %v", event.StartDatetime, want)
	}
}

func TestMonthlyViewIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	user := seedUser(t, db)
	sup := seedSupplement(t, db, "iron-24", "철분제")
	seedAssignment(t, db, user.ID, sup.ID, date(2024, time.January, 1), nil, models.CycleDaily, "09:00")

	for i := 0; i < 3; i++ {
		if _, err := svc.MonthlyView(context.Background(), user.ID, 2024, 1); err != nil {
			t.Fatalf("MonthlyView() run %d error: %v", i+1, err)
		}
	}

	if n := countRows(t, db, &models.CalendarEvent{}); n != 31 {
		t.Errorf("expected 31 calendar events after repeated projection, got %d", n)
	}
	if n := countRows(t, db, &models.Notification{}); n != 31 {
		t.Errorf("expected 31 notifications after repeated projection, got %d", n)
	}
}

func TestMonthlyViewWeeklyStride(t *testing.T) {
	svc, db := newTestService(t)
	user := seedUser(t, db)
	sup := seedSupplement(t, db, "omega3-1000", "오메가3")
	seedAssignment(t, db, user.ID, sup.ID, date(2024, time.January, 1), nil, models.CycleWeekly, "09:00")

	days, err := svc.MonthlyView(context.Background(), user.ID, 2024, 3)
	if err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}

	// 2024 is a leap year: Jan 1 + 7k lands on Mar 4, 11, 18, 25
	wantDays := map[string]bool{
		"2024-03-04": true,
		"2024-03-11": true,
		"2024-03-18": true,
		"2024-03-25": true,
	}
	for _, day := range days {
		got := len(day.Supplements)
		if wantDays[day.Date] && got != 1 {
			t.Errorf("%s: expected occurrence, got %d", day.Date, got)
		}
		if !wantDays[day.Date] && got != 0 {
			t.Errorf("%s: unexpected occurrence", day.Date)
		}
	}
}

func TestMonthlyViewOneTimeIntake(t *testing.T) {
	svc, db := newTestService(t)
	user := seedUser(t, db)
	sup := seedSupplement(t, db, "vitamin-d", "비타민D")
	seedAssignment(t, db, user.ID, sup.ID, date(2024, time.January, 10), nil, models.CycleNone, "09:00")

	days, err := svc.MonthlyView(context.Background(), user.ID, 2024, 1)
	if err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}
	for _, day := range days {
		want := 0
		if day.Date == "2024-01-10" {
			want = 1
		}
		if got := len(day.Supplements); got != want {
			t.Errorf("%s: got %d occurrences, want %d", day.Date, got, want)
		}
	}

	// Later months never repeat a one-time intake
	if _, err := svc.MonthlyView(context.Background(), user.ID, 2024, 2); err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}
	if n := countRows(t, db, &models.CalendarEvent{}); n != 1 {
		t.Errorf("expected a single event, got %d", n)
	}
}

func TestMonthlyViewRespectsEndDate(t *testing.T) {
	svc, db := newTestService(t)
	user := seedUser(t, db)
	sup := seedSupplement(t, db, "calcium-500", "칼슘")
	end := date(2024, time.January, 10)
	seedAssignment(t, db, user.ID, sup.ID, date(2024, time.January, 1), &end, models.CycleDaily, "09:00")

	if _, err := svc.MonthlyView(context.Background(), user.ID, 2024, 1); err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}
	// End date is inclusive: Jan 1 through Jan 10
	if n := countRows(t, db, &models.CalendarEvent{}); n != 10 {
		t.Errorf("expected 10 events, got %d", n)
	}
}

func TestMonthlyViewLeapFebruary(t *testing.T) {
	svc, db := newTestService(t)
	user := seedUser(t, db)

	days, err := svc.MonthlyView(context.Background(), user.ID, 2024, 2)
	if err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}
	if len(days) != 29 {
		t.Errorf("leap February should have 29 days, got %d", len(days))
	}

	days, err = svc.MonthlyView(context.Background(), user.ID, 2023, 2)
	if err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}
	if len(days) != 28 {
		t.Errorf("non-leap February should have 28 days, got %d", len(days))
	}
}

func TestMonthlyViewSkipsMissingCatalogEntry(t *testing.T) {
	svc, db := newTestService(t)
	user := seedUser(t, db)
	seedAssignment(t, db, user.ID, 999999, date(2024, time.January, 1), nil, models.CycleDaily, "09:00")

	days, err := svc.MonthlyView(context.Background(), user.ID, 2024, 1)
	if err != nil {
		t.Fatalf("MonthlyView() should survive missing catalog entries: %v", err)
	}
	for _, day := range days {
		if len(day.Supplements) != 0 {
			t.Fatalf("%s: occurrences emitted for missing supplement", day.Date)
		}
	}
	if n := countRows(t, db, &models.CalendarEvent{}); n != 0 {
		t.Errorf("no events should be materialized, got %d", n)
	}
}

func TestMonthlyViewPregnancyLabels(t *testing.T) {
	svc, db := newTestService(t)
	user := seedUser(t, db)
	start := date(2024, time.January, 10)
	due := date(2024, time.October, 16)
	if err := db.Create(&models.PregnancyInfo{UserID: user.ID, PregnancyStart: &start, DueDate: &due}).Error; err != nil {
		t.Fatalf("failed to seed pregnancy info: %v", err)
	}

	days, err := svc.MonthlyView(context.Background(), user.ID, 2024, 1)
	if err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}

	byDate := make(map[string]DayInfo, len(days))
	for _, day := range days {
		byDate[day.Date] = day
	}

	if byDate["2024-01-09"].PregnancyPhase != nil {
		t.Error("day before pregnancy start should carry no label")
	}
	for d, want := range map[string]string{
		"2024-01-10": "1주차",
		"2024-01-16": "1주차",
		"2024-01-17": "2주차",
		"2024-01-31": "4주차",
	} {
		got := byDate[d].PregnancyPhase
		if got == nil || *got != want {
			t.Errorf("%s: pregnancy label = %v, want %q", d, got, want)
		}
	}
}

func TestMonthlyViewPeriodLabels(t *testing.T) {
	svc, db := newTestService(t)
	user := seedUser(t, db)
	last := date(2024, time.January, 5)
	if err := db.Create(&models.PeriodInfo{UserID: user.ID, LastPeriod: &last}).Error; err != nil {
		t.Fatalf("failed to seed period info: %v", err)
	}

	days, err := svc.MonthlyView(context.Background(), user.ID, 2024, 1)
	if err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}

	// Only the predicted cycle-start days are labeled, not the days between
	for _, day := range days {
		if day.Date == "2024-01-05" {
			if day.MenstrualPhase == nil || *day.MenstrualPhase != PhaseMenstruation {
				t.Errorf("%s: phase = %v, want menstruation", day.Date, day.MenstrualPhase)
			}
			continue
		}
		if day.MenstrualPhase != nil {
			t.Errorf("%s: unexpected phase label %q", day.Date, *day.MenstrualPhase)
		}
	}

	// The next 28-day stride lands in February
	days, err = svc.MonthlyView(context.Background(), user.ID, 2024, 2)
	if err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}
	var labeled []string
	for _, day := range days {
		if day.MenstrualPhase != nil {
			labeled = append(labeled, day.Date)
		}
	}
	if len(labeled) != 1 || labeled[0] != "2024-02-02" {
		t.Errorf("February labels = %v, want [2024-02-02]", labeled)
	}
}

func TestMonthlyViewSuppressedNotifications(t *testing.T) {
	svc, db := newTestService(t)
	user := seedUser(t, db)
	sup := seedSupplement(t, db, "folate", "엽산")
	seedAssignment(t, db, user.ID, sup.ID, date(2024, time.January, 1), nil, models.CycleDaily, "09:00")

	if err := db.Create(&models.UserSetting{
		UserID:              user.ID,
		NotificationEnabled: false,
		DefaultNotifyTime:   "09:00",
	}).Error; err != nil {
		t.Fatalf("failed to seed setting: %v", err)
	}

	if _, err := svc.MonthlyView(context.Background(), user.ID, 2024, 1); err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}

	// Events are still materialized, only the notifications are suppressed
	if n := countRows(t, db, &models.CalendarEvent{}); n != 31 {
		t.Errorf("expected 31 events, got %d", n)
	}
	if n := countRows(t, db, &models.Notification{}); n != 0 {
		t.Errorf("expected no notifications for disabled user, got %d", n)
	}
}

func TestAddAndDeleteTodo(t *testing.T) {
	svc, db := newTestService(t)
	user := seedUser(t, db)
	other := &models.User{Email: "other@babyprep.local", Provider: models.ProviderLocal}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("failed to seed second user: %v", err)
	}

	// Duplicate titles on the same day are two independent todos
	first, err := svc.AddTodo(context.Background(), user.ID, "산부인과 예약", "2024-01-20")
	if err != nil {
		t.Fatalf("AddTodo() error: %v", err)
	}
	if _, err := svc.AddTodo(context.Background(), user.ID, "산부인과 예약", "2024-01-20"); err != nil {
		t.Fatalf("AddTodo() duplicate error: %v", err)
	}

	days, err := svc.MonthlyView(context.Background(), user.ID, 2024, 1)
	if err != nil {
		t.Fatalf("MonthlyView() error: %v", err)
	}
	var todos []Todo
	for _, day := range days {
		if day.Date == "2024-01-20" {
			todos = day.Todos
		}
	}
	if len(todos) != 2 {
		t.Fatalf("expected 2 todos on 2024-01-20, got %d", len(todos))
	}

	// Other users cannot delete someone else's todo
	deleted, err := svc.DeleteTodo(context.Background(), other.ID, first.ID)
	if err != nil {
		t.Fatalf("DeleteTodo() error: %v", err)
	}
	if deleted {
		t.Error("delete by non-owner should report not found")
	}

	deleted, err = svc.DeleteTodo(context.Background(), user.ID, first.ID)
	if err != nil {
		t.Fatalf("DeleteTodo() error: %v", err)
	}
	if !deleted {
		t.Error("delete by owner should succeed")
	}
	if n := countRows(t, db, &models.CalendarEvent{}); n != 1 {
		t.Errorf("expected 1 remaining todo, got %d", n)
	}

	if _, err := svc.AddTodo(context.Background(), user.ID, "기형아 검사", "not-a-date"); err == nil {
		t.Error("expected error for malformed date")
	}
}
