package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/2025-Database-Soongsil/database/internal/models"
	"github.com/2025-Database-Soongsil/database/internal/notify"
	"github.com/2025-Database-Soongsil/database/internal/store"
)

// Todo is a user-created calendar entry, as rendered in the monthly view.
type Todo struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// DayInfo is one day of the monthly view. Phase labels are nil on days the
// mappers did not label.
type DayInfo struct {
	Date           string       `json:"date"`
	Supplements    []Occurrence `json:"supplements"`
	Todos          []Todo       `json:"todos"`
	PregnancyPhase *string      `json:"pregnancyPhase"`
	MenstrualPhase *string      `json:"menstrualPhase"`
}

// Service assembles the monthly calendar view and manages todo events.
type Service struct {
	store     *store.Store
	projector *projector
	phases    *phaseMapper
	loc       *time.Location
}

func NewService(st *store.Store, notifier *notify.Materializer, logger *slog.Logger, loc *time.Location) *Service {
	return &Service{
		store:     st,
		projector: &projector{store: st, notifier: notifier, logger: logger, loc: loc},
		phases:    &phaseMapper{store: st, loc: loc},
		loc:       loc,
	}
}

// MonthlyView returns one DayInfo per calendar day of the requested month.
// Projecting the view also materializes the month's supplement events and
// notifications, so repeated calls converge on the same persisted rows.
func (s *Service) MonthlyView(ctx context.Context, userID int64, year, month int) ([]DayInfo, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month out of range: %d", month)
	}
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	supplements, err := s.projector.project(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	pregnancy, err := s.phases.pregnancyPhases(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	period, err := s.phases.periodPhases(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	todos, err := s.todosByDay(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	var days []DayInfo
	for day := 1; day <= 31; day++ {
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, s.loc)
		if d.Month() != time.Month(month) {
			// time.Date normalizes overflow (e.g. Feb 30 -> Mar 2),
			// which marks the end of the month
			break
		}
		key := d.Format(dayKeyFormat)
		days = append(days, DayInfo{
			Date:           key,
			Supplements:    orEmptyOccurrences(supplements[key]),
			Todos:          orEmptyTodos(todos[key]),
			PregnancyPhase: optional(pregnancy, key),
			MenstrualPhase: optional(period, key),
		})
	}
	return days, nil
}

// todosByDay fetches the month's todo events grouped by their day key
func (s *Service) todosByDay(ctx context.Context, userID int64, monthStart, monthEnd time.Time) (map[string][]Todo, error) {
	events, err := s.store.EventsInRange(ctx, userID, monthStart, monthEnd, models.EventTypeTodo)
	if err != nil {
		return nil, err
	}
	todos := make(map[string][]Todo)
	for _, ev := range events {
		key := ev.StartDatetime.In(s.loc).Format(dayKeyFormat)
		todos[key] = append(todos[key], Todo{
			ID:   strconv.FormatInt(ev.ID, 10),
			Text: ev.Title,
			Date: key,
		})
	}
	return todos, nil
}

// AddTodo creates a todo event at midnight of the given day. Duplicate titles
// on the same day are allowed.
func (s *Service) AddTodo(ctx context.Context, userID int64, title, dateStr string) (*models.CalendarEvent, error) {
	day, err := time.ParseInLocation(dayKeyFormat, dateStr, s.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	return s.store.CreateTodoEvent(ctx, userID, title, day)
}

// DeleteTodo removes an event owned by the user along with its notifications.
// Returns false when the event does not exist or belongs to someone else.
func (s *Service) DeleteTodo(ctx context.Context, userID, eventID int64) (bool, error) {
	return s.store.DeleteEvent(ctx, eventID, userID)
}

func optional(m map[string]string, key string) *string {
	if v, ok := m[key]; ok {
		return &v
	}
	return nil
}

func orEmptyOccurrences(v []Occurrence) []Occurrence {
	if v == nil {
		return []Occurrence{}
	}
	return v
}

func orEmptyTodos(v []Todo) []Todo {
	if v == nil {
		return []Todo{}
	}
	return v
}
