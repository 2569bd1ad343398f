package calendar

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/2025-Database-Soongsil/database/internal/store"
)

// phaseMapper labels calendar days with derived pregnancy weeks and
// predicted menstrual phases for the monthly view.
type phaseMapper struct {
	store *store.Store
	loc   *time.Location
}

// pregnancyPhases labels every in-month day between pregnancy start and due
// date (inclusive) with its week, keyed by "YYYY-MM-DD". Users with no
// pregnancy window recorded get an empty map.
func (p *phaseMapper) pregnancyPhases(ctx context.Context, userID int64, monthStart, monthEnd time.Time) (map[string]string, error) {
	phases := make(map[string]string)

	info, err := p.store.PregnancyInfoByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return phases, nil
	}
	if err != nil {
		return nil, err
	}
	if info.PregnancyStart == nil || info.DueDate == nil {
		return phases, nil
	}

	start := p.dateOf(*info.PregnancyStart)
	due := p.dateOf(*info.DueDate)

	for current := start; !current.After(due); current = current.AddDate(0, 0, 1) {
		if current.Before(monthStart) || !current.Before(monthEnd) {
			continue
		}
		label, err := PregnancyWeekLabel(current, start)
		if err != nil {
			return nil, err
		}
		phases[current.Format(dayKeyFormat)] = label
	}
	return phases, nil
}

// periodPhases labels predicted cycle-start days with their menstrual phase.
// The walk strides a fixed 28 days from the last recorded period, so only the
// projected period-start days carry a label, not every day in between.
func (p *phaseMapper) periodPhases(ctx context.Context, userID int64, monthStart, monthEnd time.Time) (map[string]string, error) {
	phases := make(map[string]string)

	info, err := p.store.PeriodInfoByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return phases, nil
	}
	if err != nil {
		return nil, err
	}
	if info.LastPeriod == nil {
		return phases, nil
	}

	last := p.dateOf(*info.LastPeriod)
	current := last
	for i := 0; i < maxPeriodStrides; i++ {
		if current.After(monthEnd) {
			break
		}
		if !current.Before(monthStart) && current.Before(monthEnd) {
			phases[current.Format(dayKeyFormat)] = PeriodPhase(current, last)
		}
		current = current.AddDate(0, 0, periodCycleDays)
	}
	return phases, nil
}

// dateOf normalizes a timestamp to midnight in the engine's fixed timezone
func (p *phaseMapper) dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.loc)
}
