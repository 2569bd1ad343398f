package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/2025-Database-Soongsil/database/internal/metrics"
	"github.com/2025-Database-Soongsil/database/internal/models"
	"github.com/2025-Database-Soongsil/database/internal/notify"
	"github.com/2025-Database-Soongsil/database/internal/store"
)

// Occurrence is one concrete date+time instance of a supplement intake,
// derived from an assignment's cycle.
type Occurrence struct {
	Name string `json:"name"`
	Time string `json:"time"` // HH:MM
}

// projector walks supplement assignments across a month window and
// materializes the backing event and notification rows as it goes.
type projector struct {
	store    *store.Store
	notifier *notify.Materializer
	logger   *slog.Logger
	loc      *time.Location
}

// project returns in-month intake occurrences keyed by "YYYY-MM-DD".
// Side effect: each emitted occurrence is persisted as a calendar event with
// its notification. Both writes are idempotent, so re-projecting a month never
// grows row counts.
func (p *projector) project(ctx context.Context, userID int64, monthStart, monthEnd time.Time) (map[string][]Occurrence, error) {
	assignments, err := p.store.UserSupplements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplement assignments: %w", err)
	}

	// Resolve the catalog once up front; assignments referencing missing
	// entries are skipped silently below.
	supplements, err := p.store.Supplements(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplement catalog: %w", err)
	}
	catalog := make(map[int64]models.Supplement, len(supplements))
	for _, s := range supplements {
		catalog[s.ID] = s
	}

	occurrences := make(map[string][]Occurrence)
	for _, assignment := range assignments {
		if err := p.walkAssignment(ctx, assignment, catalog, monthStart, monthEnd, occurrences); err != nil {
			return nil, err
		}
	}
	return occurrences, nil
}

// walkAssignment steps one assignment from its start date through its
// validity window, emitting and materializing every in-month occurrence.
func (p *projector) walkAssignment(
	ctx context.Context,
	assignment models.UserSupplement,
	catalog map[int64]models.Supplement,
	monthStart, monthEnd time.Time,
	occurrences map[string][]Occurrence,
) error {
	current := p.dateOf(assignment.StartDate)

	// Open-ended assignments are only walked through the requested month
	limit := monthEnd
	if assignment.EndDate != nil {
		limit = p.dateOf(*assignment.EndDate)
	}

	for i := 0; i < maxProjectionSteps; i++ {
		if current.After(limit) {
			break
		}

		if !current.Before(monthStart) && current.Before(monthEnd) {
			definition, ok := catalog[assignment.SupplementID]
			if !ok {
				// Assignment references a supplement that no longer
				// exists. Dropped, never fatal: the monthly view must
				// survive partial data.
				metrics.CatalogMisses.Inc()
				p.logger.Warn("skipping assignment with missing catalog entry",
					"user_id", assignment.UserID,
					"assignment_id", assignment.ID,
					"supplement_id", assignment.SupplementID)
			} else {
				if err := p.materialize(ctx, assignment, definition, current, occurrences); err != nil {
					return err
				}
			}
		}

		step := StepDuration(assignment.Cycle)
		if assignment.Cycle == models.CycleNone || step <= 0 {
			// One-time intake: present only if its single date fell in-window
			break
		}
		current = current.AddDate(0, 0, int(step/(24*time.Hour)))
	}
	return nil
}

// materialize emits the in-memory occurrence and persists its event and
// notification rows.
func (p *projector) materialize(
	ctx context.Context,
	assignment models.UserSupplement,
	definition models.Supplement,
	day time.Time,
	occurrences map[string][]Occurrence,
) error {
	timeOfDay := assignment.TimeOfDay
	if timeOfDay == "" {
		timeOfDay = models.DefaultTimeOfDay
	}

	key := day.Format(dayKeyFormat)
	occurrences[key] = append(occurrences[key], Occurrence{
		Name: definition.Name,
		Time: timeOfDay,
	})

	start := combine(day, timeOfDay, p.loc)
	title := fmt.Sprintf("%s 복용", definition.Name)
	event, created, err := p.store.UpsertSupplementEvent(ctx, assignment.UserID, assignment.SupplementID, start, title)
	if err != nil {
		return err
	}
	if created {
		metrics.EventsMaterialized.Inc()
	}

	if _, err := p.notifier.EnsureForEvent(ctx, event); err != nil {
		return err
	}
	return nil
}

// dateOf normalizes a timestamp to midnight in the engine's fixed timezone
func (p *projector) dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.loc)
}

// combine joins a calendar day with an HH:MM intake time. Unparseable times
// fall back to the 09:00 default.
func combine(day time.Time, timeOfDay string, loc *time.Location) time.Time {
	parsed, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		parsed, _ = time.Parse("15:04", models.DefaultTimeOfDay)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc)
}
