// Package calendar is the projection engine: it walks supplement assignments
// and health windows across a requested month, materializes calendar events
// and notifications exactly once per occurrence, and labels each day with
// derived pregnancy/menstrual phases.
package calendar

import (
	"fmt"
	"time"

	"github.com/2025-Database-Soongsil/database/internal/models"
)

// Menstrual phase labels, in cycle-day order
const (
	PhaseMenstruation = "menstruation"
	PhaseFollicular   = "follicular"
	PhaseOvulation    = "ovulation"
	PhaseLuteal       = "luteal"
)

const (
	// periodCycleDays is the fixed cycle model regardless of the user's
	// actual cycle length.
	periodCycleDays = 28

	// maxProjectionSteps bounds the per-assignment walk so projection
	// terminates even for pathological start/end/cycle combinations.
	maxProjectionSteps = 500

	// maxPeriodStrides bounds the period walk (~4.6 years of cycles);
	// period tracking has no natural termination date.
	maxPeriodStrides = 60
)

// dayKeyFormat is the date key shared by occurrences, phases and day records
const dayKeyFormat = "2006-01-02"

// StepDuration maps an intake cycle to its step. "monthly" is a fixed 30
// days, so monthly assignments drift against real month boundaries over time.
// "none" steps zero: a one-time intake that never repeats.
func StepDuration(cycle string) time.Duration {
	switch cycle {
	case models.CycleDaily:
		return 24 * time.Hour
	case models.CycleWeekly:
		return 7 * 24 * time.Hour
	case models.CycleMonthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// PregnancyWeek returns the 1-indexed pregnancy week of target relative to the
// pregnancy start. target must not precede the start.
func PregnancyWeek(target, start time.Time) (int, error) {
	days := daysBetween(start, target)
	if days < 0 {
		return 0, fmt.Errorf("target %s precedes pregnancy start %s",
			target.Format(dayKeyFormat), start.Format(dayKeyFormat))
	}
	return days/7 + 1, nil
}

// PregnancyWeekLabel formats the week for display, e.g. "12주차"
func PregnancyWeekLabel(target, start time.Time) (string, error) {
	week, err := PregnancyWeek(target, start)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d주차", week), nil
}

// PeriodPhase classifies target within a fixed 28-day cycle anchored at the
// last period start. The modulo is floored, so dates before the anchor still
// resolve via wraparound.
func PeriodPhase(target, lastPeriodStart time.Time) string {
	d := daysBetween(lastPeriodStart, target) % periodCycleDays
	if d < 0 {
		d += periodCycleDays
	}
	switch {
	case d < 5:
		return PhaseMenstruation
	case d < 14:
		return PhaseFollicular
	case d < 21:
		return PhaseOvulation
	default:
		return PhaseLuteal
	}
}

// daysBetween counts whole calendar days from a to b, ignoring clock time.
// Computed on normalized UTC dates so DST shifts can never skew the count.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}
