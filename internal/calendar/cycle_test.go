package calendar

import (
	"testing"
	"time"

	"github.com/2025-Database-Soongsil/database/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStepDuration(t *testing.T) {
	tests := []struct {
		cycle string
		want  time.Duration
	}{
		{models.CycleDaily, 24 * time.Hour},
		{models.CycleWeekly, 7 * 24 * time.Hour},
		{models.CycleMonthly, 30 * 24 * time.Hour},
		{models.CycleNone, 0},
		{"", 0},
		{"fortnightly", 0},
	}
	for _, tt := range tests {
		if got := StepDuration(tt.cycle); got != tt.want {
			t.Errorf("StepDuration(%q) = %v, want %v", tt.cycle, got, tt.want)
		}
	}
}

func TestPregnancyWeek(t *testing.T) {
	start := date(2024, time.January, 10)

	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"start day is week 1", start, 1},
		{"sixth day still week 1", date(2024, time.January, 16), 1},
		{"seventh day rolls to week 2", date(2024, time.January, 17), 2},
		{"day 280 is week 41", date(2024, time.October, 16), 41},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PregnancyWeek(tt.target, start)
			if err != nil {
				t.Fatalf("PregnancyWeek() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PregnancyWeek(%s) = %d, want %d", tt.target.Format(dayKeyFormat), got, tt.want)
			}
		})
	}

	if _, err := PregnancyWeek(date(2024, time.January, 9), start); err == nil {
		t.Error("expected error for target before pregnancy start")
	}
}

func TestPregnancyWeekLabel(t *testing.T) {
	start := date(2024, time.January, 10)

	label, err := PregnancyWeekLabel(date(2024, time.March, 27), start)
	if err != nil {
		t.Fatalf("PregnancyWeekLabel() error: %v", err)
	}
	if label != "12주차" {
		t.Errorf("PregnancyWeekLabel() = %q, want %q", label, "12주차")
	}
}

func TestPeriodPhaseBands(t *testing.T) {
	anchor := date(2024, time.January, 1)

	tests := []struct {
		offsetDays int
		want       string
	}{
		{0, PhaseMenstruation},
		{4, PhaseMenstruation},
		{5, PhaseFollicular},
		{13, PhaseFollicular},
		{14, PhaseOvulation},
		{20, PhaseOvulation},
		{21, PhaseLuteal},
		{27, PhaseLuteal},
		{28, PhaseMenstruation}, // next cycle wraps
		{33, PhaseFollicular},
	}
	for _, tt := range tests {
		target := anchor.AddDate(0, 0, tt.offsetDays)
		if got := PeriodPhase(target, anchor); got != tt.want {
			t.Errorf("PeriodPhase(+%dd) = %q, want %q", tt.offsetDays, got, tt.want)
		}
	}
}

func TestPeriodPhaseBeforeAnchor(t *testing.T) {
	anchor := date(2024, time.February, 1)

	// One day before the anchor is cycle day 27, the tail of the luteal band
	if got := PeriodPhase(date(2024, time.January, 31), anchor); got != PhaseLuteal {
		t.Errorf("PeriodPhase(anchor-1d) = %q, want %q", got, PhaseLuteal)
	}
	// A full cycle before the anchor lands back on menstruation
	if got := PeriodPhase(anchor.AddDate(0, 0, -periodCycleDays), anchor); got != PhaseMenstruation {
		t.Errorf("PeriodPhase(anchor-28d) = %q, want %q", got, PhaseMenstruation)
	}
}
