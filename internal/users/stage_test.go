package users

import (
	"testing"
	"time"
)

func fptr(v float64) *float64 { return &v }

func TestWeightStatusBands(t *testing.T) {
	tests := []struct {
		name       string
		height     float64
		preWeight  float64
		current    float64
		wantTarget string
	}{
		{"underweight", 170, 50, 55, "12.5kg ~ 18kg"},
		{"normal", 165, 58, 62, "11.5kg ~ 16kg"},
		{"overweight", 160, 70, 75, "7kg ~ 11.5kg"},
		{"obese", 160, 80, 84, "5kg ~ 9kg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := weightStatus(fptr(tt.height), fptr(tt.preWeight), fptr(tt.current))
			if got == nil {
				t.Fatal("expected a status")
			}
			if got.Target != tt.wantTarget {
				t.Errorf("target = %q, want %q", got.Target, tt.wantTarget)
			}
		})
	}
}

func TestWeightStatusMessages(t *testing.T) {
	// Normal BMI band: target 11.5-16kg
	slow := weightStatus(fptr(165), fptr(58), fptr(60))
	if slow.Message != "조금 더 에너지를 보충해도 괜찮아요." {
		t.Errorf("slow gain message = %q", slow.Message)
	}
	fast := weightStatus(fptr(165), fptr(58), fptr(80))
	if fast.Message != "증가 폭이 빠릅니다. 담당의와 상의하세요." {
		t.Errorf("fast gain message = %q", fast.Message)
	}
	stable := weightStatus(fptr(165), fptr(58), fptr(71))
	if stable.Message != "안정적인 범위예요." {
		t.Errorf("stable gain message = %q", stable.Message)
	}
}

func TestWeightStatusMissingMeasurements(t *testing.T) {
	if got := weightStatus(nil, fptr(58), fptr(60)); got != nil {
		t.Errorf("expected nil without height, got %+v", got)
	}
	if got := weightStatus(fptr(165), fptr(0), fptr(60)); got != nil {
		t.Errorf("expected nil with zero pre-weight, got %+v", got)
	}
}

func TestCalculateStage(t *testing.T) {
	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	due := now.AddDate(1, 0, 0)

	tests := []struct {
		name      string
		startFrom int // days from now
		want      string
	}{
		{"far out", 120, "기초 준비기"},
		{"mid", 60, "집중 준비기"},
		{"imminent", 10, "임박기"},
		{"today", 0, "임박기"},
		{"already started", -5, "임신 진행 중"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := now.AddDate(0, 0, tt.startFrom)
			got := calculateStage(&start, &due, now)
			if got.Label != tt.want {
				t.Errorf("label = %q, want %q", got.Label, tt.want)
			}
			if got.DaysUntil == nil || *got.DaysUntil != tt.startFrom {
				t.Errorf("daysUntil = %v, want %d", got.DaysUntil, tt.startFrom)
			}
			active := 0
			for _, stage := range got.Timeline {
				if stage.Active {
					active++
					if stage.Label != tt.want && tt.want != "임신 진행 중" {
						t.Errorf("active stage = %q, want %q", stage.Label, tt.want)
					}
				}
			}
			if tt.want == "임신 진행 중" && active != 0 {
				t.Error("no timeline stage should be active after the start date")
			}
		})
	}
}

func TestCalculateStageMissingDates(t *testing.T) {
	got := calculateStage(nil, nil, time.Now())
	if got.Label != "일정을 입력해주세요" {
		t.Errorf("label = %q", got.Label)
	}
	if got.DaysUntil != nil || got.DaysToDue != nil {
		t.Error("day counts should be nil without dates")
	}
	if len(got.Timeline) != 3 {
		t.Errorf("timeline should list all stages, got %d", len(got.Timeline))
	}
}
