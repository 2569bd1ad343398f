// Package users serves account, profile, health-date, settings, and
// doctors-note endpoints.
package users

import (
	"fmt"
	"math"
	"time"
)

// Stage is one entry of the preparation timeline
type Stage struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Range  string `json:"range"`
	Color  string `json:"color"`
	Active bool   `json:"active"`
}

var stages = []Stage{
	{ID: "basic", Label: "기초 준비기", Range: "D-180 ~ D-90", Color: "#B3D4FF"},
	{ID: "focus", Label: "집중 준비기", Range: "D-90 ~ D-30", Color: "#F6C2FF"},
	{ID: "final", Label: "임박기", Range: "D-30 ~ D-day", Color: "#FFD59D"},
}

// StageInfo describes where the user stands on the preparation timeline
type StageInfo struct {
	Label       string  `json:"label"`
	Description string  `json:"description"`
	DaysUntil   *int    `json:"daysUntil"`
	DaysToDue   *int    `json:"daysToDue"`
	Timeline    []Stage `json:"timeline"`
}

// calculateStage classifies today against the planned start and due date.
// Missing dates yield a prompt to fill them in rather than an error.
func calculateStage(startDate, dueDate *time.Time, now time.Time) StageInfo {
	if startDate == nil || dueDate == nil {
		return StageInfo{
			Label:       "일정을 입력해주세요",
			Description: "시작일과 예정일을 입력하면 단계가 계산됩니다.",
			Timeline:    timeline(""),
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	daysUntil := wholeDays(today, *startDate)
	daysToDue := wholeDays(today, *dueDate)

	var label, description string
	switch {
	case daysUntil > 90:
		label = "기초 준비기"
		description = "생활 습관을 조정하고 몸 상태를 정비하세요."
	case daysUntil > 30:
		label = "집중 준비기"
		description = "배란 주기 유지와 검진 일정을 챙겨보세요."
	case daysUntil >= 0:
		label = "임박기"
		description = "휴식과 수분 섭취, 일정한 수면 리듬을 유지하세요."
	default:
		label = "임신 진행 중"
		description = "임신 주차 정보를 기반으로 영양과 검사를 관리하세요."
	}

	return StageInfo{
		Label:       label,
		Description: description,
		DaysUntil:   &daysUntil,
		DaysToDue:   &daysToDue,
		Timeline:    timeline(label),
	}
}

func timeline(activeLabel string) []Stage {
	out := make([]Stage, len(stages))
	for i, s := range stages {
		s.Active = s.Label == activeLabel
		out[i] = s
	}
	return out
}

func wholeDays(from, to time.Time) int {
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(from) / (24 * time.Hour))
}

// WeightStatus is the pregnancy weight-gain guidance derived from
// pre-pregnancy BMI.
type WeightStatus struct {
	BMI     float64 `json:"bmi"`
	Gained  float64 `json:"gained"`
	Target  string  `json:"target"`
	Message string  `json:"message"`
}

// weightStatus maps pre-pregnancy BMI to the recommended total gain band and
// compares the actual gain against it. Nil when any measurement is missing.
func weightStatus(height, preWeight, currentWeight *float64) *WeightStatus {
	if height == nil || preWeight == nil || currentWeight == nil || *height == 0 || *preWeight == 0 || *currentWeight == 0 {
		return nil
	}

	bmi := *preWeight / math.Pow(*height/100, 2)

	var low, high float64
	switch {
	case bmi < 18.5:
		low, high = 12.5, 18
	case bmi < 25:
		low, high = 11.5, 16
	case bmi < 30:
		low, high = 7, 11.5
	default:
		low, high = 5, 9
	}

	gained := *currentWeight - *preWeight
	var message string
	switch {
	case gained < low:
		message = "조금 더 에너지를 보충해도 괜찮아요."
	case gained > high:
		message = "증가 폭이 빠릅니다. 담당의와 상의하세요."
	default:
		message = "안정적인 범위예요."
	}

	return &WeightStatus{
		BMI:     math.Round(bmi*10) / 10,
		Gained:  math.Round(gained*10) / 10,
		Target:  fmt.Sprintf("%gkg ~ %gkg", low, high),
		Message: message,
	}
}
