package chatbot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGuideChunksLoad(t *testing.T) {
	chunks := loadGuideChunks()
	if len(chunks) < 5 {
		t.Fatalf("expected several guide passages, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("chunk %d is blank", i)
		}
		if strings.Contains(chunk, "\n\n") {
			t.Errorf("chunk %d was not split on blank lines", i)
		}
	}
}

func TestKeywordFallback(t *testing.T) {
	engine := NewEngine("", testLogger())

	tests := []struct {
		message     string
		wantReply   string
		wantMatched string
	}{
		{"요즘 먹을 영양제 추천해줘", "현재 단계에서는 엽산과 오메가3 조합이 많이 선택되고 있어요.", "영양제"},
		{"체중이 너무 늘어난 것 같아요", "주당 0.3~0.5kg 증가가 안정적이라는 점만 기억하세요.", "체중"},
		{"어떤 운동이 좋을까?", "30분 걷기나 스트레칭이 배란 준비에 도움이 됩니다.", "운동"},
	}
	for _, tt := range tests {
		answer := engine.Ask(context.Background(), tt.message)
		if answer.Reply != tt.wantReply {
			t.Errorf("Ask(%q) reply = %q, want %q", tt.message, answer.Reply, tt.wantReply)
		}
		if answer.Matched == nil || *answer.Matched != tt.wantMatched {
			t.Errorf("Ask(%q) matched = %v, want %q", tt.message, answer.Matched, tt.wantMatched)
		}
	}
}

func TestKeywordFallbackDefault(t *testing.T) {
	engine := NewEngine("", testLogger())

	answer := engine.Ask(context.Background(), "오늘 날씨 어때?")
	if answer.Reply != defaultReply {
		t.Errorf("reply = %q, want default", answer.Reply)
	}
	if answer.Matched != nil {
		t.Errorf("matched should be nil, got %q", *answer.Matched)
	}
}

func TestDotRanking(t *testing.T) {
	query := []float32{1, 0, 0}
	near := []float32{0.9, 0.1, 0}
	far := []float32{0, 0, 1}

	if dot(query, near) <= dot(query, far) {
		t.Error("closer vector should score higher")
	}
	// Mismatched lengths truncate instead of panicking
	if got := dot([]float32{1, 1, 1}, []float32{2}); got != 2 {
		t.Errorf("truncated dot = %v, want 2", got)
	}
}
