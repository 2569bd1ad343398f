// Package chatbot answers user questions with retrieval-augmented generation
// over an embedded pregnancy-prep guide, falling back to keyword hints when no
// model is configured.
package chatbot

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

//go:embed data/pregnancy_guide.txt
var guideFS embed.FS

const (
	embeddingModel = openai.SmallEmbedding3
	chatModel      = openai.GPT4o

	// retrievalTopK is how many guide passages are stuffed into the prompt
	retrievalTopK = 3
)

const systemPrompt = "당신은 난임 및 임신 준비 여성을 돕는 따뜻하고 사려 깊은 'AI 코디네이터'입니다. " +
	"의학적 위급상황이나 개인적인 진단을 요구하는 질문에는 정보를 주지 말고 " +
	"'저는 의사가 아니기 때문에 정확한 진단을 위해 꼭 병원에 방문하셔서 전문의와 상담해보시길 권해드려요.'라고 정중하게 안내하세요. " +
	"임신, 영양제, 시술 관련 정보성 질문은 반드시 아래 제공된 [문맥]에 있는 내용을 바탕으로 답변하고, " +
	"[문맥]에 없는 내용은 지어내지 말고 솔직하게 모른다고 답하세요. " +
	"일상적인 주제는 친구처럼 자유롭고 친절하게 대화하세요. " +
	"항상 공감하는 따뜻하고 부드러운 '해요'체를 사용하세요.\n\n[문맥]:\n%s"

const defaultReply = "지금 단계에 맞는 할 일과 알림을 자동으로 정리해 둘게요."

// hint is a keyword fallback answer used when no model is configured
type hint struct {
	Keyword string
	Reply   string
}

var hints = []hint{
	{Keyword: "영양제", Reply: "현재 단계에서는 엽산과 오메가3 조합이 많이 선택되고 있어요."},
	{Keyword: "체중", Reply: "주당 0.3~0.5kg 증가가 안정적이라는 점만 기억하세요."},
	{Keyword: "운동", Reply: "30분 걷기나 스트레칭이 배란 준비에 도움이 됩니다."},
}

// Answer is the chatbot's reply plus what informed it
type Answer struct {
	Reply   string   `json:"reply"`
	Matched *string  `json:"matched"`
	Context []string `json:"-"`
}

// Engine holds the OpenAI client and the in-memory guide index. Embeddings
// are computed once on first use and kept for the life of the process.
type Engine struct {
	client *openai.Client
	logger *slog.Logger

	chunks []string

	indexOnce sync.Once
	indexErr  error
	vectors   [][]float32
}

// NewEngine builds the chatbot. With an empty API key the engine answers from
// keyword hints only.
func NewEngine(apiKey string, logger *slog.Logger) *Engine {
	e := &Engine{logger: logger, chunks: loadGuideChunks()}
	if apiKey != "" {
		e.client = openai.NewClient(apiKey)
	}
	return e
}

// loadGuideChunks splits the embedded guide into passages on blank lines
func loadGuideChunks() []string {
	raw, err := guideFS.ReadFile("data/pregnancy_guide.txt")
	if err != nil {
		return nil
	}
	var chunks []string
	for _, block := range strings.Split(string(raw), "\n\n") {
		if trimmed := strings.TrimSpace(block); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
	}
	return chunks
}

// Ask answers one user message. Model failures degrade to the keyword
// fallback rather than erroring, so the endpoint never breaks on upstream
// trouble.
func (e *Engine) Ask(ctx context.Context, message string) Answer {
	if e.client == nil {
		return e.keywordAnswer(message)
	}

	answer, err := e.ragAnswer(ctx, message)
	if err != nil {
		e.logger.Warn("chatbot model call failed, using keyword fallback", "error", err)
		return e.keywordAnswer(message)
	}
	return answer
}

func (e *Engine) keywordAnswer(message string) Answer {
	for _, h := range hints {
		if strings.Contains(message, h.Keyword) {
			keyword := h.Keyword
			return Answer{Reply: h.Reply, Matched: &keyword}
		}
	}
	return Answer{Reply: defaultReply}
}

func (e *Engine) ragAnswer(ctx context.Context, message string) (Answer, error) {
	passages, err := e.retrieve(ctx, message)
	if err != nil {
		return Answer{}, err
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPrompt, strings.Join(passages, "\n\n"))},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return Answer{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Answer{}, fmt.Errorf("chat completion returned no choices")
	}
	return Answer{Reply: resp.Choices[0].Message.Content, Context: passages}, nil
}

// retrieve returns the guide passages most similar to the query
func (e *Engine) retrieve(ctx context.Context, query string) ([]string, error) {
	if err := e.buildIndex(ctx); err != nil {
		return nil, err
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: embeddingModel,
		Input: []string{query},
	})
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	queryVec := resp.Data[0].Embedding

	type scored struct {
		score float32
		chunk string
	}
	ranked := make([]scored, len(e.vectors))
	for i, vec := range e.vectors {
		ranked[i] = scored{score: dot(queryVec, vec), chunk: e.chunks[i]}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	k := retrievalTopK
	if k > len(ranked) {
		k = len(ranked)
	}
	passages := make([]string, 0, k)
	for _, r := range ranked[:k] {
		passages = append(passages, r.chunk)
	}
	return passages, nil
}

// buildIndex embeds all guide chunks once
func (e *Engine) buildIndex(ctx context.Context) error {
	e.indexOnce.Do(func() {
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: embeddingModel,
			Input: e.chunks,
		})
		if err != nil {
			e.indexErr = fmt.Errorf("guide embedding failed: %w", err)
			return
		}
		e.vectors = make([][]float32, len(resp.Data))
		for i, d := range resp.Data {
			e.vectors[i] = d.Embedding
		}
	})
	return e.indexErr
}

// dot is the similarity measure; embedding vectors come back normalized so a
// plain dot product ranks the same as cosine.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		if i >= len(b) {
			break
		}
		sum += a[i] * b[i]
	}
	return sum
}
