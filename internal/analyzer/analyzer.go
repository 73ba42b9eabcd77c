// Package analyzer adapts a text model into the article-analysis contract:
// summary, importance, entities, sentiment, tags and an embedding, with
// defensive parsing and a degraded fallback path.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mkondo/inforadar/internal/pipeline"
)

// analysisInputCap bounds the article text handed to the model, in runes.
const analysisInputCap = 10000

const fallbackSummary = "Summary unavailable."

// TextModel is the opaque model behind the analyzer.
type TextModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Analyzer implements pipeline.Analyzer on top of a TextModel.
type Analyzer struct {
	model  TextModel
	logger *zap.Logger
}

// New constructs an Analyzer.
func New(model TextModel, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		model:  model,
		logger: logger,
	}
}

// Analyze runs the full analysis prompt and parses the model's JSON output.
// On any model or parse failure it degrades to a plain summarization pass
// with neutral defaults instead of failing the article.
func (a *Analyzer) Analyze(ctx context.Context, title, content string) (pipeline.Analysis, error) {
	raw, err := a.model.Generate(ctx, analysisPrompt(title, truncateRunes(content, analysisInputCap)))
	if err != nil {
		a.logger.Warn("analysis generation failed; using fallback", zap.String("title", title), zap.Error(err))
		return a.fallback(ctx, title, content), nil
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		a.logger.Warn("analysis output unparseable; using fallback", zap.String("title", title), zap.Error(err))
		return a.fallback(ctx, title, content), nil
	}

	analysis.Embedding = a.embed(ctx, title, analysis.Summary)
	return analysis, nil
}

// fallback produces the degraded analysis: summary plus embedding with
// neutral defaults.
func (a *Analyzer) fallback(ctx context.Context, title, content string) pipeline.Analysis {
	summary, err := a.model.Generate(ctx, summaryPrompt(truncateRunes(content, analysisInputCap)))
	if err != nil || strings.TrimSpace(summary) == "" {
		if err != nil {
			a.logger.Warn("fallback summarization failed", zap.String("title", title), zap.Error(err))
		}
		summary = fallbackSummary
	}
	return pipeline.Analysis{
		Summary:         strings.TrimSpace(summary),
		ImportanceScore: 50,
		Entities:        []pipeline.Entity{},
		Sentiment:       pipeline.SentimentNeutral,
		Tags:            []string{},
		Embedding:       a.embed(ctx, title, summary),
	}
}

func (a *Analyzer) embed(ctx context.Context, title, summary string) []float32 {
	embedding, err := a.model.Embed(ctx, title+"\n"+summary)
	if err != nil {
		a.logger.Warn("embedding generation failed", zap.String("title", title), zap.Error(err))
		return nil
	}
	return embedding
}

type analysisPayload struct {
	Summary         string            `json:"summary"`
	ImportanceScore *int              `json:"importance_score"`
	Entities        []pipeline.Entity `json:"entities"`
	Sentiment       string            `json:"sentiment"`
	Tags            []string          `json:"tags"`
}

// parseAnalysis decodes the model output, tolerating markdown code fences
// and coercing out-of-contract values to safe defaults.
func parseAnalysis(raw string) (pipeline.Analysis, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var payload analysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return pipeline.Analysis{}, fmt.Errorf("decode analysis output: %w", err)
	}

	summary := strings.TrimSpace(payload.Summary)
	if summary == "" {
		summary = fallbackSummary
	}

	importance := 50
	if payload.ImportanceScore != nil {
		importance = clamp(*payload.ImportanceScore, 0, 100)
	}

	sentiment := pipeline.Sentiment(payload.Sentiment)
	switch sentiment {
	case pipeline.SentimentPositive, pipeline.SentimentNeutral, pipeline.SentimentNegative:
	default:
		sentiment = pipeline.SentimentNeutral
	}

	entities := payload.Entities
	if entities == nil {
		entities = []pipeline.Entity{}
	}

	tags := payload.Tags
	if tags == nil {
		tags = []string{}
	}
	if len(tags) > 5 {
		tags = tags[:5]
	}

	return pipeline.Analysis{
		Summary:         summary,
		ImportanceScore: importance,
		Entities:        entities,
		Sentiment:       sentiment,
		Tags:            tags,
	}, nil
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

var _ pipeline.Analyzer = (*Analyzer)(nil)
