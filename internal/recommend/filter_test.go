package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mkondo/inforadar/internal/pipeline"
)

type stubHistory struct {
	feedback []pipeline.FeedbackEmbedding
	err      error
	gotLimit int
}

func (s *stubHistory) RecentNegativeFeedback(_ context.Context, limit int) ([]pipeline.FeedbackEmbedding, error) {
	s.gotLimit = limit
	return s.feedback, s.err
}

func TestFilterSkipsSimilarEmbedding(t *testing.T) {
	t.Parallel()

	history := &stubHistory{feedback: []pipeline.FeedbackEmbedding{
		{ArticleID: "a1", Title: "Celebrity gossip roundup", Embedding: []float32{1, 0, 0}},
	}}
	filter := NewFilter(history, 0.85, 20, zap.NewNop())

	decision := filter.ShouldSkip(context.Background(), []float32{1, 0, 0})
	assert.True(t, decision.Skip)
	assert.Equal(t, `Similar to disliked article: "Celebrity gossip roundup" (Similarity: 1.00)`, decision.Reason)
	assert.Equal(t, 20, history.gotLimit)
}

func TestFilterPassesDissimilarEmbedding(t *testing.T) {
	t.Parallel()

	history := &stubHistory{feedback: []pipeline.FeedbackEmbedding{
		{Title: "disliked", Embedding: []float32{1, 0, 0}},
	}}
	filter := NewFilter(history, 0.85, 20, zap.NewNop())

	decision := filter.ShouldSkip(context.Background(), []float32{0, 1, 0})
	assert.False(t, decision.Skip)
	assert.Empty(t, decision.Reason)
}

func TestFilterThresholdIsExclusive(t *testing.T) {
	t.Parallel()

	history := &stubHistory{feedback: []pipeline.FeedbackEmbedding{
		{Title: "disliked", Embedding: []float32{1, 0}},
	}}
	// Similarity exactly at the threshold does not trip the filter.
	filter := NewFilter(history, 1.0, 20, zap.NewNop())

	decision := filter.ShouldSkip(context.Background(), []float32{1, 0})
	assert.False(t, decision.Skip)
}

func TestFilterFailsOpenOnHistoryError(t *testing.T) {
	t.Parallel()

	history := &stubHistory{err: errors.New("db down")}
	filter := NewFilter(history, 0.85, 20, zap.NewNop())

	decision := filter.ShouldSkip(context.Background(), []float32{1, 0, 0})
	assert.False(t, decision.Skip)
}

func TestFilterIgnoresEmptyHistoryEmbeddings(t *testing.T) {
	t.Parallel()

	history := &stubHistory{feedback: []pipeline.FeedbackEmbedding{
		{Title: "no embedding"},
		{Title: "match", Embedding: []float32{0, 1}},
	}}
	filter := NewFilter(history, 0.85, 20, zap.NewNop())

	decision := filter.ShouldSkip(context.Background(), []float32{0, 1})
	assert.True(t, decision.Skip)
	assert.Contains(t, decision.Reason, `"match"`)
}

func TestNewFilterDefaults(t *testing.T) {
	t.Parallel()

	history := &stubHistory{}
	filter := NewFilter(history, 0, 0, nil)
	filter.ShouldSkip(context.Background(), []float32{1})

	assert.Equal(t, DefaultWindow, history.gotLimit)
	assert.InDelta(t, DefaultThreshold, filter.threshold, 1e-9)
}
