// Package recommend prevents re-surfacing content the user has already
// rejected, using embedding similarity against recent negative feedback.
package recommend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkondo/inforadar/internal/pipeline"
)

// Defaults for the similarity gate. The values carry no documented
// derivation; do not change them without product sign-off.
const (
	DefaultThreshold = 0.85
	DefaultWindow    = 20
)

// HistorySource supplies recent negative-feedback embeddings.
type HistorySource interface {
	RecentNegativeFeedback(ctx context.Context, limit int) ([]pipeline.FeedbackEmbedding, error)
}

// Filter compares candidate embeddings against a bounded window of
// previously disliked embeddings. The window is bounded to keep each check
// O(N) and biased toward recent feedback, since user taste drifts.
type Filter struct {
	history   HistorySource
	threshold float64
	window    int
	logger    *zap.Logger
}

// NewFilter constructs a Filter; non-positive threshold or window fall back
// to the defaults.
func NewFilter(history HistorySource, threshold float64, window int, logger *zap.Logger) *Filter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filter{
		history:   history,
		threshold: threshold,
		window:    window,
		logger:    logger,
	}
}

// ShouldSkip implements pipeline.Filter. A history lookup failure fails
// open: a filter-infrastructure outage must never block ingestion.
func (f *Filter) ShouldSkip(ctx context.Context, embedding []float32) pipeline.FilterDecision {
	disliked, err := f.history.RecentNegativeFeedback(ctx, f.window)
	if err != nil {
		f.logger.Warn("feedback history lookup failed; not filtering", zap.Error(err))
		return pipeline.FilterDecision{}
	}

	for _, item := range disliked {
		if len(item.Embedding) == 0 {
			continue
		}
		similarity := CosineSimilarity(embedding, item.Embedding)
		if similarity > f.threshold {
			return pipeline.FilterDecision{
				Skip:   true,
				Reason: fmt.Sprintf("Similar to disliked article: %q (Similarity: %.2f)", item.Title, similarity),
			}
		}
	}
	return pipeline.FilterDecision{}
}

var _ pipeline.Filter = (*Filter)(nil)
