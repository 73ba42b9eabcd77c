package pipeline

import (
	"context"
	"time"
)

// Store is the persistence boundary consumed by the run loop.
type Store interface {
	ListSources(ctx context.Context) ([]Source, error)
	ExistsByURL(ctx context.Context, url string) (bool, error)
	InsertArticle(ctx context.Context, article Article) (Article, error)
	RecentNegativeFeedback(ctx context.Context, limit int) ([]FeedbackEmbedding, error)
}

// FeedFetcher pulls items from a syndication feed. Implementations are
// fail-soft: a feed that cannot be fetched or parsed yields an empty slice.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, url string) ([]RawItem, error)
}

// PageFetcher extracts a single item from a web page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*RawItem, error)
}

// Analyzer produces the analysis payload for one article.
type Analyzer interface {
	Analyze(ctx context.Context, title, content string) (Analysis, error)
}

// GateDecision is the outcome of a crawl-permission check. Note carries a
// human-readable degradation message (e.g. a robots.txt fetch failure) for
// the run log; it may be set even when the fetch is allowed.
type GateDecision struct {
	Allowed bool
	Note    string
}

// Gate decides whether the pipeline may fetch a URL.
type Gate interface {
	Check(ctx context.Context, rawURL string) GateDecision
}

// FilterDecision is the outcome of the similarity filter for one candidate.
type FilterDecision struct {
	Skip   bool
	Reason string
}

// Filter decides whether a candidate embedding is too close to content the
// user already rejected.
type Filter interface {
	ShouldSkip(ctx context.Context, embedding []float32) FilterDecision
}

// Notifier delivers a saved article to an outbound channel, best effort.
type Notifier interface {
	Notify(ctx context.Context, article Article) error
}

// Archive stores raw fetched content and returns a URI, best effort.
type Archive interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces article IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
