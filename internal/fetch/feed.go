// Package fetch implements the source-type fetch strategies: syndication
// feeds and single-page extraction.
package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/mkondo/inforadar/internal/pipeline"
)

// FeedFetcher pulls RSS/Atom feeds. It is fail-soft: a feed that cannot be
// fetched or parsed yields an empty slice rather than an error, so one bad
// feed never looks different from an empty one to the run loop.
type FeedFetcher struct {
	parser *gofeed.Parser
	logger *zap.Logger
}

// NewFeedFetcher builds a FeedFetcher with the given crawler identity.
func NewFeedFetcher(userAgent string, timeout time.Duration, logger *zap.Logger) *FeedFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: timeout}
	return &FeedFetcher{
		parser: parser,
		logger: logger,
	}
}

// FetchFeed implements pipeline.FeedFetcher.
func (f *FeedFetcher) FetchFeed(ctx context.Context, url string) ([]pipeline.RawItem, error) {
	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		f.logger.Warn("feed fetch failed", zap.String("url", url), zap.Error(err))
		return nil, nil
	}

	items := make([]pipeline.RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		title := item.Title
		if title == "" {
			title = "No Title"
		}
		content := item.Description
		if content == "" {
			content = item.Content
		}
		publishedAt := time.Now().UTC()
		if item.PublishedParsed != nil {
			publishedAt = item.PublishedParsed.UTC()
		}
		items = append(items, pipeline.RawItem{
			Title:       title,
			URL:         item.Link,
			Content:     content,
			PublishedAt: publishedAt,
		})
	}
	return items, nil
}

var _ pipeline.FeedFetcher = (*FeedFetcher)(nil)
