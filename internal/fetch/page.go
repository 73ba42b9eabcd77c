package fetch

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/mkondo/inforadar/internal/pipeline"
)

const defaultPageContentCap = 5000

var whitespaceExpr = regexp.MustCompile(`\s+`)

// PageConfig controls single-page extraction.
type PageConfig struct {
	UserAgent string
	Timeout   time.Duration
	// ContentCap bounds extracted text, in runes (default 5000).
	ContentCap int
}

// PageFetcher extracts a single item from an arbitrary web page. Crawl
// permission is decided upstream by the robots gate, so the collector's own
// robots handling stays off.
type PageFetcher struct {
	cfg           PageConfig
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewPageFetcher builds a PageFetcher.
func NewPageFetcher(cfg PageConfig, logger *zap.Logger) *PageFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.ContentCap <= 0 {
		cfg.ContentCap = defaultPageContentCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageFetcher{
		cfg:           cfg,
		baseCollector: colly.NewCollector(colly.Async(false)),
		logger:        logger,
	}
}

// FetchPage implements pipeline.PageFetcher.
func (f *PageFetcher) FetchPage(ctx context.Context, url string) (*pipeline.RawItem, error) {
	body, err := f.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", url, err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	content := extractText(doc)

	return &pipeline.RawItem{
		Title:       title,
		URL:         url,
		Content:     truncateRunes(collapseWhitespace(content), f.cfg.ContentCap),
		PublishedAt: time.Now().UTC(),
	}, nil
}

func (f *PageFetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	// The visited-URL store is shared across clones; sources are refetched
	// every run.
	collector.AllowURLRevisit = true
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("page fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("visit %s: %w", url, err)
		}
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, fetchErr)
		}
		return body, nil
	}
}

// extractText walks the usual content containers from most to least
// specific.
func extractText(doc *goquery.Document) string {
	for _, selector := range []string{"article", "main", "body"} {
		text := doc.Find(selector).Text()
		if strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(s, " "))
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

var _ pipeline.PageFetcher = (*PageFetcher)(nil)
