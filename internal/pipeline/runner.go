package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkondo/inforadar/internal/metrics"
)

const (
	// filteredImportance is the importance forced onto articles matched by
	// the similarity filter. Matched items are de-emphasized, not dropped:
	// they stay in the store as a historical record but out of prominent
	// views.
	filteredImportance = 10

	// autoFilteredTag marks articles downgraded by the similarity filter.
	autoFilteredTag = "Auto-Filtered"

	defaultContentCap = 20000
)

// Config controls Runner behavior.
type Config struct {
	// ContentCap bounds stored article content, in runes. Raw content is
	// archived in full before truncation when an Archive is configured.
	ContentCap int
	// ArchivePrefix prefixes archive object paths.
	ArchivePrefix string
}

// Runner executes one ingestion pass over all configured sources. It holds no
// cross-run state; everything it knows at the start of a run comes from the
// store.
type Runner struct {
	store    Store
	gate     Gate
	feeds    FeedFetcher
	pages    PageFetcher
	analyzer Analyzer
	filter   Filter
	notifier Notifier
	archive  Archive
	clock    Clock
	ids      IDGenerator
	cfg      Config
	logger   *zap.Logger
}

// NewRunner constructs a Runner. The notifier and archive are optional;
// everything else is required.
func NewRunner(
	store Store,
	gate Gate,
	feeds FeedFetcher,
	pages PageFetcher,
	analyzer Analyzer,
	filter Filter,
	notifier Notifier,
	archive Archive,
	clock Clock,
	ids IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Runner {
	if cfg.ContentCap <= 0 {
		cfg.ContentCap = defaultContentCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		store:    store,
		gate:     gate,
		feeds:    feeds,
		pages:    pages,
		analyzer: analyzer,
		filter:   filter,
		notifier: notifier,
		archive:  archive,
		clock:    clock,
		ids:      ids,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run processes every configured source once and returns the run summary.
// A failure in one source or one article is logged and the loop advances;
// the only whole-run failure is being unable to list sources at all.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	sources, err := r.store.ListSources(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list sources: %w", err)
	}

	log := NewRunLog()
	log.Addf("Found %d sources", len(sources))

	processed := 0
	for _, source := range sources {
		r.processSource(ctx, source, log, &processed)
	}

	r.logger.Info("run complete",
		zap.Int("sources", len(sources)),
		zap.Int("processed", processed),
	)
	return Result{Processed: processed, Logs: log.Lines()}, nil
}

func (r *Runner) processSource(ctx context.Context, source Source, log *RunLog, processed *int) {
	log.Addf("Processing source: %s (%s)", source.URL, source.Type)

	decision := r.gate.Check(ctx, source.URL)
	if decision.Note != "" {
		log.Addf("%s", decision.Note)
	}
	if !decision.Allowed {
		log.Addf("Skipping %s: Disallowed by robots.txt", source.URL)
		metrics.ObserveSource("disallowed")
		return
	}

	items, err := r.fetchSource(ctx, source)
	if err != nil {
		log.Addf("Error fetching %s: %v", source.URL, err)
		r.logger.Warn("source fetch failed", zap.String("url", source.URL), zap.Error(err))
		metrics.ObserveSource("fetch_error")
		return
	}
	log.Addf("Fetched %d articles from %s", len(items), source.URL)
	metrics.ObserveSource("fetched")

	for _, item := range items {
		r.processItem(ctx, source, item, log, processed)
	}
}

func (r *Runner) fetchSource(ctx context.Context, source Source) ([]RawItem, error) {
	start := r.clock.Now()
	defer func() {
		metrics.ObserveFetchDuration(string(source.Type), r.clock.Now().Sub(start))
	}()

	if source.Type == SourceTypeRSS {
		items, err := r.feeds.FetchFeed(ctx, source.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch feed: %w", err)
		}
		return items, nil
	}

	item, err := r.pages.FetchPage(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	if item == nil {
		return nil, nil
	}
	return []RawItem{*item}, nil
}

func (r *Runner) processItem(ctx context.Context, source Source, item RawItem, log *RunLog, processed *int) {
	if item.URL == "" {
		log.Addf("Skipping item without URL from %s", source.URL)
		return
	}

	// The exists check is the sole deduplication boundary and must run
	// before the expensive analysis step.
	exists, err := r.store.ExistsByURL(ctx, item.URL)
	if err != nil {
		log.Addf("Error checking article %s: %v", item.Title, err)
		r.logger.Warn("exists check failed", zap.String("url", item.URL), zap.Error(err))
		metrics.ObserveArticle("error")
		return
	}
	if exists {
		log.Addf("Article already exists: %s", item.Title)
		metrics.ObserveArticle("duplicate")
		return
	}

	log.Addf("New article found: %s", item.Title)

	analysis, err := r.analyze(ctx, item)
	if err != nil {
		log.Addf("Error analyzing article %s: %v", item.Title, err)
		r.logger.Warn("analysis failed", zap.String("url", item.URL), zap.Error(err))
		metrics.ObserveArticle("error")
		return
	}

	if decision := r.filter.ShouldSkip(ctx, analysis.Embedding); decision.Skip {
		log.Addf("Skipping article based on feedback: %s (%s)", item.Title, decision.Reason)
		analysis.ImportanceScore = filteredImportance
		analysis.Tags = append(analysis.Tags, autoFilteredTag)
		metrics.ObserveArticle("filtered")
	}

	article, err := r.buildArticle(ctx, source, item, analysis)
	if err != nil {
		log.Addf("Error saving article %s: %v", item.Title, err)
		r.logger.Warn("build article failed", zap.String("url", item.URL), zap.Error(err))
		metrics.ObserveArticle("error")
		return
	}

	saved, err := r.store.InsertArticle(ctx, article)
	if err != nil {
		log.Addf("Error saving article %s: %v", item.Title, err)
		r.logger.Warn("insert failed", zap.String("url", item.URL), zap.Error(err))
		metrics.ObserveArticle("error")
		return
	}

	*processed++
	log.Addf("Saved with importance=%d, entities=%d", analysis.ImportanceScore, len(analysis.Entities))
	metrics.ObserveArticle("saved")

	if r.notifier != nil {
		if err := r.notifier.Notify(ctx, saved); err != nil {
			r.logger.Warn("notification failed", zap.String("article_id", saved.ID), zap.Error(err))
		}
	}
}

func (r *Runner) analyze(ctx context.Context, item RawItem) (Analysis, error) {
	start := r.clock.Now()
	analysis, err := r.analyzer.Analyze(ctx, item.Title, item.Content)
	metrics.ObserveAnalyzeDuration(r.clock.Now().Sub(start))
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze: %w", err)
	}
	return analysis, nil
}

func (r *Runner) buildArticle(ctx context.Context, source Source, item RawItem, analysis Analysis) (Article, error) {
	id, err := r.ids.NewID()
	if err != nil {
		return Article{}, fmt.Errorf("generate id: %w", err)
	}

	article := Article{
		ID:              id,
		SourceID:        source.ID,
		SourceName:      source.Name,
		Title:           item.Title,
		URL:             item.URL,
		Content:         truncateRunes(item.Content, r.cfg.ContentCap),
		Summary:         analysis.Summary,
		ImportanceScore: analysis.ImportanceScore,
		Entities:        analysis.Entities,
		Sentiment:       analysis.Sentiment,
		Tags:            analysis.Tags,
		Embedding:       analysis.Embedding,
		PublishedAt:     item.PublishedAt,
		CreatedAt:       r.clock.Now(),
	}

	if r.archive != nil {
		uri, archiveErr := r.archive.PutObject(
			ctx,
			r.archivePath(id),
			"text/plain; charset=utf-8",
			[]byte(item.Content),
		)
		if archiveErr != nil {
			r.logger.Warn("archive write failed", zap.String("url", item.URL), zap.Error(archiveErr))
		} else {
			article.ArchiveURI = uri
		}
	}
	return article, nil
}

func (r *Runner) archivePath(id string) string {
	prefix := r.cfg.ArchivePrefix
	if prefix == "" {
		return fmt.Sprintf("%s.txt", id)
	}
	return fmt.Sprintf("%s/%s.txt", prefix, id)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
