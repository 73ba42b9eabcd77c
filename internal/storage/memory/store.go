// Package memory provides an in-memory Store for development and testing.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkondo/inforadar/internal/pipeline"
)

type feedbackRow struct {
	articleID string
	createdAt time.Time
}

// Store implements pipeline.Store with mutex-guarded maps.
type Store struct {
	mu       sync.RWMutex
	sources  []pipeline.Source
	articles map[string]pipeline.Article // keyed by URL
	byID     map[string]pipeline.Article
	negative []feedbackRow // newest first
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		articles: make(map[string]pipeline.Article),
		byID:     make(map[string]pipeline.Article),
	}
}

// AddSource registers a source for subsequent runs.
func (s *Store) AddSource(source pipeline.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, source)
}

// AddNegativeFeedback records a "not interested" event for an article that
// must already exist.
func (s *Store) AddNegativeFeedback(articleID string, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.negative = append([]feedbackRow{{articleID: articleID, createdAt: createdAt}}, s.negative...)
}

// ListSources implements pipeline.Store.
func (s *Store) ListSources(_ context.Context) ([]pipeline.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]pipeline.Source(nil), s.sources...), nil
}

// ExistsByURL implements pipeline.Store.
func (s *Store) ExistsByURL(_ context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.articles[url]
	return ok, nil
}

// InsertArticle implements pipeline.Store. The URL acts as a uniqueness
// constraint, mirroring the relational schema.
func (s *Store) InsertArticle(_ context.Context, article pipeline.Article) (pipeline.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[article.URL]; ok {
		return pipeline.Article{}, fmt.Errorf("article url already exists: %s", article.URL)
	}
	s.articles[article.URL] = article
	s.byID[article.ID] = article
	return article, nil
}

// RecentNegativeFeedback implements pipeline.Store.
func (s *Store) RecentNegativeFeedback(_ context.Context, limit int) ([]pipeline.FeedbackEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var feedback []pipeline.FeedbackEmbedding
	for _, row := range s.negative {
		if limit > 0 && len(feedback) >= limit {
			break
		}
		article, ok := s.byID[row.articleID]
		if !ok || len(article.Embedding) == 0 {
			continue
		}
		feedback = append(feedback, pipeline.FeedbackEmbedding{
			ArticleID: article.ID,
			Title:     article.Title,
			Embedding: article.Embedding,
		})
	}
	return feedback, nil
}

// Articles returns a snapshot of all persisted articles (test helper).
func (s *Store) Articles() []pipeline.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pipeline.Article, 0, len(s.articles))
	for _, article := range s.articles {
		out = append(out, article)
	}
	return out
}

// ArticleByURL returns one persisted article (test helper).
func (s *Store) ArticleByURL(url string) (pipeline.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	article, ok := s.articles[url]
	return article, ok
}

var _ pipeline.Store = (*Store)(nil)
