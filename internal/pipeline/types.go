// Package pipeline defines the core types and the ingestion run loop shared
// across subsystems.
package pipeline

import "time"

// SourceType distinguishes how a configured source is fetched.
type SourceType string

// Source types persisted in the store.
const (
	SourceTypeRSS     SourceType = "rss"
	SourceTypeWebsite SourceType = "website"
)

// Source is a configured content origin. Sources are created by the
// administration flow and are read-only to the pipeline.
type Source struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	URL              string     `json:"url"`
	Type             SourceType `json:"type"`
	ReliabilityScore int        `json:"reliability_score"`
}

// RawItem is an ephemeral fetched item. It exists only within one run and is
// never persisted directly.
type RawItem struct {
	Title       string
	URL         string
	Content     string
	PublishedAt time.Time
}

// Sentiment classifies the overall tone of an article.
type Sentiment string

// Recognized sentiment values; anything else is coerced to neutral.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Entity is a named thing extracted from an article (person, organization,
// technology, event).
type Entity struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Analysis is the output of the content-analysis step for one article.
type Analysis struct {
	Summary         string    `json:"summary"`
	ImportanceScore int       `json:"importance_score"`
	Entities        []Entity  `json:"entities"`
	Sentiment       Sentiment `json:"sentiment"`
	Tags            []string  `json:"tags"`
	Embedding       []float32 `json:"embedding"`
}

// Article is the persisted entity. URL is the idempotency key: an item whose
// URL already exists in the store is never re-processed or re-persisted, and
// articles are never updated by the pipeline after creation.
type Article struct {
	ID              string    `json:"id"`
	SourceID        string    `json:"source_id"`
	SourceName      string    `json:"source_name,omitempty"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	Content         string    `json:"content"`
	Summary         string    `json:"summary"`
	ImportanceScore int       `json:"importance_score"`
	Entities        []Entity  `json:"entities"`
	Sentiment       Sentiment `json:"sentiment"`
	Tags            []string  `json:"tags"`
	Embedding       []float32 `json:"embedding"`
	ArchiveURI      string    `json:"archive_uri,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// FeedbackEmbedding joins a negative feedback event to the embedding of the
// article it was recorded against.
type FeedbackEmbedding struct {
	ArticleID string
	Title     string
	Embedding []float32
}

// Result summarizes one pipeline invocation. A run that loses individual
// sources or articles still succeeds; partial completion is a normal outcome.
type Result struct {
	Processed int      `json:"processed"`
	Logs      []string `json:"logs"`
}
