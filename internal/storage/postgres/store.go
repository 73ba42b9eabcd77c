// Package postgres provides the Postgres-backed persistence implementation.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkondo/inforadar/internal/pipeline"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type dbConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store implements pipeline.Store on Postgres.
//
// Expected schema:
//
//	CREATE TABLE sources (
//	    id UUID PRIMARY KEY,
//	    name TEXT NOT NULL DEFAULT '',
//	    url TEXT NOT NULL,
//	    type TEXT NOT NULL,
//	    reliability_score INT NOT NULL DEFAULT 50,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
//	CREATE TABLE articles (
//	    id UUID PRIMARY KEY,
//	    source_id UUID REFERENCES sources(id),
//	    title TEXT NOT NULL,
//	    url TEXT NOT NULL UNIQUE,
//	    content TEXT NOT NULL,
//	    summary TEXT NOT NULL,
//	    importance_score INT NOT NULL,
//	    entities JSONB NOT NULL DEFAULT '[]',
//	    sentiment TEXT NOT NULL DEFAULT 'neutral',
//	    tags TEXT[] NOT NULL DEFAULT '{}',
//	    embedding JSONB,
//	    archive_uri TEXT,
//	    published_at TIMESTAMPTZ,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
//	CREATE TABLE article_feedback (
//	    id BIGSERIAL PRIMARY KEY,
//	    article_id UUID NOT NULL REFERENCES articles(id),
//	    is_interested BOOLEAN NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
// The UNIQUE constraint on articles.url backs the pipeline's idempotency
// check as a safety net against concurrent runs.
type Store struct {
	pool dbConn
}

// New creates a Postgres-backed Store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for
// testing).
func NewWithPool(pool dbConn) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// ListSources returns all configured sources.
func (s *Store) ListSources(ctx context.Context) ([]pipeline.Source, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, name, url, type, reliability_score
FROM sources
ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []pipeline.Source
	for rows.Next() {
		var src pipeline.Source
		if err := rows.Scan(&src.ID, &src.Name, &src.URL, &src.Type, &src.ReliabilityScore); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

// ExistsByURL reports whether an article with the given URL is already
// persisted.
func (s *Store) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM articles WHERE url = $1)`, url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query article existence: %w", err)
	}
	return exists, nil
}

// InsertArticle persists a new article. The url uniqueness constraint
// surfaces concurrent double-inserts as an error here.
func (s *Store) InsertArticle(ctx context.Context, article pipeline.Article) (pipeline.Article, error) {
	entitiesJSON, err := json.Marshal(article.Entities)
	if err != nil {
		return pipeline.Article{}, fmt.Errorf("marshal entities: %w", err)
	}
	embeddingJSON, err := json.Marshal(article.Embedding)
	if err != nil {
		return pipeline.Article{}, fmt.Errorf("marshal embedding: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO articles (
	id,
	source_id,
	title,
	url,
	content,
	summary,
	importance_score,
	entities,
	sentiment,
	tags,
	embedding,
	archive_uri,
	published_at,
	created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
)`,
		article.ID,
		article.SourceID,
		article.Title,
		article.URL,
		article.Content,
		article.Summary,
		article.ImportanceScore,
		entitiesJSON,
		string(article.Sentiment),
		article.Tags,
		embeddingJSON,
		article.ArchiveURI,
		article.PublishedAt,
		article.CreatedAt,
	)
	if err != nil {
		return pipeline.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return article, nil
}

// RecentNegativeFeedback returns the newest is_interested=false feedback
// rows joined to their article embeddings. Rows whose embedding is missing
// are dropped.
func (s *Store) RecentNegativeFeedback(ctx context.Context, limit int) ([]pipeline.FeedbackEmbedding, error) {
	rows, err := s.pool.Query(ctx, `
SELECT f.article_id, a.title, a.embedding
FROM article_feedback f
JOIN articles a ON a.id = f.article_id
WHERE f.is_interested = FALSE
ORDER BY f.created_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query negative feedback: %w", err)
	}
	defer rows.Close()

	var feedback []pipeline.FeedbackEmbedding
	for rows.Next() {
		var (
			item          pipeline.FeedbackEmbedding
			embeddingJSON []byte
		)
		if err := rows.Scan(&item.ArticleID, &item.Title, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		if len(embeddingJSON) == 0 {
			continue
		}
		if err := json.Unmarshal(embeddingJSON, &item.Embedding); err != nil {
			continue
		}
		if len(item.Embedding) == 0 {
			continue
		}
		feedback = append(feedback, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return feedback, nil
}

var _ pipeline.Store = (*Store)(nil)
