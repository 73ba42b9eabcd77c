package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkondo/inforadar/internal/pipeline"
)

func TestStoreInsertAndExists(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()

	exists, err := store.ExistsByURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.InsertArticle(ctx, pipeline.Article{ID: "art-1", URL: "https://example.com/a"})
	require.NoError(t, err)

	exists, err = store.ExistsByURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = store.InsertArticle(ctx, pipeline.Article{ID: "art-2", URL: "https://example.com/a"})
	assert.ErrorContains(t, err, "already exists")
}

func TestStoreListSources(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.AddSource(pipeline.Source{ID: "src-1", URL: "https://example.com/feed", Type: pipeline.SourceTypeRSS})
	store.AddSource(pipeline.Source{ID: "src-2", URL: "https://example.com", Type: pipeline.SourceTypeWebsite})

	sources, err := store.ListSources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "src-1", sources[0].ID)
}

func TestStoreRecentNegativeFeedback(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()
	now := time.Now()

	for _, article := range []pipeline.Article{
		{ID: "art-1", URL: "u1", Title: "first", Embedding: []float32{1}},
		{ID: "art-2", URL: "u2", Title: "second", Embedding: []float32{2}},
		{ID: "art-3", URL: "u3", Title: "no embedding"},
	} {
		_, err := store.InsertArticle(ctx, article)
		require.NoError(t, err)
	}

	store.AddNegativeFeedback("art-1", now.Add(-time.Hour))
	store.AddNegativeFeedback("art-3", now.Add(-30*time.Minute))
	store.AddNegativeFeedback("art-2", now)

	feedback, err := store.RecentNegativeFeedback(ctx, 10)
	require.NoError(t, err)

	// Newest first; rows without embeddings are dropped.
	require.Len(t, feedback, 2)
	assert.Equal(t, "art-2", feedback[0].ArticleID)
	assert.Equal(t, "art-1", feedback[1].ArticleID)

	limited, err := store.RecentNegativeFeedback(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "art-2", limited[0].ArticleID)
}

func TestStoreArticleByURL(t *testing.T) {
	t.Parallel()

	store := NewStore()
	_, err := store.InsertArticle(context.Background(), pipeline.Article{ID: "art-1", URL: "u1", Title: "t"})
	require.NoError(t, err)

	article, ok := store.ArticleByURL("u1")
	assert.True(t, ok)
	assert.Equal(t, "t", article.Title)

	_, ok = store.ArticleByURL("missing")
	assert.False(t, ok)
}
