package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkondo/inforadar/internal/pipeline"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := NewWithPool(mock)
	require.NoError(t, err)
	return store, mock
}

func TestListSources(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, url, type, reliability_score").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "name", "url", "type", "reliability_score"},
		).AddRow(
			"src-1", "Example Feed", "https://example.com/feed", pipeline.SourceTypeRSS, 80,
		).AddRow(
			"src-2", "Example Site", "https://example.com", pipeline.SourceTypeWebsite, 50,
		))

	sources, err := store.ListSources(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "Example Feed", sources[0].Name)
	assert.Equal(t, pipeline.SourceTypeWebsite, sources[1].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListSourcesQueryError(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, name, url, type, reliability_score").
		WillReturnError(errors.New("connection refused"))

	_, err := store.ListSources(context.Background())
	assert.ErrorContains(t, err, "query sources")
}

func TestExistsByURL(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("https://example.com/a").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.ExistsByURL(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertArticle(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	now := time.Unix(1700000000, 0).UTC()
	article := pipeline.Article{
		ID:              "art-1",
		SourceID:        "src-1",
		Title:           "Title",
		URL:             "https://example.com/a",
		Content:         "content",
		Summary:         "summary",
		ImportanceScore: 72,
		Entities:        []pipeline.Entity{{Type: "person", Name: "Ada"}},
		Sentiment:       pipeline.SentimentPositive,
		Tags:            []string{"tech"},
		Embedding:       []float32{0.5},
		ArchiveURI:      "gs://bucket/raw/art-1.txt",
		PublishedAt:     now,
		CreatedAt:       now,
	}

	mock.ExpectExec("INSERT INTO articles").
		WithArgs(
			article.ID,
			article.SourceID,
			article.Title,
			article.URL,
			article.Content,
			article.Summary,
			article.ImportanceScore,
			[]byte(`[{"type":"person","name":"Ada"}]`),
			"positive",
			article.Tags,
			[]byte(`[0.5]`),
			article.ArchiveURI,
			article.PublishedAt,
			article.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := store.InsertArticle(context.Background(), article)
	require.NoError(t, err)
	assert.Equal(t, article, saved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertArticleDuplicateURL(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO articles").
		WillReturnError(errors.New("duplicate key value violates unique constraint"))

	_, err := store.InsertArticle(context.Background(), pipeline.Article{URL: "https://example.com/a"})
	assert.ErrorContains(t, err, "insert article")
}

func TestRecentNegativeFeedback(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT f.article_id, a.title, a.embedding").
		WithArgs(20).
		WillReturnRows(pgxmock.NewRows(
			[]string{"article_id", "title", "embedding"},
		).AddRow(
			"art-1", "Disliked", []byte(`[0.1,0.2]`),
		).AddRow(
			"art-2", "No embedding", []byte(nil),
		).AddRow(
			"art-3", "Bad embedding", []byte(`not json`),
		))

	feedback, err := store.RecentNegativeFeedback(context.Background(), 20)
	require.NoError(t, err)

	// Rows without a usable embedding are dropped, not surfaced as errors.
	require.Len(t, feedback, 1)
	assert.Equal(t, "art-1", feedback[0].ArticleID)
	assert.Equal(t, []float32{0.1, 0.2}, feedback[0].Embedding)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewWithPoolRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewWithPool(nil)
	assert.Error(t, err)
}
