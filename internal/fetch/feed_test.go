package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>First article</title>
      <link>https://example.com/first</link>
      <description>First summary</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://example.com/second</link>
      <description></description>
    </item>
  </channel>
</rss>`

func TestFetchFeedParsesItems(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleRSS)
	}))
	defer srv.Close()

	fetcher := NewFeedFetcher("InfoRadarBot/0.1", 5*time.Second, zap.NewNop())
	items, err := fetcher.FetchFeed(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "First article", items[0].Title)
	assert.Equal(t, "https://example.com/first", items[0].URL)
	assert.Equal(t, "First summary", items[0].Content)
	assert.Equal(t, time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC), items[0].PublishedAt)

	// Missing title and pubDate get defaults.
	assert.Equal(t, "No Title", items[1].Title)
	assert.WithinDuration(t, time.Now().UTC(), items[1].PublishedAt, time.Minute)
}

func TestFetchFeedFailsSoftOnBadFeed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "this is not xml")
	}))
	defer srv.Close()

	fetcher := NewFeedFetcher("InfoRadarBot/0.1", 5*time.Second, zap.NewNop())
	items, err := fetcher.FetchFeed(context.Background(), srv.URL)
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchFeedFailsSoftOnUnreachableHost(t *testing.T) {
	t.Parallel()

	fetcher := NewFeedFetcher("InfoRadarBot/0.1", time.Second, zap.NewNop())
	items, err := fetcher.FetchFeed(context.Background(), "http://127.0.0.1:1/feed.xml")
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchFeedSendsUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, sampleRSS)
	}))
	defer srv.Close()

	fetcher := NewFeedFetcher("InfoRadarBot/0.1", 5*time.Second, zap.NewNop())
	_, err := fetcher.FetchFeed(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "InfoRadarBot/0.1", gotUA)
}
