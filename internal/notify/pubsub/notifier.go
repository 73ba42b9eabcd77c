// Package pubsub implements article notification over Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/mkondo/inforadar/internal/pipeline"
)

// Notifier publishes saved-article events to a Pub/Sub topic.
type Notifier struct {
	topic *pubsub.Topic
}

// New creates a Notifier for the provided topic.
func New(client *pubsub.Client, topic string) (*Notifier, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic name is required")
	}
	return &Notifier{topic: client.Topic(topic)}, nil
}

// Notify implements pipeline.Notifier. Delivery is best effort; the caller
// logs failures and moves on.
func (n *Notifier) Notify(ctx context.Context, article pipeline.Article) error {
	payload := map[string]any{
		"article_id":       article.ID,
		"source_id":        article.SourceID,
		"source_name":      article.SourceName,
		"title":            article.Title,
		"url":              article.URL,
		"summary":          article.Summary,
		"importance_score": article.ImportanceScore,
		"tags":             article.Tags,
		"published_at":     article.PublishedAt.Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	result := n.topic.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Stop flushes pending messages.
func (n *Notifier) Stop() {
	if n != nil && n.topic != nil {
		n.topic.Stop()
	}
}

var _ pipeline.Notifier = (*Notifier)(nil)
