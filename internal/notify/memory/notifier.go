// Package memory records notifications in-memory for development/testing.
package memory

import (
	"context"
	"sync"

	"github.com/mkondo/inforadar/internal/pipeline"
)

// Notifier collects notified articles.
type Notifier struct {
	mu       sync.Mutex
	articles []pipeline.Article
	err      error
}

// New constructs a Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Fail makes subsequent Notify calls return err (test helper).
func (n *Notifier) Fail(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

// Notify implements pipeline.Notifier.
func (n *Notifier) Notify(_ context.Context, article pipeline.Article) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.articles = append(n.articles, article)
	return nil
}

// Notified returns a snapshot of delivered articles.
func (n *Notifier) Notified() []pipeline.Article {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]pipeline.Article(nil), n.articles...)
}

var _ pipeline.Notifier = (*Notifier)(nil)
