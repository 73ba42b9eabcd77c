// Package memory stores archived content in-memory for development/testing.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkondo/inforadar/internal/pipeline"
)

// Archive stores raw content in-memory and returns pseudo URIs.
type Archive struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an in-memory archive.
func New() *Archive {
	return &Archive{
		data: make(map[string][]byte),
	}
}

// PutObject persists the content and returns a memory:// URI.
func (a *Archive) PutObject(_ context.Context, path string, _ string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data[path] = append([]byte(nil), data...)
	return fmt.Sprintf("memory://%s", path), nil
}

// Object returns stored content (test helper).
func (a *Archive) Object(path string) ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.data[path]
	return data, ok
}

var _ pipeline.Archive = (*Archive)(nil)
