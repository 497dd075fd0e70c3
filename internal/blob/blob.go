// Package blob defines object storage for uploaded captures.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned for a missing object
var ErrNotFound = errors.New("blob not found")

// Writer stores objects and returns the URL they can be downloaded from
type Writer interface {
	Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
}

// Object is one stored blob
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// MemoryWriter keeps objects in process
type MemoryWriter struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

// NewMemoryWriter creates a writer whose URLs are baseURL/key
func NewMemoryWriter(baseURL string) *MemoryWriter {
	if baseURL == "" {
		baseURL = "memory://screenshots"
	}
	return &MemoryWriter{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

func (w *MemoryWriter) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", fmt.Errorf("read blob %s: %w", key, err)
	}

	w.mu.Lock()
	w.objects[key] = Object{Key: key, ContentType: contentType, Data: buf.Bytes()}
	w.mu.Unlock()

	return w.baseURL + "/" + key, nil
}

// Get returns a stored object
func (w *MemoryWriter) Get(key string) (Object, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	obj, ok := w.objects[key]
	if !ok {
		return Object{}, ErrNotFound
	}
	return obj, nil
}

// Keys lists stored keys in order
func (w *MemoryWriter) Keys() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	keys := make([]string, 0, len(w.objects))
	for k := range w.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
