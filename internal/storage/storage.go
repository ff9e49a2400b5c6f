// Package storage keeps compiled PDFs in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// PDFContentType is the content type of stored generations.
const PDFContentType = "application/pdf"

// ObjectStore stores opaque blobs by key.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// GenerationKey returns the object key of a generation's PDF.
func GenerationKey(userID, generationID string) string {
	return fmt.Sprintf("generations/%s/%s.pdf", userID, generationID)
}

// MemoryStore is an in-process ObjectStore for local runs without a bucket.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete removes key. Deleting a missing key is not an error, matching S3.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}
