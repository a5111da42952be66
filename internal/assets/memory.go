package assets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryStorage keeps uploaded objects in process memory. It is used by
// tests and local development where no bucket is available.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
	now     func() time.Time
}

// MemoryOption customises the in-memory storage.
type MemoryOption func(*MemoryStorage)

// WithMemoryClock overrides the timestamp source used for object keys.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStorage) {
		m.now = now
	}
}

// WithMemoryBaseURL sets the URL prefix returned for stored objects.
func WithMemoryBaseURL(base string) MemoryOption {
	return func(m *MemoryStorage) {
		m.baseURL = base
	}
}

// NewMemoryStorage builds an empty in-memory asset store.
func NewMemoryStorage(opts ...MemoryOption) *MemoryStorage {
	m := &MemoryStorage{
		objects: map[string][]byte{},
		baseURL: "memory://assets",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStorage) Upload(_ context.Context, input UploadInput) (UploadResult, error) {
	if err := input.Validate(); err != nil {
		return UploadResult{}, err
	}

	path := ObjectPath(input.Folder, input.Name, m.now())
	data := make([]byte, len(input.Data))
	copy(data, input.Data)

	m.mu.Lock()
	m.objects[path] = data
	m.mu.Unlock()

	return UploadResult{
		Path: path,
		URL:  m.URL(path),
		Size: int64(len(data)),
	}, nil
}

func (m *MemoryStorage) Delete(_ context.Context, path string) error {
	if path == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; !ok {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, path)
	}
	delete(m.objects, path)
	return nil
}

func (m *MemoryStorage) URL(path string) string {
	return strings.TrimRight(m.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Get returns a stored object for assertions in tests.
func (m *MemoryStorage) Get(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[path]
	return data, ok
}

// Len reports the number of stored objects.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
