package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory Store for scaffolding and tests. It honours the
// same contract as the bun-backed implementation, including change
// notifications.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]Record
	broadcaster *collectionBroadcaster
	now         func() time.Time
	newID       func() string
}

// MemoryOption customises the in-memory store.
type MemoryOption func(*Memory)

// WithClock overrides the timestamp source, typically for tests.
func WithClock(clock func() time.Time) MemoryOption {
	return func(m *Memory) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithIDGenerator overrides document id assignment.
func WithIDGenerator(gen func() string) MemoryOption {
	return func(m *Memory) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// NewMemory creates an empty in-memory document store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		collections: make(map[string]map[string]Record),
		broadcaster: newCollectionBroadcaster(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ Store = (*Memory)(nil)

// GetAll returns every matching document in the collection.
func (m *Memory) GetAll(_ context.Context, collection string, q *Query) ([]Record, error) {
	if collection == "" {
		return nil, ErrCollectionRequired
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	records := m.snapshotLocked(collection)
	m.mu.RUnlock()

	return applyQuery(records, q), nil
}

// GetOne retrieves a document by id, returning NotFoundError when absent.
func (m *Memory) GetOne(_ context.Context, collection, id string) (Record, error) {
	if collection == "" {
		return nil, ErrCollectionRequired
	}
	if id == "" {
		return nil, ErrIDRequired
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.collections[collection][id]
	if !ok {
		return nil, &NotFoundError{Collection: collection, Key: id}
	}
	return CloneRecord(rec), nil
}

// Create stamps timestamps with the store clock, assigns a fresh id and
// returns the full record.
func (m *Memory) Create(_ context.Context, collection string, fields Fields) (Record, error) {
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	now := m.now()
	record := Record(CloneFields(fields))
	record[FieldID] = m.newID()
	record[FieldCreatedAt] = now
	record[FieldUpdatedAt] = now
	record[FieldVersion] = int64(1)

	m.mu.Lock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Record)
	}
	m.collections[collection][record.ID()] = CloneRecord(record)
	snapshot := m.snapshotLocked(collection)
	m.mu.Unlock()

	m.broadcaster.Broadcast(collection, snapshot)
	return record, nil
}

// Update merge-updates the provided fields, leaving absent keys untouched.
func (m *Memory) Update(ctx context.Context, collection, id string, fields Fields) error {
	return m.update(ctx, collection, id, fields, 0)
}

// UpdateIfVersion merge-updates only when the stored version still equals
// expected.
func (m *Memory) UpdateIfVersion(ctx context.Context, collection, id string, fields Fields, expected int64) error {
	return m.update(ctx, collection, id, fields, expected)
}

func (m *Memory) update(_ context.Context, collection, id string, fields Fields, expected int64) error {
	if collection == "" {
		return ErrCollectionRequired
	}
	if id == "" {
		return ErrIDRequired
	}

	m.mu.Lock()
	rec, ok := m.collections[collection][id]
	if !ok {
		m.mu.Unlock()
		return &NotFoundError{Collection: collection, Key: id}
	}
	if expected > 0 && rec.Version() != expected {
		m.mu.Unlock()
		return ErrVersionConflict
	}
	for k, v := range CloneFields(fields) {
		rec[k] = v
	}
	rec[FieldUpdatedAt] = m.now()
	rec[FieldVersion] = rec.Version() + 1
	snapshot := m.snapshotLocked(collection)
	m.mu.Unlock()

	m.broadcaster.Broadcast(collection, snapshot)
	return nil
}

// Delete removes the document; deleting a missing id is a no-op.
func (m *Memory) Delete(_ context.Context, collection, id string) error {
	if collection == "" {
		return ErrCollectionRequired
	}
	if id == "" {
		return ErrIDRequired
	}

	m.mu.Lock()
	_, existed := m.collections[collection][id]
	if existed {
		delete(m.collections[collection], id)
	}
	snapshot := m.snapshotLocked(collection)
	m.mu.Unlock()

	if existed {
		m.broadcaster.Broadcast(collection, snapshot)
	}
	return nil
}

// Subscribe delivers the current list immediately, then after every change,
// until ctx is cancelled.
func (m *Memory) Subscribe(ctx context.Context, collection string) (<-chan []Record, error) {
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	ch := m.broadcaster.Subscribe(ctx, collection)

	m.mu.RLock()
	snapshot := m.snapshotLocked(collection)
	m.mu.RUnlock()
	m.broadcaster.Broadcast(collection, snapshot)

	return ch, nil
}

func (m *Memory) snapshotLocked(collection string) []Record {
	records := make([]Record, 0, len(m.collections[collection]))
	for _, rec := range m.collections[collection] {
		records = append(records, CloneRecord(rec))
	}
	return records
}
