package store

import (
	"context"
	"sync"
)

// collectionBroadcaster fans collection snapshots out to subscribers. Each
// subscriber channel is buffered with a depth of one and coalesces to the
// latest snapshot, so a slow consumer always observes the newest list rather
// than a backlog of stale ones.
type collectionBroadcaster struct {
	mu       sync.Mutex
	watchers map[string]map[uint64]chan []Record
	nextID   uint64
}

func newCollectionBroadcaster() *collectionBroadcaster {
	return &collectionBroadcaster{
		watchers: make(map[string]map[uint64]chan []Record),
	}
}

// Subscribe registers a watcher for the collection. The channel closes when
// the context is cancelled, which is the caller's unsubscribe handle.
func (b *collectionBroadcaster) Subscribe(ctx context.Context, collection string) <-chan []Record {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := make(chan []Record, 1)
	if err := ctx.Err(); err != nil {
		close(ch)
		return ch
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.watchers[collection] == nil {
		b.watchers[collection] = make(map[uint64]chan []Record)
	}
	b.watchers[collection][id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.watchers[collection], id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}

// Broadcast delivers the snapshot to every watcher of the collection. Sends
// happen under the lock so a concurrent unsubscribe cannot close a channel
// mid-send; both send and drain are non-blocking.
func (b *collectionBroadcaster) Broadcast(collection string, snapshot []Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.watchers[collection] {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
