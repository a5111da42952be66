package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-folio/internal/store"
)

func TestMemoryCreateRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	db := store.NewMemory(store.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	created, err := db.Create(ctx, "projects", store.Fields{"title": "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID() == "" {
		t.Fatal("expected assigned id")
	}

	got, err := db.GetOne(ctx, "projects", created.ID())
	if err != nil {
		t.Fatalf("get one: %v", err)
	}
	if got["title"] != "x" {
		t.Fatalf("expected title x, got %v", got["title"])
	}
	createdAt, ok := got.CreatedAt()
	if !ok || !createdAt.Equal(now) {
		t.Fatalf("expected createdAt %v, got %v (ok=%v)", now, createdAt, ok)
	}
	updatedAt, ok := got.UpdatedAt()
	if !ok || !updatedAt.Equal(now) {
		t.Fatalf("expected updatedAt %v, got %v (ok=%v)", now, updatedAt, ok)
	}
}

func TestMemoryUpdateMergesFields(t *testing.T) {
	db := store.NewMemory()
	ctx := context.Background()

	created, err := db.Create(ctx, "skills", store.Fields{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := db.Update(ctx, "skills", created.ID(), store.Fields{"a": 9}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := db.GetOne(ctx, "skills", created.ID())
	if err != nil {
		t.Fatalf("get one: %v", err)
	}
	if got["a"] != 9 {
		t.Fatalf("expected a=9, got %v", got["a"])
	}
	if got["b"] != 2 {
		t.Fatalf("expected b untouched, got %v", got["b"])
	}
}

func TestMemoryVersionAdvancesOnUpdate(t *testing.T) {
	db := store.NewMemory()
	ctx := context.Background()

	created, err := db.Create(ctx, "skills", store.Fields{"name": "Go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Version() != 1 {
		t.Fatalf("expected new records to start at version 1, got %d", created.Version())
	}

	if err := db.Update(ctx, "skills", created.ID(), store.Fields{"level": 80}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := db.GetOne(ctx, "skills", created.ID())
	if err != nil {
		t.Fatalf("get one: %v", err)
	}
	if got.Version() != 2 {
		t.Fatalf("expected version 2 after one update, got %d", got.Version())
	}
}

func TestMemoryUpdateIfVersion(t *testing.T) {
	db := store.NewMemory()
	ctx := context.Background()

	created, err := db.Create(ctx, "skills", store.Fields{"name": "Go", "level": 50})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := db.UpdateIfVersion(ctx, "skills", created.ID(), store.Fields{"level": 60}, created.Version()); err != nil {
		t.Fatalf("matching version must update: %v", err)
	}

	// The stored version moved on, so the original version is now stale.
	err = db.UpdateIfVersion(ctx, "skills", created.ID(), store.Fields{"level": 70}, created.Version())
	if !errors.Is(err, store.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	got, err := db.GetOne(ctx, "skills", created.ID())
	if err != nil {
		t.Fatalf("get one: %v", err)
	}
	if got["level"] != 60 {
		t.Fatalf("stale write must not apply, got level %v", got["level"])
	}
}

func TestMemoryUpdateRefreshesUpdatedAt(t *testing.T) {
	times := []time.Time{
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
	}
	calls := 0
	db := store.NewMemory(store.WithClock(func() time.Time {
		t := times[calls]
		if calls < len(times)-1 {
			calls++
		}
		return t
	}))
	ctx := context.Background()

	created, err := db.Create(ctx, "blogs", store.Fields{"title": "post"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Update(ctx, "blogs", created.ID(), store.Fields{"title": "edited"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := db.GetOne(ctx, "blogs", created.ID())
	createdAt, _ := got.CreatedAt()
	updatedAt, _ := got.UpdatedAt()
	if !createdAt.Equal(times[0]) {
		t.Fatalf("createdAt must stay at creation time, got %v", createdAt)
	}
	if !updatedAt.After(createdAt) {
		t.Fatalf("updatedAt must advance, got %v", updatedAt)
	}
}

func TestMemoryGetOneMissing(t *testing.T) {
	db := store.NewMemory()

	_, err := db.GetOne(context.Background(), "projects", "nope")
	if !store.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryUpdateMissingDoesNotCreate(t *testing.T) {
	db := store.NewMemory()
	ctx := context.Background()

	err := db.Update(ctx, "projects", "nope", store.Fields{"title": "x"})
	if !store.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	records, err := db.GetAll(ctx, "projects", nil)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("update must never create, found %d records", len(records))
	}
}

func TestMemoryDeleteIdempotent(t *testing.T) {
	db := store.NewMemory()
	ctx := context.Background()

	created, err := db.Create(ctx, "projects", store.Fields{"title": "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Delete(ctx, "projects", created.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := db.Delete(ctx, "projects", created.ID()); err != nil {
		t.Fatalf("second delete must be a no-op, got %v", err)
	}
}

func TestMemoryGetAllEmptyCollection(t *testing.T) {
	db := store.NewMemory()

	records, err := db.GetAll(context.Background(), "startups", nil)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty slice, got %v", records)
	}
}

func TestMemoryFilterAndSort(t *testing.T) {
	db := store.NewMemory()
	ctx := context.Background()

	for _, order := range []int{4, 0, 3, 1, 2} {
		if _, err := db.Create(ctx, "skills", store.Fields{"order": order, "kind": "tool"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	// Record without the "order" field: excluded from equality matches,
	// ordered last on sort.
	if _, err := db.Create(ctx, "skills", store.Fields{"kind": "tool"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sorted, err := db.GetAll(ctx, "skills", &store.Query{
		Sort: &store.Sort{Field: "order", Direction: store.Asc},
	})
	if err != nil {
		t.Fatalf("get all sorted: %v", err)
	}
	if len(sorted) != 6 {
		t.Fatalf("expected 6 records, got %d", len(sorted))
	}
	for i := 0; i < 5; i++ {
		if sorted[i]["order"] != i {
			t.Fatalf("position %d: expected order %d, got %v", i, i, sorted[i]["order"])
		}
	}
	if _, ok := sorted[5]["order"]; ok {
		t.Fatal("record without sort field must order last")
	}

	filtered, err := db.GetAll(ctx, "skills", &store.Query{
		Filter: &store.Filter{Field: "order", Op: store.OpEqual, Value: 2},
	})
	if err != nil {
		t.Fatalf("get all filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0]["order"] != 2 {
		t.Fatalf("expected single match with order=2, got %v", filtered)
	}

	limited, err := db.GetAll(ctx, "skills", &store.Query{
		Sort:  &store.Sort{Field: "order", Direction: store.Desc},
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("get all limited: %v", err)
	}
	if len(limited) != 2 || limited[0]["order"] != 4 || limited[1]["order"] != 3 {
		t.Fatalf("expected [4 3], got %v", limited)
	}
}

func TestMemoryFilterUnsupportedOperator(t *testing.T) {
	db := store.NewMemory()

	_, err := db.GetAll(context.Background(), "skills", &store.Query{
		Filter: &store.Filter{Field: "order", Op: ">=", Value: 2},
	})
	if err == nil {
		t.Fatal("expected unsupported operator error")
	}
}

func TestMemorySubscribeDeliversSnapshots(t *testing.T) {
	db := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := db.Subscribe(ctx, "testimonials")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	select {
	case initial := <-ch:
		if len(initial) != 0 {
			t.Fatalf("expected empty initial snapshot, got %d records", len(initial))
		}
	case <-time.After(time.Second):
		t.Fatal("expected immediate snapshot")
	}

	if _, err := db.Create(ctx, "testimonials", store.Fields{"author": "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	select {
	case next := <-ch:
		if len(next) != 1 {
			t.Fatalf("expected snapshot with 1 record, got %d", len(next))
		}
	case <-time.After(time.Second):
		t.Fatal("expected change snapshot")
	}

	cancel()
	// Unsubscribe closes the channel once drained of pending snapshots.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("expected channel to close after cancel")
		}
	}
}
