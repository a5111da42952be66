package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-folio/internal/registry"
	"github.com/goliatone/go-folio/internal/repository"
	"github.com/goliatone/go-folio/internal/store"
)

func newRepo(t *testing.T, collection string) (*repository.Repository, *store.Memory) {
	t.Helper()
	db := store.NewMemory()
	repo, err := repository.New(collection, db)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	return repo, db
}

func TestNewRequiresStoreAndCollection(t *testing.T) {
	if _, err := repository.New("", store.NewMemory()); !errors.Is(err, repository.ErrCollectionRequired) {
		t.Fatalf("expected ErrCollectionRequired, got %v", err)
	}
	if _, err := repository.New("projects", nil); !errors.Is(err, repository.ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func TestCreateValidatesPayload(t *testing.T) {
	repo, _ := newRepo(t, registry.CollectionProjects)

	_, err := repo.Create(context.Background(), store.Fields{"description": "no title"})
	if !errors.Is(err, registry.ErrPayloadInvalid) {
		t.Fatalf("expected payload validation error, got %v", err)
	}
}

func TestCreateCoercesNumericFormInputs(t *testing.T) {
	repo, _ := newRepo(t, registry.CollectionSkills)
	ctx := context.Background()

	created, err := repo.Create(ctx, store.Fields{"name": "Go", "level": "85", "order": "2"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created["level"] != 85 {
		t.Fatalf("expected coerced level 85, got %v (%T)", created["level"], created["level"])
	}
	if created["order"] != 2 {
		t.Fatalf("expected coerced order 2, got %v (%T)", created["order"], created["order"])
	}
}

func TestListWithFilterSortLimit(t *testing.T) {
	repo, _ := newRepo(t, registry.CollectionProjects)
	ctx := context.Background()

	for i, title := range []string{"one", "two", "three", "four", "five"} {
		fields := store.Fields{"title": title, "order": i, "featured": i%2 == 0}
		if _, err := repo.Create(ctx, fields); err != nil {
			t.Fatalf("seed %s: %v", title, err)
		}
	}

	sorted, err := repo.List(ctx, repository.WithSort("order", store.Asc))
	if err != nil {
		t.Fatalf("list sorted: %v", err)
	}
	for i, rec := range sorted {
		if rec["order"] != i {
			t.Fatalf("position %d: expected order %d, got %v", i, i, rec["order"])
		}
	}

	featured, err := repo.List(ctx, repository.WithFilter("featured", true))
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(featured) != 3 {
		t.Fatalf("expected 3 featured, got %d", len(featured))
	}

	limited, err := repo.List(ctx, repository.WithSort("order", store.Desc), repository.WithLimit(1))
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0]["order"] != 4 {
		t.Fatalf("expected single record with order 4, got %v", limited)
	}
}

func TestUpdateMergePreservesOtherFields(t *testing.T) {
	repo, _ := newRepo(t, registry.CollectionProjects)
	ctx := context.Background()

	created, err := repo.Create(ctx, store.Fields{"title": "site", "featured": false})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Update(ctx, created.ID(), store.Fields{"featured": true}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx, created.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["title"] != "site" || got["featured"] != true {
		t.Fatalf("unexpected record after merge: %v", got)
	}
}

func TestSessionCreateFlow(t *testing.T) {
	repo, _ := newRepo(t, registry.CollectionTestimonials)
	ctx := context.Background()

	session := repository.NewSession(repo)
	if session.State() != repository.StateIdle {
		t.Fatalf("expected idle, got %v", session.State())
	}

	if err := session.BeginCreate(); err != nil {
		t.Fatalf("begin create: %v", err)
	}
	if session.State() != repository.StateEditing || session.EditingID() != "" {
		t.Fatalf("expected editing new record, got %v/%q", session.State(), session.EditingID())
	}
	if _, ok := session.Values()["quote"]; !ok {
		t.Fatal("expected template-populated values")
	}

	session.Set("author", "Ada")
	session.Set("quote", "ship it")

	record, err := session.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if record.ID() == "" {
		t.Fatal("expected created record")
	}
	if session.State() != repository.StateIdle {
		t.Fatalf("expected return to idle, got %v", session.State())
	}
}

func TestSessionEditFlow(t *testing.T) {
	repo, _ := newRepo(t, registry.CollectionTestimonials)
	ctx := context.Background()

	created, err := repo.Create(ctx, store.Fields{"author": "Ada", "quote": "v1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	session := repository.NewSession(repo)
	if err := session.BeginEdit(ctx, created.ID()); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if session.EditingID() != created.ID() {
		t.Fatalf("expected editing %s, got %s", created.ID(), session.EditingID())
	}
	if session.Values()["quote"] != "v1" {
		t.Fatalf("expected pre-filled values, got %v", session.Values())
	}

	session.Set("quote", "v2")
	record, err := session.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if record["quote"] != "v2" {
		t.Fatalf("expected updated quote, got %v", record["quote"])
	}
}

func TestSessionStaleEditDetectsConcurrentWrite(t *testing.T) {
	repo, _ := newRepo(t, registry.CollectionTestimonials)
	ctx := context.Background()

	created, err := repo.Create(ctx, store.Fields{"author": "Ada", "quote": "v1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Two forms open the same record.
	first := repository.NewSession(repo)
	if err := first.BeginEdit(ctx, created.ID()); err != nil {
		t.Fatalf("begin first: %v", err)
	}
	second := repository.NewSession(repo)
	if err := second.BeginEdit(ctx, created.ID()); err != nil {
		t.Fatalf("begin second: %v", err)
	}

	first.Set("quote", "first wins")
	if _, err := first.Submit(ctx); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// The second form now holds a stale version and must not clobber it.
	second.Set("quote", "stale")
	_, err = second.Submit(ctx)
	if !errors.Is(err, store.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if second.State() != repository.StateEditing {
		t.Fatalf("conflict must return to editing, got %v", second.State())
	}
	if second.Values()["quote"] != "stale" {
		t.Fatal("conflict must retain staged values")
	}

	got, err := repo.Get(ctx, created.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["quote"] != "first wins" {
		t.Fatalf("stale write must not apply, got %v", got["quote"])
	}

	// Reloading the record refreshes the version and the retry goes through.
	if err := second.BeginEdit(ctx, created.ID()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	second.Set("quote", "merged")
	if _, err := second.Submit(ctx); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
}

func TestSessionCancelDiscardsValues(t *testing.T) {
	repo, _ := newRepo(t, registry.CollectionTestimonials)

	session := repository.NewSession(repo)
	if err := session.BeginCreate(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	session.Set("author", "gone")

	if err := session.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if session.State() != repository.StateIdle || session.Values() != nil {
		t.Fatalf("expected discarded session, got %v %v", session.State(), session.Values())
	}
}

func TestSessionFailureRetainsValues(t *testing.T) {
	repo, _ := newRepo(t, registry.CollectionTestimonials)
	ctx := context.Background()

	session := repository.NewSession(repo)
	if err := session.BeginCreate(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	// Missing required quote: submit fails validation.
	session.Set("author", "Ada")
	session.Set("quote", "")

	if _, err := session.Submit(ctx); err == nil {
		t.Fatal("expected validation failure")
	}
	if session.State() != repository.StateEditing {
		t.Fatalf("failure must return to editing, got %v", session.State())
	}
	if session.Values()["author"] != "Ada" {
		t.Fatal("failure must retain staged values")
	}

	// Retry after fixing the payload succeeds.
	session.Set("quote", "better")
	if _, err := session.Submit(ctx); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
}

func TestSessionSubmitOutsideEditing(t *testing.T) {
	repo, _ := newRepo(t, registry.CollectionTestimonials)

	session := repository.NewSession(repo)
	if _, err := session.Submit(context.Background()); !errors.Is(err, repository.ErrSessionNotEditing) {
		t.Fatalf("expected ErrSessionNotEditing, got %v", err)
	}
}
