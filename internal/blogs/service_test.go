package blogs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-folio/internal/registry"
	"github.com/goliatone/go-folio/internal/repository"
	"github.com/goliatone/go-folio/internal/store"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	repo, err := repository.New(registry.CollectionBlogs, store.NewMemory())
	if err != nil {
		t.Fatalf("repository: %v", err)
	}
	return NewService(repo)
}

func TestCreateDerivesSlugExcerptReadingTime(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	content := strings.Repeat("word ", 401)
	record, err := svc.Create(ctx, CreateRequest{
		Title:   "Hello, World! 2024",
		Content: content,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got := record["slug"]; got != "hello-world-2024" {
		t.Fatalf("expected derived slug, got %v", got)
	}
	if got := record["readingTime"]; got != 3 {
		t.Fatalf("expected reading time 3, got %v", got)
	}
	excerpt, _ := record["excerpt"].(string)
	if excerpt == "" || !strings.HasSuffix(excerpt, "...") {
		t.Fatalf("expected derived excerpt, got %q", excerpt)
	}
}

func TestCreateKeepsProvidedSlugAndExcerpt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateRequest{
		Title:   "My Post",
		Slug:    "custom-slug",
		Content: "body text",
		Excerpt: "hand written",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record["slug"] != "custom-slug" {
		t.Fatalf("expected provided slug, got %v", record["slug"])
	}
	if record["excerpt"] != "hand written" {
		t.Fatalf("expected provided excerpt, got %v", record["excerpt"])
	}
}

func TestCreateRejectsInvalidSlug(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		Title: "Post",
		Slug:  "Not Valid!",
	})
	if !errors.Is(err, ErrSlugInvalid) {
		t.Fatalf("expected ErrSlugInvalid, got %v", err)
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Title: "First Post"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, CreateRequest{Title: "First Post"})
	if !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Create(context.Background(), CreateRequest{}); err == nil {
		t.Fatal("expected validation error for missing title")
	}
}

func TestUpdateNeverRegeneratesSlug(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateRequest{Title: "Original Title"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Completely Different Title"
	updated, err := svc.Update(ctx, UpdateRequest{ID: record.ID(), Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated["slug"] != "original-title" {
		t.Fatalf("slug changed on title update: %v", updated["slug"])
	}
	if updated["title"] != title {
		t.Fatalf("title not updated: %v", updated["title"])
	}
}

func TestUpdateContentRefreshesReadingTimeKeepsExcerpt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateRequest{
		Title:   "Post",
		Content: "short body",
		Excerpt: "curated excerpt",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	longer := strings.Repeat("word ", 600)
	updated, err := svc.Update(ctx, UpdateRequest{ID: record.ID(), Content: &longer})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated["readingTime"] != 3 {
		t.Fatalf("expected refreshed reading time 3, got %v", updated["readingTime"])
	}
	if updated["excerpt"] != "curated excerpt" {
		t.Fatalf("author excerpt overwritten: %v", updated["excerpt"])
	}
}

func TestUpdateBackfillsEmptyExcerpt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateRequest{Title: "Post"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	content := "fresh content for the post body"
	updated, err := svc.Update(ctx, UpdateRequest{ID: record.ID(), Content: &content})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	excerpt, _ := updated["excerpt"].(string)
	if excerpt == "" {
		t.Fatal("expected excerpt backfilled from new content")
	}
}

func TestUpdateSlugConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Title: "Taken", Slug: "taken"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	record, err := svc.Create(ctx, CreateRequest{Title: "Other"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	taken := "taken"
	_, err = svc.Update(ctx, UpdateRequest{ID: record.ID(), Slug: &taken})
	if !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}
}

func TestMarkdownRendering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateRequest{
		Title:    "Markdown Post",
		Content:  "# Heading\n\nbody paragraph",
		Markdown: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	content, _ := record["content"].(string)
	if !strings.Contains(content, "<h1") {
		t.Fatalf("expected rendered html, got %q", content)
	}
	if record["contentRaw"] != "# Heading\n\nbody paragraph" {
		t.Fatalf("raw markdown not preserved: %v", record["contentRaw"])
	}
}

func TestGetBySlugReturnsPublishedOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Title: "Draft", Slug: "my-post"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetBySlug(ctx, "my-post"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unpublished slug, got %v", err)
	}

	published, err := svc.Create(ctx, CreateRequest{Title: "Live", Slug: "live-post", Published: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	found, err := svc.GetBySlug(ctx, "live-post")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if found.ID() != published.ID() {
		t.Fatalf("wrong record returned: %v", found.ID())
	}
}

func TestListPublishedFiltersDrafts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRequest{Title: "Draft One"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateRequest{Title: "Live One", Published: true}); err != nil {
		t.Fatalf("create: %v", err)
	}

	records, err := svc.ListPublished(ctx)
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 published post, got %d", len(records))
	}
	if records[0]["title"] != "Live One" {
		t.Fatalf("unexpected record: %v", records[0]["title"])
	}
}

func TestDeleteRemovesPost(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateRequest{Title: "Doomed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, record.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, record.ID()); !store.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
