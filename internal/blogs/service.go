package blogs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goslug "github.com/goliatone/go-slug"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/goliatone/go-folio/internal/derive"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/repository"
	"github.com/goliatone/go-folio/internal/store"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	ErrTitleRequired = errors.New("blogs: title is required")
	ErrSlugInvalid   = errors.New("blogs: slug contains invalid characters")
	ErrSlugExists    = errors.New("blogs: slug already exists")
	ErrIDRequired    = errors.New("blogs: post id required")
	ErrNotFound      = errors.New("blogs: post not found")
)

// Service exposes blog management use-cases on top of the generic
// repository: slug, excerpt and reading-time derivation plus reverse lookup
// by slug.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (store.Record, error)
	Update(ctx context.Context, req UpdateRequest) (store.Record, error)
	Get(ctx context.Context, id string) (store.Record, error)
	GetBySlug(ctx context.Context, slug string) (store.Record, error)
	List(ctx context.Context, opts ...repository.ListOption) ([]store.Record, error)
	ListPublished(ctx context.Context) ([]store.Record, error)
	Delete(ctx context.Context, id string) error
}

// CreateRequest captures the information required to create a post.
type CreateRequest struct {
	Title      string
	Slug       string
	Content    string
	Excerpt    string
	CoverImage string
	Tags       []string
	Published  bool
	Markdown   bool
}

// Validate satisfies the boundary validation contract for create payloads.
func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error(ErrTitleRequired.Error())),
	)
}

// UpdateRequest captures mutable fields for an existing post. Nil pointers
// leave the stored value untouched. The slug is never regenerated from a
// title change; existing links must keep resolving.
type UpdateRequest struct {
	ID         string
	Title      *string
	Slug       *string
	Content    *string
	Excerpt    *string
	CoverImage *string
	Tags       []string
	Published  *bool
	Markdown   bool
}

// Validate checks the update request shape.
func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required.Error(ErrIDRequired.Error())),
	)
}

// Option customises the blog service.
type Option func(*service)

// WithLogger attaches a logger provider.
func WithLogger(provider interfaces.LoggerProvider) Option {
	return func(s *service) {
		s.logger = logging.BlogsLogger(provider)
	}
}

type service struct {
	repo     *repository.Repository
	logger   interfaces.Logger
	markdown goldmark.Markdown
}

// NewService constructs the blog service over a repository bound to the
// blogs collection.
func NewService(repo *repository.Repository, opts ...Option) Service {
	s := &service{
		repo:     repo,
		logger:   logging.NoOp(),
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (store.Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slugValue := strings.TrimSpace(req.Slug)
	if slugValue == "" {
		slugValue = derive.Slug(req.Title)
	} else if !goslug.IsValid(slugValue) {
		return nil, fmt.Errorf("%w: %q", ErrSlugInvalid, slugValue)
	}
	if slugValue == "" {
		// Titles made entirely of stripped characters produce no slug.
		return nil, fmt.Errorf("%w: title %q yields no slug", ErrSlugInvalid, req.Title)
	}

	if err := s.ensureSlugFree(ctx, slugValue, ""); err != nil {
		return nil, err
	}

	content, contentRaw, err := s.renderContent(req.Content, req.Markdown)
	if err != nil {
		return nil, err
	}

	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" && content != "" {
		excerpt = derive.Excerpt(content, derive.ExcerptLength)
	}

	fields := store.Fields{
		"title":       req.Title,
		"slug":        slugValue,
		"content":     content,
		"contentRaw":  contentRaw,
		"excerpt":     excerpt,
		"coverImage":  req.CoverImage,
		"tags":        tagsToAny(req.Tags),
		"published":   req.Published,
		"readingTime": derive.ReadingTime(content),
	}

	record, err := s.repo.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Info("blog.created", "id", record.ID(), "slug", slugValue, "published", req.Published)
	return record, nil
}

func (s *service) Update(ctx context.Context, req UpdateRequest) (store.Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	fields := store.Fields{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Slug != nil {
		slugValue := strings.TrimSpace(*req.Slug)
		if !goslug.IsValid(slugValue) {
			return nil, fmt.Errorf("%w: %q", ErrSlugInvalid, slugValue)
		}
		if err := s.ensureSlugFree(ctx, slugValue, req.ID); err != nil {
			return nil, err
		}
		fields["slug"] = slugValue
	}
	if req.CoverImage != nil {
		fields["coverImage"] = *req.CoverImage
	}
	if req.Tags != nil {
		fields["tags"] = tagsToAny(req.Tags)
	}
	if req.Published != nil {
		fields["published"] = *req.Published
	}
	if req.Excerpt != nil {
		fields["excerpt"] = strings.TrimSpace(*req.Excerpt)
	}

	if req.Content != nil {
		content, contentRaw, err := s.renderContent(*req.Content, req.Markdown)
		if err != nil {
			return nil, err
		}
		fields["content"] = content
		fields["contentRaw"] = contentRaw
		fields["readingTime"] = derive.ReadingTime(content)

		// Content changes backfill the excerpt only while it is still empty;
		// an author-written excerpt is never overwritten.
		storedExcerpt, _ := current["excerpt"].(string)
		if req.Excerpt == nil && storedExcerpt == "" && content != "" {
			fields["excerpt"] = derive.Excerpt(content, derive.ExcerptLength)
		}
	}

	if len(fields) == 0 {
		return current, nil
	}

	if err := s.repo.Update(ctx, req.ID, fields); err != nil {
		return nil, err
	}
	s.logger.Info("blog.updated", "id", req.ID)
	return s.repo.Get(ctx, req.ID)
}

func (s *service) Get(ctx context.Context, id string) (store.Record, error) {
	return s.repo.Get(ctx, id)
}

// GetBySlug resolves a published post by its slug.
func (s *service) GetBySlug(ctx context.Context, slug string) (store.Record, error) {
	records, err := s.repo.List(ctx, repository.WithFilter("slug", slug))
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if published, _ := rec["published"].(bool); published {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: slug %q", ErrNotFound, slug)
}

func (s *service) List(ctx context.Context, opts ...repository.ListOption) ([]store.Record, error) {
	return s.repo.List(ctx, opts...)
}

// ListPublished returns published posts, newest first.
func (s *service) ListPublished(ctx context.Context) ([]store.Record, error) {
	records, err := s.repo.List(ctx,
		repository.WithFilter("published", true),
		repository.WithSort(store.FieldCreatedAt, store.Desc),
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("blog.deleted", "id", id)
	return nil
}

// ensureSlugFree enforces slug uniqueness across the whole collection at
// write time so reverse lookup stays unambiguous.
func (s *service) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	records, err := s.repo.List(ctx, repository.WithFilter("slug", slug))
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.ID() != selfID {
			return fmt.Errorf("%w: %q", ErrSlugExists, slug)
		}
	}
	return nil
}

func (s *service) renderContent(content string, markdown bool) (rendered, raw string, err error) {
	if !markdown {
		return content, content, nil
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(content), &buf); err != nil {
		return "", "", fmt.Errorf("blogs: render markdown: %w", err)
	}
	return buf.String(), content, nil
}

func tagsToAny(tags []string) []any {
	out := make([]any, len(tags))
	for i, tag := range tags {
		out[i] = tag
	}
	return out
}
