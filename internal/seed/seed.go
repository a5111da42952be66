package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-folio/internal/blogs"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/registry"
	"github.com/goliatone/go-folio/internal/repository"
	"github.com/goliatone/go-folio/internal/store"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	ErrStoreRequired = errors.New("seed: store is required")
	ErrDirRequired   = errors.New("seed: directory is required")
)

// Report summarises an import run.
type Report struct {
	Documents int
	Posts     int
	Skipped   int
}

// Importer loads seed documents and markdown posts into the store. Seed
// data ships with the site and is considered trusted, so repositories are
// built without payload validation.
type Importer struct {
	store  store.Store
	blogs  blogs.Service
	logger interfaces.Logger
	dryRun bool
}

// Option customises the importer.
type Option func(*Importer)

// WithLogger attaches a logger provider.
func WithLogger(provider interfaces.LoggerProvider) Option {
	return func(i *Importer) {
		i.logger = logging.SeedLogger(provider)
	}
}

// WithDryRun previews the import without persisting anything.
func WithDryRun(dry bool) Option {
	return func(i *Importer) {
		i.dryRun = dry
	}
}

// NewImporter builds an importer over the given store.
func NewImporter(st store.Store, opts ...Option) (*Importer, error) {
	if st == nil {
		return nil, ErrStoreRequired
	}
	i := &Importer{
		store:  st,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(i)
	}

	blogRepo, err := repository.New(registry.CollectionBlogs, st)
	if err != nil {
		return nil, err
	}
	i.blogs = blogs.NewService(blogRepo)
	return i, nil
}

// ImportDocuments loads every `<collection>.json` file in dir. Each file
// holds a JSON array of field objects appended to the named collection.
// Files named after unknown collections are skipped with a warning.
func (i *Importer) ImportDocuments(ctx context.Context, dir string) (Report, error) {
	var report Report
	if dir == "" {
		return report, ErrDirRequired
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, fmt.Errorf("seed: read %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		collection := strings.TrimSuffix(entry.Name(), ".json")
		if !registry.IsKnown(collection) {
			i.logger.Warn("seed.collection.unknown", "file", entry.Name())
			report.Skipped++
			continue
		}

		path := filepath.Join(dir, entry.Name())
		docs, err := readDocuments(path)
		if err != nil {
			return report, err
		}

		repo, err := repository.New(collection, i.store, repository.WithoutValidation())
		if err != nil {
			return report, err
		}
		for _, fields := range docs {
			if i.dryRun {
				i.logger.Info("seed.document.preview", "collection", collection)
				report.Documents++
				continue
			}
			if _, err := repo.Create(ctx, fields); err != nil {
				return report, fmt.Errorf("seed: create in %s: %w", collection, err)
			}
			report.Documents++
		}
		i.logger.Info("seed.collection.loaded", "collection", collection, "count", len(docs))
	}
	return report, nil
}

// ImportPosts loads every markdown file in dir as a blog post. Frontmatter
// supplies the metadata; the body is rendered as markdown. Posts whose slug
// already exists are skipped so re-running the seed stays safe.
func (i *Importer) ImportPosts(ctx context.Context, dir string) (Report, error) {
	var report Report
	if dir == "" {
		return report, ErrDirRequired
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, fmt.Errorf("seed: read %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		req, err := readPost(path)
		if err != nil {
			return report, err
		}

		if i.dryRun {
			i.logger.Info("seed.post.preview", "file", entry.Name(), "title", req.Title)
			report.Posts++
			continue
		}

		_, err = i.blogs.Create(ctx, req)
		if errors.Is(err, blogs.ErrSlugExists) {
			i.logger.Info("seed.post.exists", "file", entry.Name(), "slug", req.Slug)
			report.Skipped++
			continue
		}
		if err != nil {
			return report, fmt.Errorf("seed: import %s: %w", entry.Name(), err)
		}
		report.Posts++
	}
	return report, nil
}

func readDocuments(path string) ([]store.Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	var docs []store.Fields
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("seed: parse %s: %w", path, err)
	}
	return docs, nil
}

type postFrontMatter struct {
	Title      string   `yaml:"title"`
	Slug       string   `yaml:"slug"`
	Excerpt    string   `yaml:"excerpt"`
	CoverImage string   `yaml:"coverImage"`
	Tags       []string `yaml:"tags"`
	Published  bool     `yaml:"published"`
	Draft      bool     `yaml:"draft"`
}

func readPost(path string) (blogs.CreateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return blogs.CreateRequest{}, fmt.Errorf("seed: read %s: %w", path, err)
	}

	var meta postFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return blogs.CreateRequest{}, fmt.Errorf("seed: parse frontmatter %s: %w", path, err)
	}

	published := meta.Published && !meta.Draft
	return blogs.CreateRequest{
		Title:      meta.Title,
		Slug:       meta.Slug,
		Content:    string(body),
		Excerpt:    meta.Excerpt,
		CoverImage: meta.CoverImage,
		Tags:       meta.Tags,
		Published:  published,
		Markdown:   true,
	}, nil
}
