package di

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/analytics"
	"github.com/goliatone/go-folio/internal/assets"
	"github.com/goliatone/go-folio/internal/blogs"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/logging/gologger"
	"github.com/goliatone/go-folio/internal/registry"
	"github.com/goliatone/go-folio/internal/repository"
	"github.com/goliatone/go-folio/internal/resume"
	"github.com/goliatone/go-folio/internal/runtimeconfig"
	"github.com/goliatone/go-folio/internal/seo"
	"github.com/goliatone/go-folio/internal/store"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// Container wires module dependencies. Services are created lazily and
// memoized so hosts only pay for what they use.
type Container struct {
	Config runtimeconfig.Config

	store    store.Store
	assets   assets.Storage
	provider interfaces.LoggerProvider
	bunDB    *bun.DB

	mu        sync.Mutex
	repos     map[string]*repository.Repository
	blogSvc   blogs.Service
	resumeSvc *resume.Service
	recorder  *analytics.Recorder
	site      *seo.Site
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithStore overrides the default document store.
func WithStore(st store.Store) Option {
	return func(c *Container) {
		c.store = st
	}
}

// WithAssets overrides the default asset storage.
func WithAssets(storage assets.Storage) Option {
	return func(c *Container) {
		c.assets = storage
	}
}

// WithLoggerProvider overrides the default logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.provider = provider
	}
}

// WithBunDB supplies the database handle used when the bun storage
// provider is configured.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		repos:  map[string]*repository.Repository{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.provider == nil {
		if cfg.Features.Logger {
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				AddSource: cfg.Logging.AddSource,
				Focus:     cfg.Logging.Focus,
			})
			if err != nil {
				return nil, err
			}
			c.provider = provider
		} else {
			c.provider = logging.NoOpProvider()
		}
	}

	if c.store == nil {
		st, err := c.buildStore()
		if err != nil {
			return nil, err
		}
		c.store = st
	}

	if c.assets == nil {
		storage, err := c.buildAssets()
		if err != nil {
			return nil, err
		}
		c.assets = storage
	}

	return c, nil
}

func (c *Container) buildStore() (store.Store, error) {
	switch c.Config.Storage.Provider {
	case "", "memory":
		return store.NewMemory(), nil
	case "bun":
		if c.bunDB == nil {
			return nil, fmt.Errorf("folio di: bun storage provider requires WithBunDB")
		}
		return store.NewBun(c.bunDB), nil
	default:
		return nil, runtimeconfig.ErrStorageProviderUnknown
	}
}

func (c *Container) buildAssets() (assets.Storage, error) {
	switch c.Config.Assets.Provider {
	case "", "memory":
		return assets.NewMemoryStorage(), nil
	case "s3":
		return assets.NewS3Storage(context.Background(), assets.S3Config{
			Bucket:    c.Config.Assets.Bucket,
			Region:    c.Config.Assets.Region,
			Endpoint:  c.Config.Assets.Endpoint,
			PublicURL: c.Config.Assets.PublicURL,
		}, assets.WithS3Logger(c.provider))
	default:
		return nil, runtimeconfig.ErrAssetsProviderUnknown
	}
}

// Store exposes the configured document store.
func (c *Container) Store() store.Store {
	return c.store
}

// Assets exposes the configured asset storage.
func (c *Container) Assets() assets.Storage {
	return c.assets
}

// LoggerProvider exposes the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.provider
}

// Repository returns the repository bound to the given collection,
// creating it on first use.
func (c *Container) Repository(collection string) (*repository.Repository, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repositoryLocked(collection)
}

func (c *Container) repositoryLocked(collection string) (*repository.Repository, error) {
	if repo, ok := c.repos[collection]; ok {
		return repo, nil
	}
	repo, err := repository.New(collection, c.store,
		repository.WithLogger(logging.StoreLogger(c.provider)),
	)
	if err != nil {
		return nil, err
	}
	c.repos[collection] = repo
	return repo, nil
}

// BlogService returns the blog service.
func (c *Container) BlogService() (blogs.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.blogSvc != nil {
		return c.blogSvc, nil
	}
	repo, err := c.repositoryLocked(registry.CollectionBlogs)
	if err != nil {
		return nil, err
	}
	c.blogSvc = blogs.NewService(repo, blogs.WithLogger(c.provider))
	return c.blogSvc, nil
}

// ResumeService returns the resume service, starting its activation
// writer on first use. Call Close on the container when done.
func (c *Container) ResumeService() (*resume.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resumeSvc != nil {
		return c.resumeSvc, nil
	}
	repo, err := c.repositoryLocked(registry.CollectionResume)
	if err != nil {
		return nil, err
	}
	c.resumeSvc = resume.NewService(repo, c.assets, resume.WithLogger(c.provider))
	return c.resumeSvc, nil
}

// AnalyticsRecorder returns the analytics recorder.
func (c *Container) AnalyticsRecorder() (*analytics.Recorder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recorder != nil {
		return c.recorder, nil
	}
	repo, err := c.repositoryLocked(registry.CollectionAnalytics)
	if err != nil {
		return nil, err
	}
	c.recorder = analytics.NewRecorder(repo, analytics.WithLogger(c.provider))
	return c.recorder, nil
}

// Site returns the metadata builder configured from SiteConfig.
func (c *Container) Site() seo.Site {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.site == nil {
		c.site = &seo.Site{
			Name:    c.Config.Site.Name,
			BaseURL: c.Config.Site.BaseURL,
		}
	}
	return *c.site
}

// Close stops background workers owned by the container.
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resumeSvc != nil {
		c.resumeSvc.Close()
	}
}
