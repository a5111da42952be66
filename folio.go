package folio

import (
	"github.com/goliatone/go-folio/internal/analytics"
	"github.com/goliatone/go-folio/internal/assets"
	"github.com/goliatone/go-folio/internal/blogs"
	"github.com/goliatone/go-folio/internal/di"
	"github.com/goliatone/go-folio/internal/registry"
	"github.com/goliatone/go-folio/internal/repository"
	"github.com/goliatone/go-folio/internal/resume"
	"github.com/goliatone/go-folio/internal/seo"
	"github.com/goliatone/go-folio/internal/store"
)

// BlogService exports the blog service contract for consumers of the folio package.
type BlogService = blogs.Service

// ResumeService exports the resume service.
type ResumeService = resume.Service

// AnalyticsRecorder exports the analytics recorder.
type AnalyticsRecorder = analytics.Recorder

// AssetStorage exports the object storage contract.
type AssetStorage = assets.Storage

// Repository exports the generic collection repository.
type Repository = repository.Repository

// Record exports the document record type returned by repositories.
type Record = store.Record

// Fields exports the mutable field map accepted by repositories.
type Fields = store.Fields

// Store exports the document store contract.
type Store = store.Store

// Site exports the metadata builder.
type Site = seo.Site

// ErrVersionConflict reports a conditional update that lost to a
// concurrent write. Callers reload the record and retry.
var ErrVersionConflict = store.ErrVersionConflict

// IsNotFound reports whether err is a missing-document error.
func IsNotFound(err error) bool {
	return store.IsNotFound(err)
}

// Collections returns every known collection name.
func Collections() []string {
	return registry.Collections()
}

// Module represents the top level runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a folio module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Blogs returns the configured blog service.
func (m *Module) Blogs() (BlogService, error) {
	return m.container.BlogService()
}

// Resume returns the configured resume service.
func (m *Module) Resume() (*ResumeService, error) {
	return m.container.ResumeService()
}

// Analytics returns the configured analytics recorder.
func (m *Module) Analytics() (*AnalyticsRecorder, error) {
	return m.container.AnalyticsRecorder()
}

// Repository returns a repository bound to the given collection.
func (m *Module) Repository(collection string) (*Repository, error) {
	return m.container.Repository(collection)
}

// Assets returns the configured object storage client.
func (m *Module) Assets() AssetStorage {
	return m.container.Assets()
}

// Site returns the metadata builder configured for this site.
func (m *Module) Site() Site {
	return m.container.Site()
}

// Close releases background workers owned by the module.
func (m *Module) Close() {
	if m == nil || m.container == nil {
		return
	}
	m.container.Close()
}
