// Package repository provides the generic CRUD-and-query contract every
// content kind shares. A Repository binds one collection to an injected
// document store; construction is explicit so there is no package-level
// store handle anywhere in the module.
package repository

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/registry"
	"github.com/goliatone/go-folio/internal/store"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	// ErrStoreRequired indicates a repository was constructed without a store.
	ErrStoreRequired = errors.New("repository: store is required")
	// ErrCollectionRequired indicates a repository needs a collection name.
	ErrCollectionRequired = errors.New("repository: collection is required")
)

const payloadInvalidCode = "FOLIO_PAYLOAD_INVALID"

// Repository is the generic CRUD abstraction over one collection.
type Repository struct {
	collection string
	store      store.Store
	logger     interfaces.Logger
	validate   bool
}

// Option mutates the repository during construction.
type Option func(*Repository)

// WithLogger attaches a logger; the default drops every entry.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithoutValidation disables registry boundary validation. Seed imports use
// this to replay historical records that predate the current schemas.
func WithoutValidation() Option {
	return func(r *Repository) {
		r.validate = false
	}
}

// New constructs a repository bound to the given collection.
func New(collection string, st store.Store, opts ...Option) (*Repository, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, ErrCollectionRequired
	}
	if st == nil {
		return nil, ErrStoreRequired
	}
	r := &Repository{
		collection: collection,
		store:      st,
		logger:     logging.NoOp(),
		validate:   true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Collection returns the bound collection name.
func (r *Repository) Collection() string {
	return r.collection
}

// ListOption configures List queries.
type ListOption func(*store.Query)

// WithFilter restricts results to records whose field equals value.
func WithFilter(field string, value any) ListOption {
	return func(q *store.Query) {
		q.Filter = &store.Filter{Field: field, Op: store.OpEqual, Value: value}
	}
}

// WithSort orders results by the given field.
func WithSort(field string, direction store.Direction) ListOption {
	return func(q *store.Query) {
		q.Sort = &store.Sort{Field: field, Direction: direction}
	}
}

// WithLimit caps the result count.
func WithLimit(n int) ListOption {
	return func(q *store.Query) {
		q.Limit = n
	}
}

// List returns the matching records; no match yields an empty slice.
func (r *Repository) List(ctx context.Context, opts ...ListOption) ([]store.Record, error) {
	var q *store.Query
	if len(opts) > 0 {
		q = &store.Query{}
		for _, opt := range opts {
			opt(q)
		}
	}
	return r.store.GetAll(ctx, r.collection, q)
}

// Get returns the record or a store.NotFoundError.
func (r *Repository) Get(ctx context.Context, id string) (store.Record, error) {
	return r.store.GetOne(ctx, r.collection, id)
}

// Create validates the payload against the collection schema, coerces
// numeric form inputs and persists a new record.
func (r *Repository) Create(ctx context.Context, fields store.Fields) (store.Record, error) {
	coerced := CoerceNumbers(r.collection, fields)
	if r.validate {
		if err := registry.ValidateNew(r.collection, coerced); err != nil {
			return nil, wrapPayloadError(err)
		}
	}

	record, err := r.store.Create(ctx, r.collection, coerced)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("record.created", "collection", r.collection, "id", record.ID())
	return record, nil
}

// Update validates the changed fields and merge-updates the record.
func (r *Repository) Update(ctx context.Context, id string, fields store.Fields) error {
	coerced := CoerceNumbers(r.collection, fields)
	if r.validate {
		if err := registry.ValidatePartial(r.collection, coerced); err != nil {
			return wrapPayloadError(err)
		}
	}

	if err := r.store.Update(ctx, r.collection, id, coerced); err != nil {
		return err
	}
	r.logger.Debug("record.updated", "collection", r.collection, "id", id)
	return nil
}

// UpdateIfVersion validates and merge-updates the record only when its
// stored version still equals expected, returning store.ErrVersionConflict
// otherwise. Edit flows pass the version they loaded so a stale form cannot
// clobber a newer write.
func (r *Repository) UpdateIfVersion(ctx context.Context, id string, fields store.Fields, expected int64) error {
	coerced := CoerceNumbers(r.collection, fields)
	if r.validate {
		if err := registry.ValidatePartial(r.collection, coerced); err != nil {
			return wrapPayloadError(err)
		}
	}

	if err := r.store.UpdateIfVersion(ctx, r.collection, id, coerced, expected); err != nil {
		return err
	}
	r.logger.Debug("record.updated", "collection", r.collection, "id", id, "version", expected+1)
	return nil
}

// Delete removes the record; deleting a missing id is a no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.collection, id); err != nil {
		return err
	}
	r.logger.Debug("record.deleted", "collection", r.collection, "id", id)
	return nil
}

// Watch subscribes to collection snapshots until ctx is cancelled.
func (r *Repository) Watch(ctx context.Context) (<-chan []store.Record, error) {
	return r.store.Subscribe(ctx, r.collection)
}

func wrapPayloadError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "payload validation failed").
		WithTextCode(payloadInvalidCode)
}
