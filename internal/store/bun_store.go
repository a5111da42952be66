package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// document is the single backing table for every collection. Kind-specific
// fields live in the JSON column; the store never enforces a schema.
type document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID         uuid.UUID      `bun:",pk,type:uuid"`
	Collection string         `bun:"collection,notnull"`
	Fields     map[string]any `bun:"fields,type:jsonb,notnull"`
	Version    int64          `bun:"version,notnull,default:1"`
	CreatedAt  time.Time      `bun:"created_at,notnull"`
	UpdatedAt  time.Time      `bun:"updated_at,notnull"`
}

// Bun is a Store backed by a bun database. Change notifications cover
// mutations issued through this client only; writes from other processes are
// not observed.
type Bun struct {
	db          *bun.DB
	broadcaster *collectionBroadcaster
	now         func() time.Time
}

// BunOption customises the bun-backed store.
type BunOption func(*Bun)

// WithBunClock overrides the timestamp source, typically for tests.
func WithBunClock(clock func() time.Time) BunOption {
	return func(b *Bun) {
		if clock != nil {
			b.now = clock
		}
	}
}

// NewBun constructs a bun-backed document store.
func NewBun(db *bun.DB, opts ...BunOption) *Bun {
	b := &Bun{
		db:          db,
		broadcaster: newCollectionBroadcaster(),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var _ Store = (*Bun)(nil)

// ResetModels registers the document model and creates its table when absent.
// Hosts that manage migrations themselves can skip this helper.
func ResetModels(ctx context.Context, db *bun.DB) error {
	db.RegisterModel((*document)(nil))
	_, err := db.NewCreateTable().
		Model((*document)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// GetAll returns every matching document in the collection.
func (b *Bun) GetAll(ctx context.Context, collection string, q *Query) ([]Record, error) {
	if b.db == nil {
		return nil, errors.New("store: bun store requires a database")
	}
	if collection == "" {
		return nil, ErrCollectionRequired
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var models []document
	query := b.db.NewSelect().
		Model(&models).
		Where("collection = ?", collection)

	if q != nil && q.Filter != nil {
		query = applyBunFilter(query, q.Filter)
	}
	if q != nil && q.Sort != nil {
		query = applyBunSort(query, q.Sort)
	}
	if q != nil && q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("store: list %s: %w", collection, err)
	}

	records := make([]Record, len(models))
	for i := range models {
		records[i] = modelToRecord(&models[i])
	}
	return records, nil
}

// GetOne retrieves a document by id, returning NotFoundError when absent.
func (b *Bun) GetOne(ctx context.Context, collection, id string) (Record, error) {
	if collection == "" {
		return nil, ErrCollectionRequired
	}
	if id == "" {
		return nil, ErrIDRequired
	}

	model, err := b.fetch(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return modelToRecord(model), nil
}

// Create stamps timestamps with the store clock, assigns a fresh id and
// returns the full record.
func (b *Bun) Create(ctx context.Context, collection string, fields Fields) (Record, error) {
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	now := b.now()
	model := document{
		ID:         uuid.New(),
		Collection: collection,
		Fields:     CloneFields(fields),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := b.db.NewInsert().Model(&model).Exec(ctx); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", collection, err)
	}

	b.notify(ctx, collection)
	return modelToRecord(&model), nil
}

// Update merge-updates the provided fields, leaving absent keys untouched.
// A lost race against a concurrent writer re-reads and reapplies the merge.
func (b *Bun) Update(ctx context.Context, collection, id string, fields Fields) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = b.update(ctx, collection, id, fields, 0)
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
	}
	return err
}

// UpdateIfVersion merge-updates only when the stored version still equals
// expected.
func (b *Bun) UpdateIfVersion(ctx context.Context, collection, id string, fields Fields, expected int64) error {
	return b.update(ctx, collection, id, fields, expected)
}

func (b *Bun) update(ctx context.Context, collection, id string, fields Fields, expected int64) error {
	if collection == "" {
		return ErrCollectionRequired
	}
	if id == "" {
		return ErrIDRequired
	}

	model, err := b.fetch(ctx, collection, id)
	if err != nil {
		return err
	}
	if expected > 0 && model.Version != expected {
		return ErrVersionConflict
	}

	if model.Fields == nil {
		model.Fields = make(map[string]any)
	}
	for k, v := range CloneFields(fields) {
		model.Fields[k] = v
	}
	previous := model.Version
	model.Version++
	model.UpdatedAt = b.now()

	// The version guard in the WHERE clause closes the read-merge-write gap:
	// a concurrent writer bumps the version and this statement matches no row.
	res, err := b.db.NewUpdate().
		Model(model).
		Column("fields", "version", "updated_at").
		WherePK().
		Where("version = ?", previous).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store: update %s/%s: %w", collection, id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrVersionConflict
	}

	b.notify(ctx, collection)
	return nil
}

// Delete removes the document; deleting a missing id is a no-op.
func (b *Bun) Delete(ctx context.Context, collection, id string) error {
	if collection == "" {
		return ErrCollectionRequired
	}
	if id == "" {
		return ErrIDRequired
	}

	docID, err := uuid.Parse(id)
	if err != nil {
		// Malformed ids cannot exist in the table; treat as already deleted.
		return nil
	}

	res, err := b.db.NewDelete().
		Model((*document)(nil)).
		Where("id = ?", docID).
		Where("collection = ?", collection).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", collection, id, err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		b.notify(ctx, collection)
	}
	return nil
}

// Subscribe delivers the current list immediately, then after every change
// issued through this client, until ctx is cancelled.
func (b *Bun) Subscribe(ctx context.Context, collection string) (<-chan []Record, error) {
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	ch := b.broadcaster.Subscribe(ctx, collection)
	b.notify(ctx, collection)
	return ch, nil
}

func (b *Bun) fetch(ctx context.Context, collection, id string) (*document, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, &NotFoundError{Collection: collection, Key: id}
	}

	var model document
	err = b.db.NewSelect().
		Model(&model).
		Where("id = ?", docID).
		Where("collection = ?", collection).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Collection: collection, Key: id}
		}
		return nil, fmt.Errorf("store: get %s/%s: %w", collection, id, err)
	}
	return &model, nil
}

func (b *Bun) notify(ctx context.Context, collection string) {
	records, err := b.GetAll(ctx, collection, nil)
	if err != nil {
		return
	}
	b.broadcaster.Broadcast(collection, records)
}

// applyBunFilter pushes the equality filter into SQL. json_extract yields
// NULL for missing fields, which never compares equal, matching the memory
// store's missing-field exclusion.
func applyBunFilter(q *bun.SelectQuery, f *Filter) *bun.SelectQuery {
	switch f.Field {
	case FieldID:
		return q.Where("id = ?", fmt.Sprint(f.Value))
	case FieldCreatedAt:
		return q.Where("created_at = ?", f.Value)
	case FieldUpdatedAt:
		return q.Where("updated_at = ?", f.Value)
	default:
		return q.Where("json_extract(fields, ?) = ?", "$."+f.Field, f.Value)
	}
}

func applyBunSort(q *bun.SelectQuery, s *Sort) *bun.SelectQuery {
	dir := "ASC"
	if s.Direction == Desc {
		dir = "DESC"
	}
	switch s.Field {
	case FieldID:
		return q.OrderExpr("id " + dir)
	case FieldCreatedAt:
		return q.OrderExpr("created_at " + dir)
	case FieldUpdatedAt:
		return q.OrderExpr("updated_at " + dir)
	default:
		// Documents lacking the field order last regardless of direction,
		// matching the memory backend. Without the IS NULL key SQLite puts
		// json_extract NULLs first on ASC.
		path := "$." + s.Field
		return q.OrderExpr("json_extract(fields, ?) IS NULL, json_extract(fields, ?) "+dir, path, path)
	}
}

func modelToRecord(model *document) Record {
	if model == nil {
		return nil
	}
	record := make(Record, len(model.Fields)+3)
	for k, v := range model.Fields {
		record[k] = v
	}
	record[FieldID] = model.ID.String()
	record[FieldCreatedAt] = model.CreatedAt
	record[FieldUpdatedAt] = model.UpdatedAt
	record[FieldVersion] = model.Version
	return record
}
