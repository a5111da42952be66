package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates that a requested document does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrCollectionRequired indicates that an operation was issued without a collection name.
	ErrCollectionRequired = errors.New("store: collection is required")
	// ErrIDRequired indicates that an operation requires a document id.
	ErrIDRequired = errors.New("store: document id is required")
	// ErrOperatorUnsupported reports a query filter operator the store cannot evaluate.
	ErrOperatorUnsupported = errors.New("store: unsupported filter operator")
	// ErrDirectionInvalid reports an invalid sort direction.
	ErrDirectionInvalid = errors.New("store: sort direction must be asc or desc")
	// ErrVersionConflict reports a conditional update whose expected version
	// no longer matches the stored document.
	ErrVersionConflict = errors.New("store: document version conflict")
)

// Reserved record keys stamped by the store. They are stripped from caller
// supplied fields on every write.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldVersion   = "version"
)

// Fields is the caller-supplied portion of a document.
type Fields map[string]any

// Record is a stored document with its assigned id and timestamps merged in.
type Record map[string]any

// ID returns the document identifier, or empty when the record carries none.
func (r Record) ID() string {
	if r == nil {
		return ""
	}
	if id, ok := r[FieldID].(string); ok {
		return id
	}
	return ""
}

// CreatedAt returns the creation timestamp when present.
func (r Record) CreatedAt() (time.Time, bool) {
	return r.timeField(FieldCreatedAt)
}

// UpdatedAt returns the last-write timestamp when present.
func (r Record) UpdatedAt() (time.Time, bool) {
	return r.timeField(FieldUpdatedAt)
}

// Version returns the write counter stamped by the store, starting at 1 on
// creation. Zero means the record carries no version.
func (r Record) Version() int64 {
	if r == nil {
		return 0
	}
	switch v := r[FieldVersion].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func (r Record) timeField(key string) (time.Time, bool) {
	if r == nil {
		return time.Time{}, false
	}
	switch v := r[key].(type) {
	case time.Time:
		return v, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// Direction orders query results.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OpEqual is the only filter operator the document store evaluates.
const OpEqual = "=="

// Filter restricts GetAll to documents whose field equals the given value.
// Documents lacking the field are excluded from the match.
type Filter struct {
	Field string
	Op    string
	Value any
}

// Sort orders GetAll results by a single field.
type Sort struct {
	Field     string
	Direction Direction
}

// Query bundles the optional filter, sort and limit accepted by GetAll.
// A nil Query returns the full collection in unspecified order.
type Query struct {
	Filter *Filter
	Sort   *Sort
	Limit  int
}

// Validate reports malformed query inputs before any remote call is issued.
func (q *Query) Validate() error {
	if q == nil {
		return nil
	}
	if q.Filter != nil {
		if strings.TrimSpace(q.Filter.Field) == "" {
			return fmt.Errorf("store: filter field is required")
		}
		if q.Filter.Op != "" && q.Filter.Op != OpEqual {
			return fmt.Errorf("%w: %q", ErrOperatorUnsupported, q.Filter.Op)
		}
	}
	if q.Sort != nil {
		if strings.TrimSpace(q.Sort.Field) == "" {
			return fmt.Errorf("store: sort field is required")
		}
		switch q.Sort.Direction {
		case "", Asc, Desc:
		default:
			return fmt.Errorf("%w: %q", ErrDirectionInvalid, q.Sort.Direction)
		}
	}
	return nil
}

// Store is the only path between the application and the document database.
// Implementations stamp createdAt/updatedAt with their own clock so caller
// clock skew never leaks into stored records, and perform no retries;
// transient failure policy belongs to callers.
type Store interface {
	// GetAll returns every matching document. Absence of a match yields an
	// empty slice, never an error. Result order follows the sort instruction
	// when given, otherwise it is unspecified.
	GetAll(ctx context.Context, collection string, q *Query) ([]Record, error)
	// GetOne returns NotFoundError when the id does not exist.
	GetOne(ctx context.Context, collection, id string) (Record, error)
	// Create assigns a new unique id, stamps both timestamps and returns the
	// full record including the id.
	Create(ctx context.Context, collection string, fields Fields) (Record, error)
	// Update merge-updates only the provided fields and refreshes updatedAt.
	// It returns NotFoundError when the id does not exist; it never creates.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes the document. Deleting a non-existent id is a no-op.
	Delete(ctx context.Context, collection, id string) error
	// Subscribe delivers the current full list immediately and again after
	// every change to the collection, until the context is cancelled.
	Subscribe(ctx context.Context, collection string) (<-chan []Record, error)
	// UpdateIfVersion behaves like Update but only writes when the stored
	// version still equals expected, returning ErrVersionConflict otherwise.
	// Multi-client edit flows use it so a stale form can never silently
	// clobber a newer write.
	UpdateIfVersion(ctx context.Context, collection, id string, fields Fields, expected int64) error
}

// NotFoundError reports a missing document with enough context for callers
// to decide between redirect-away and no-op handling.
type NotFoundError struct {
	Collection string
	Key        string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("%s: %s/%s", ErrNotFound.Error(), e.Collection, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFound reports whether err represents a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// CloneFields returns a shallow copy of fields with the reserved keys removed.
// It returns a non-nil map even when fields is nil.
func CloneFields(fields Fields) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		switch k {
		case FieldID, FieldCreatedAt, FieldUpdatedAt, FieldVersion:
			continue
		}
		out[k] = v
	}
	return out
}

// CloneRecord returns a shallow copy of the record.
func CloneRecord(record Record) Record {
	if record == nil {
		return nil
	}
	out := make(Record, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
