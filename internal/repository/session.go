package repository

import (
	"context"
	"errors"

	"github.com/goliatone/go-folio/internal/registry"
	"github.com/goliatone/go-folio/internal/store"
)

var (
	// ErrSessionNotEditing reports a submit or cancel without an open edit.
	ErrSessionNotEditing = errors.New("repository: session is not editing")
	// ErrSessionBusy reports a second operation while a submit is in flight.
	ErrSessionBusy = errors.New("repository: session submit in flight")
)

// SessionState models the transient admin edit flow: Idle, Editing an
// existing record (or a new one), Submitting. Nothing here is persisted.
type SessionState int

const (
	StateIdle SessionState = iota
	StateEditing
	StateSubmitting
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Session drives one create-or-edit flow against a repository. It is not
// safe for concurrent use; each admin form owns its own session.
type Session struct {
	repo      *Repository
	state     SessionState
	editingID string
	baseline  int64
	values    store.Fields
}

// NewSession creates an idle session for the repository.
func NewSession(repo *Repository) *Session {
	return &Session{repo: repo, state: StateIdle}
}

// State reports the current phase.
func (s *Session) State() SessionState {
	return s.state
}

// EditingID returns the record under edit; empty means a new record.
func (s *Session) EditingID() string {
	return s.editingID
}

// Values returns the field values held by the session.
func (s *Session) Values() store.Fields {
	return s.values
}

// BeginCreate opens a create flow pre-populated from the collection
// template.
func (s *Session) BeginCreate() error {
	return s.begin("", 0, registry.DefaultShape(s.repo.Collection()))
}

// BeginEdit opens an edit flow for an existing record, pre-filled with its
// current values. The record's version is captured so Submit can detect a
// concurrent write to the same record.
func (s *Session) BeginEdit(ctx context.Context, id string) error {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.begin(id, record.Version(), store.CloneFields(store.Fields(record)))
}

func (s *Session) begin(id string, baseline int64, values store.Fields) error {
	if s.state == StateSubmitting {
		return ErrSessionBusy
	}
	s.state = StateEditing
	s.editingID = id
	s.baseline = baseline
	s.values = values
	return nil
}

// Set stages a field value on the open edit.
func (s *Session) Set(field string, value any) error {
	if s.state != StateEditing {
		return ErrSessionNotEditing
	}
	if s.values == nil {
		s.values = store.Fields{}
	}
	s.values[field] = value
	return nil
}

// Cancel abandons the edit and discards every unsaved value.
func (s *Session) Cancel() error {
	if s.state != StateEditing {
		return ErrSessionNotEditing
	}
	s.state = StateIdle
	s.editingID = ""
	s.baseline = 0
	s.values = nil
	return nil
}

// Submit persists the staged values: create when no id is held, merge-update
// otherwise. Success returns the session to Idle; failure returns it to
// Editing with the staged values retained so the caller can retry.
func (s *Session) Submit(ctx context.Context) (store.Record, error) {
	if s.state != StateEditing {
		return nil, ErrSessionNotEditing
	}
	s.state = StateSubmitting

	var (
		record store.Record
		err    error
	)
	if s.editingID == "" {
		record, err = s.repo.Create(ctx, s.values)
	} else {
		err = s.repo.UpdateIfVersion(ctx, s.editingID, s.values, s.baseline)
		if err == nil {
			record, err = s.repo.Get(ctx, s.editingID)
		}
	}

	if err != nil {
		// Field values stay staged for the retry.
		s.state = StateEditing
		return nil, err
	}

	s.state = StateIdle
	s.editingID = ""
	s.baseline = 0
	s.values = nil
	return record, nil
}
