package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-folio/internal/assets"
	"github.com/goliatone/go-folio/internal/derive"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/repository"
	"github.com/goliatone/go-folio/internal/store"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const uploadFolder = "resume"

var (
	ErrLabelRequired = errors.New("resume: label is required")
	ErrFileRequired  = errors.New("resume: file data required")
	ErrIDRequired    = errors.New("resume: resume id required")
	ErrNoActive      = errors.New("resume: no active resume")
	ErrClosed        = errors.New("resume: service closed")
)

// Service manages uploaded resume documents. At most one resume is active
// at a time; activation requests run through a single writer so concurrent
// callers can never leave two documents active.
type Service struct {
	repo    *repository.Repository
	storage assets.Storage
	logger  interfaces.Logger

	queue    chan activationRequest
	done     chan struct{}
	closeOne sync.Once
}

type activationRequest struct {
	ctx   context.Context
	id    string
	reply chan error
}

// Option customises the resume service.
type Option func(*Service)

// WithLogger attaches a logger provider.
func WithLogger(provider interfaces.LoggerProvider) Option {
	return func(s *Service) {
		s.logger = logging.ResumeLogger(provider)
	}
}

// NewService builds the resume service and starts its activation writer.
// Call Close when done to stop the writer goroutine.
func NewService(repo *repository.Repository, storage assets.Storage, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		storage: storage,
		logger:  logging.NoOp(),
		queue:   make(chan activationRequest, 16),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.runActivations()
	return s
}

// Close stops the activation writer. Pending requests already queued are
// rejected with ErrClosed.
func (s *Service) Close() {
	s.closeOne.Do(func() {
		close(s.done)
	})
}

// UploadRequest carries a resume document to store.
type UploadRequest struct {
	Label    string
	FileName string
	Data     []byte
}

// Validate checks the upload request shape.
func (r UploadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Label, validation.Required.Error(ErrLabelRequired.Error())),
		validation.Field(&r.Data, validation.Required.Error(ErrFileRequired.Error())),
	)
}

// Upload stores the PDF and creates its record. New uploads start inactive;
// activation is an explicit step.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (store.Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.FileName)
	if name == "" {
		name = derive.Slug(req.Label) + ".pdf"
	}

	result, err := s.storage.Upload(ctx, assets.UploadInput{
		Folder:      uploadFolder,
		Name:        name,
		ContentType: assets.ContentTypePDF,
		Data:        req.Data,
	})
	if err != nil {
		return nil, err
	}

	record, err := s.repo.Create(ctx, store.Fields{
		"label":    req.Label,
		"fileUrl":  result.URL,
		"filePath": result.Path,
		"fileSize": result.Size,
		"isActive": false,
	})
	if err != nil {
		// The record is the source of truth; without it the stored file is
		// unreachable, so clean it up.
		if cleanupErr := s.storage.Delete(ctx, result.Path); cleanupErr != nil {
			s.logger.Warn("resume.upload.cleanup_failed", "path", result.Path, "error", cleanupErr)
		}
		return nil, err
	}

	s.logger.Info("resume.uploaded", "id", record.ID(), "label", req.Label, "size", derive.FormatFileSize(result.Size))
	return record, nil
}

// List returns every stored resume, newest first.
func (s *Service) List(ctx context.Context) ([]store.Record, error) {
	return s.repo.List(ctx, repository.WithSort(store.FieldCreatedAt, store.Desc))
}

// Get returns a single resume record.
func (s *Service) Get(ctx context.Context, id string) (store.Record, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.repo.Get(ctx, id)
}

// Active returns the currently active resume.
func (s *Service) Active(ctx context.Context) (store.Record, error) {
	records, err := s.repo.List(ctx, repository.WithFilter("isActive", true))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoActive
	}
	return records[0], nil
}

// Activate makes the given resume the single active one. Requests are
// processed one at a time in arrival order.
func (s *Service) Activate(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}

	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	req := activationRequest{ctx: ctx, id: id, reply: make(chan error, 1)}
	select {
	case <-s.done:
		return ErrClosed
	case s.queue <- req:
	}

	select {
	case err := <-req.reply:
		return err
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Delete removes the record and its stored document.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}

	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if path, _ := record["filePath"].(string); path != "" {
		if err := s.storage.Delete(ctx, path); err != nil {
			s.logger.Warn("resume.delete.storage_failed", "id", id, "path", path, "error", err)
		}
	}

	s.logger.Info("resume.deleted", "id", id)
	return nil
}

func (s *Service) runActivations() {
	for {
		select {
		case <-s.done:
			s.drainQueue()
			return
		case req := <-s.queue:
			req.reply <- s.activate(req.ctx, req.id)
		}
	}
}

func (s *Service) drainQueue() {
	for {
		select {
		case req := <-s.queue:
			req.reply <- ErrClosed
		default:
			return
		}
	}
}

// activate performs the read-deactivate-activate sequence. It only ever
// runs on the writer goroutine.
func (s *Service) activate(ctx context.Context, id string) error {
	target, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		active, _ := rec["isActive"].(bool)
		if !active || rec.ID() == id {
			continue
		}
		if err := s.repo.Update(ctx, rec.ID(), store.Fields{"isActive": false}); err != nil {
			return fmt.Errorf("resume: deactivate %s: %w", rec.ID(), err)
		}
	}

	if active, _ := target["isActive"].(bool); !active {
		if err := s.repo.Update(ctx, id, store.Fields{"isActive": true}); err != nil {
			return err
		}
	}

	s.logger.Info("resume.activated", "id", id)
	return nil
}
