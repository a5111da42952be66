package analytics

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/registry"
	"github.com/goliatone/go-folio/internal/repository"
	"github.com/goliatone/go-folio/internal/store"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const (
	EventPageView = "page_view"
)

var ErrPathRequired = errors.New("analytics: event path required")

// Event is a single page view or custom interaction.
type Event struct {
	Type      string
	Path      string
	Referrer  string
	UserAgent string
	Metadata  map[string]any
}

// Recorder persists analytics events. Recording is best-effort: a failed
// write is logged and swallowed so instrumentation can never break the
// caller's flow.
type Recorder struct {
	repo   *repository.Repository
	logger interfaces.Logger
}

// Option customises the recorder.
type Option func(*Recorder)

// WithLogger attaches a logger provider.
func WithLogger(provider interfaces.LoggerProvider) Option {
	return func(r *Recorder) {
		r.logger = logging.AnalyticsLogger(provider)
	}
}

// NewRecorder builds a recorder writing to the analytics collection.
func NewRecorder(repo *repository.Repository, opts ...Option) *Recorder {
	r := &Recorder{
		repo:   repo,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record writes the event. Failures are logged, never returned.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if strings.TrimSpace(event.Path) == "" {
		r.logger.Warn("analytics.event.dropped", "reason", ErrPathRequired.Error())
		return
	}
	if event.Type == "" {
		event.Type = EventPageView
	}

	fields := store.Fields{
		"event":     event.Type,
		"path":      event.Path,
		"referrer":  event.Referrer,
		"userAgent": event.UserAgent,
	}
	if len(event.Metadata) > 0 {
		// Metadata lives under its own key so a caller-supplied entry can
		// never shadow the event fields above.
		meta := make(map[string]any, len(event.Metadata))
		for key, value := range event.Metadata {
			meta[key] = value
		}
		fields["meta"] = meta
	}

	if _, err := r.repo.Create(ctx, fields); err != nil {
		r.logger.Error("analytics.event.write_failed", "event", event.Type, "path", event.Path, "error", err)
		return
	}
	r.logger.Debug("analytics.event.recorded", "event", event.Type, "path", event.Path)
}

// PageViews counts recorded page views, optionally narrowed to a path.
// The store supports a single equality filter so the second predicate is
// applied in memory.
func (r *Recorder) PageViews(ctx context.Context, path string) (int, error) {
	records, err := r.repo.List(ctx, repository.WithFilter("event", EventPageView))
	if err != nil {
		return 0, err
	}
	if path == "" {
		return len(records), nil
	}
	count := 0
	for _, rec := range records {
		if rec["path"] == path {
			count++
		}
	}
	return count, nil
}

// Collection returns the backing collection name.
func Collection() string {
	return registry.CollectionAnalytics
}
