package assets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// MaxImageSize caps image uploads at 5MB.
	MaxImageSize = 5 * 1024 * 1024
	// MaxDocumentSize caps PDF uploads at 10MB.
	MaxDocumentSize = 10 * 1024 * 1024

	ContentTypePDF = "application/pdf"
)

var (
	ErrNameRequired    = errors.New("assets: file name required")
	ErrFolderRequired  = errors.New("assets: folder required")
	ErrTypeUnsupported = errors.New("assets: content type not supported")
	ErrFileTooLarge    = errors.New("assets: file exceeds size limit")
	ErrObjectNotFound  = errors.New("assets: object not found")
	ErrBucketRequired  = errors.New("assets: bucket required")
	ErrUploadFailed    = errors.New("assets: upload failed")
)

// UploadInput describes a single object to persist.
type UploadInput struct {
	Folder      string
	Name        string
	ContentType string
	Data        []byte
}

// UploadResult reports where the object landed.
type UploadResult struct {
	Path string
	URL  string
	Size int64
}

// Storage persists binary assets and hands back public URLs.
type Storage interface {
	Upload(ctx context.Context, input UploadInput) (UploadResult, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// Validate checks the upload against the type and size policy: images up to
// 5MB, PDF documents up to 10MB, everything else rejected.
func (in UploadInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(in.Folder) == "" {
		return ErrFolderRequired
	}
	limit, err := sizeLimit(in.ContentType)
	if err != nil {
		return err
	}
	if int64(len(in.Data)) > limit {
		return fmt.Errorf("%w: %d bytes over %d limit", ErrFileTooLarge, len(in.Data), limit)
	}
	return nil
}

func sizeLimit(contentType string) (int64, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return MaxImageSize, nil
	case contentType == ContentTypePDF:
		return MaxDocumentSize, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrTypeUnsupported, contentType)
	}
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectPath builds the storage key for an upload. Keys are prefixed with a
// millisecond timestamp so repeated uploads of the same file never collide.
func ObjectPath(folder, name string, now time.Time) string {
	sanitized := unsafeNameChars.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "file"
	}
	return fmt.Sprintf("%s/%d_%s", strings.Trim(folder, "/"), now.UnixMilli(), sanitized)
}
