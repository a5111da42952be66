package assets

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// S3Config holds connection settings for an S3-compatible bucket. Endpoint
// is optional; when set, path-style addressing is enabled for MinIO and
// similar services.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	PublicURL string
}

// S3Storage stores assets in an S3-compatible bucket.
type S3Storage struct {
	client *s3.Client
	config S3Config
	logger interfaces.Logger
	now    func() time.Time
}

// S3Option customises the S3 storage client.
type S3Option func(*S3Storage)

// WithS3Logger attaches a logger provider.
func WithS3Logger(provider interfaces.LoggerProvider) S3Option {
	return func(s *S3Storage) {
		s.logger = logging.AssetsLogger(provider)
	}
}

// WithS3Clock overrides the timestamp source used for object keys.
func WithS3Clock(now func() time.Time) S3Option {
	return func(s *S3Storage) {
		s.now = now
	}
}

// NewS3Storage builds an S3-backed asset store using the default AWS
// credential chain.
func NewS3Storage(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("assets: load aws config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	storage := &S3Storage{
		client: s3.NewFromConfig(awsCfg, s3opts...),
		config: cfg,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(storage)
	}
	return storage, nil
}

func (s *S3Storage) Upload(ctx context.Context, input UploadInput) (UploadResult, error) {
	if err := input.Validate(); err != nil {
		return UploadResult{}, err
	}

	path := ObjectPath(input.Folder, input.Name, s.now())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(input.Data),
		ContentType: aws.String(input.ContentType),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: put %s: %v", ErrUploadFailed, path, err)
	}

	s.logger.Info("asset.uploaded", "path", path, "size", len(input.Data), "content_type", input.ContentType)
	return UploadResult{
		Path: path,
		URL:  s.URL(path),
		Size: int64(len(input.Data)),
	}, nil
}

func (s *S3Storage) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("assets: delete %s: %w", path, err)
	}
	s.logger.Info("asset.deleted", "path", path)
	return nil
}

// URL maps a storage key to its public address.
func (s *S3Storage) URL(path string) string {
	base := s.config.PublicURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.config.Bucket, s.config.Region)
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
