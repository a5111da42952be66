package runtimeconfig

import (
	"errors"
	"strings"
)

var ErrStorageProviderUnknown = errors.New("folio config: storage provider is invalid")
var ErrAssetsProviderUnknown = errors.New("folio config: assets provider is invalid")
var ErrAssetsBucketRequired = errors.New("folio config: assets bucket is required when the s3 provider is enabled")
var ErrSiteBaseURLRequired = errors.New("folio config: site base url is required when seo is enabled")
var ErrLoggingLevelInvalid = errors.New("folio config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("folio config: logging format is invalid")
var ErrDatabaseDSNRequired = errors.New("folio config: database dsn is required when the bun provider is enabled")

// Config aggregates feature flags and adapter bindings for the content
// backend. Fields intentionally use simple types so host applications can
// extend them later.
type Config struct {
	Enabled  bool
	Storage  StorageConfig
	Assets   AssetsConfig
	Site     SiteConfig
	Features Features
	Logging  LoggingConfig
}

// StorageConfig selects the document store backing the repositories.
type StorageConfig struct {
	Provider string
	DSN      string
}

// AssetsConfig selects and configures the object storage client.
type AssetsConfig struct {
	Provider  string
	Bucket    string
	Region    string
	Endpoint  string
	PublicURL string
}

// SiteConfig carries site-wide values used by metadata builders.
type SiteConfig struct {
	Name    string
	BaseURL string
}

// Features toggles module functionality.
type Features struct {
	Analytics bool
	SEO       bool
	Markdown  bool
	Logger    bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for local development: memory
// backed storage and assets, logging at info.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Storage: StorageConfig{
			Provider: "memory",
		},
		Assets: AssetsConfig{
			Provider: "memory",
		},
		Features: Features{
			Analytics: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch cfg.Storage.Provider {
	case "", "memory":
	case "bun":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrDatabaseDSNRequired
		}
	default:
		return ErrStorageProviderUnknown
	}

	switch cfg.Assets.Provider {
	case "", "memory":
	case "s3":
		if strings.TrimSpace(cfg.Assets.Bucket) == "" {
			return ErrAssetsBucketRequired
		}
	default:
		return ErrAssetsProviderUnknown
	}

	if cfg.Features.SEO && strings.TrimSpace(cfg.Site.BaseURL) == "" {
		return ErrSiteBaseURLRequired
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return ErrLoggingLevelInvalid
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "", "json", "console", "pretty", "text":
	default:
		return ErrLoggingFormatInvalid
	}

	return nil
}
