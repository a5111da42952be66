package folio

import "github.com/goliatone/go-folio/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown = runtimeconfig.ErrStorageProviderUnknown
	ErrAssetsProviderUnknown  = runtimeconfig.ErrAssetsProviderUnknown
	ErrAssetsBucketRequired   = runtimeconfig.ErrAssetsBucketRequired
	ErrSiteBaseURLRequired    = runtimeconfig.ErrSiteBaseURLRequired
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
	ErrDatabaseDSNRequired    = runtimeconfig.ErrDatabaseDSNRequired
)

type (
	Config        = runtimeconfig.Config
	StorageConfig = runtimeconfig.StorageConfig
	AssetsConfig  = runtimeconfig.AssetsConfig
	SiteConfig    = runtimeconfig.SiteConfig
	Features      = runtimeconfig.Features
	LoggingConfig = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
