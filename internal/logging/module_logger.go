package logging

import (
	"context"

	"github.com/goliatone/go-folio/pkg/interfaces"
)

const (
	rootModule      = "folio"
	storeModule     = "folio.store"
	blogsModule     = "folio.blogs"
	resumeModule    = "folio.resume"
	assetsModule    = "folio.assets"
	analyticsModule = "folio.analytics"
	seedModule      = "folio.seed"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// StoreLogger returns the logger namespace reserved for the document store.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// BlogsLogger returns the logger namespace reserved for the blog service.
func BlogsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, blogsModule)
}

// ResumeLogger returns the logger namespace reserved for the resume service.
func ResumeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resumeModule)
}

// AssetsLogger returns the logger namespace reserved for object storage.
func AssetsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, assetsModule)
}

// AnalyticsLogger returns the logger namespace reserved for event recording.
func AnalyticsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, analyticsModule)
}

// SeedLogger returns the logger namespace reserved for seed imports.
func SeedLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, seedModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so call sites never need nil checks.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

// NoOpProvider returns a provider whose loggers drop every entry.
func NoOpProvider() interfaces.LoggerProvider {
	return noopProvider{}
}

type noopProvider struct{}

var _ interfaces.LoggerProvider = noopProvider{}

func (noopProvider) GetLogger(string) interfaces.Logger { return noopLogger{} }

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
