// Package errors provides structured error handling for wikidex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Storage errors (disk, catalog, version artifacts)
//   - 3XX: Embedding errors (model load, inference)
//   - 4XX: Query errors (malformed input, always recovered locally)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates disk and catalog I/O errors.
	CategoryStorage Category = "STORAGE"
	// CategoryEmbedding indicates embedding model errors.
	CategoryEmbedding Category = "EMBEDDING"
	// CategoryQuery indicates query validation errors.
	CategoryQuery Category = "QUERY"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort the operation.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the process can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Storage errors (200-299)
	ErrCodeVersionNotFound  = "ERR_201_VERSION_NOT_FOUND"
	ErrCodeVersionCorrupt   = "ERR_202_VERSION_CORRUPT"
	ErrCodePublishFailed    = "ERR_203_PUBLISH_FAILED"
	ErrCodeCatalogFailed    = "ERR_204_CATALOG_FAILED"
	ErrCodeMatrixCorrupt    = "ERR_205_MATRIX_CORRUPT"
	ErrCodeStorageFailed    = "ERR_206_STORAGE_FAILED"
	ErrCodeBuildInterrupted = "ERR_207_BUILD_INTERRUPTED"

	// Embedding errors (300-399)
	ErrCodeEmbedderUnavailable = "ERR_301_EMBEDDER_UNAVAILABLE"
	ErrCodeEmbedFailed         = "ERR_302_EMBED_FAILED"

	// Query errors (400-499)
	ErrCodeInvalidQuery   = "ERR_401_INVALID_QUERY"
	ErrCodeInvalidVersion = "ERR_402_INVALID_VERSION"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode derives the error category from the code prefix.
func categoryFromCode(code string) Category {
	if len(code) < 5 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '3':
		return CategoryEmbedding
	case '4':
		return CategoryQuery
	default:
		return CategoryInternal
	}
}

// severityFromCode derives severity from the code.
// Publish failures are fatal for the build: a partially written version must
// never be registered as valid. Embedding errors only degrade search.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodePublishFailed, ErrCodeCatalogFailed:
		return SeverityFatal
	case ErrCodeEmbedderUnavailable, ErrCodeInvalidQuery:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode reports whether an operation hitting this code may be retried.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeStorageFailed, ErrCodeEmbedFailed, ErrCodeBuildInterrupted:
		return true
	default:
		return false
	}
}
