package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a backing service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates a failed connection to a backing service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidFormat indicates a field has an invalid format.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// Fixture errors
const (
	// ErrCodeAppNotFound indicates the named application is not registered.
	ErrCodeAppNotFound ErrorCode = "APP_NOT_FOUND"
	// ErrCodeAppPathUnresolved indicates the application has no resolvable data root.
	ErrCodeAppPathUnresolved ErrorCode = "APP_PATH_UNRESOLVED"
	// ErrCodeModelNotFound indicates a model identifier resolves to no registered model.
	ErrCodeModelNotFound ErrorCode = "MODEL_NOT_FOUND"
	// ErrCodeFormatUnknown indicates no serializer is registered for a file extension.
	ErrCodeFormatUnknown ErrorCode = "FORMAT_UNKNOWN"
	// ErrCodeFixtureUnreadable indicates a fixture file could not be opened or read.
	ErrCodeFixtureUnreadable ErrorCode = "FIXTURE_UNREADABLE"
	// ErrCodeFixtureSyntax indicates malformed fixture content.
	ErrCodeFixtureSyntax ErrorCode = "FIXTURE_SYNTAX"
	// ErrCodeFixtureNotFound indicates a fixture-backed row is absent during rollback.
	ErrCodeFixtureNotFound ErrorCode = "FIXTURE_OBJECT_NOT_FOUND"
)

// Migration errors
const (
	// ErrCodeMigrationFailed indicates a migration operation returned an error.
	ErrCodeMigrationFailed ErrorCode = "MIGRATION_FAILED"
	// ErrCodeMigrationUnknown indicates a referenced migration ID is not registered.
	ErrCodeMigrationUnknown ErrorCode = "MIGRATION_UNKNOWN"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDatabaseError indicates a database error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeDatabaseError:      true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
