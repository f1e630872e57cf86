package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/fixturekit/errors"
)

// Driver errors rarely expose typed causes, so transient failures are
// recognized by message. The lists are lowercase substrings.
var (
	connectionPatterns = []string{
		"connection refused",
		"connection reset",
		"connection closed",
		"connection lost",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"network is unreachable",
		"driver: bad connection",
		"invalid connection",
	}

	transientPatterns = []string{
		"deadlock",
		"lock timeout",
		"too many connections",
		"connection pool exhausted",
	}
)

func matchesAny(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsConnectionError reports whether err looks like a lost or refused
// connection, the class of failure Open retries on.
func IsConnectionError(err error) bool {
	return matchesAny(err, connectionPatterns)
}

// IsRetryableError reports whether err is worth retrying: connection
// failures plus transient contention like deadlocks.
func IsRetryableError(err error) bool {
	return IsConnectionError(err) || matchesAny(err, transientPatterns)
}

// IsNotFoundError reports whether err is gorm's record-not-found.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a duplicate-key violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// FromDatabase translates a gorm or driver error into an AppError
// named after the resource the caller was touching. The fixture
// loaders route every save and delete failure through here.
func FromDatabase(err error, resource string) *apperrors.AppError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(resource, "").WithCause(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Newf(apperrors.ErrCodeAlreadyExists,
			"A %s with these details already exists.", resource).WithCause(err)
	case IsConnectionError(err):
		return apperrors.Wrap(apperrors.ErrCodeDatabaseError,
			"Database is temporarily unavailable. Please try again.", err)
	case IsRetryableError(err):
		return apperrors.Wrap(apperrors.ErrCodeDatabaseError,
			"Database operation failed. Please try again.", err)
	default:
		return apperrors.DatabaseError(err)
	}
}
