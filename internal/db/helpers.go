package db

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"madchef/internal/domain"
)

// MySQL server error numbers this package reacts to.
const (
	errDuplicateEntry  = 1062
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

func mysqlNumber(err error) uint16 {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number
	}
	return 0
}

// IsDuplicate reports a unique key violation.
func IsDuplicate(err error) bool {
	return mysqlNumber(err) == errDuplicateEntry
}

// IsTransient reports errors worth retrying a whole transaction for.
func IsTransient(err error) bool {
	switch mysqlNumber(err) {
	case errDeadlock, errLockWaitTimeout:
		return true
	}
	return false
}

// Classify maps store errors onto domain errors. Errors that already carry a
// domain kind pass through unchanged.
func Classify(resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case domain.IsNotFound(err), domain.IsValidation(err), domain.IsConflict(err),
		domain.IsForbidden(err), domain.IsUnauthorized(err), domain.IsInternal(err):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundError{Resource: resource, Err: err}
	case IsDuplicate(err):
		return domain.ConflictError{Resource: resource, Err: err}
	default:
		return domain.InternalError{Msg: resource + " store error", Err: err}
	}
}

// NullIfEmpty stores empty optional strings as NULL.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
