// Package errors provides structured error handling for the catalog.
// Every failure that crosses the operations boundary is a *CatalogError whose
// Kind tells callers which of the documented failure modes occurred.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a catalog failure.
type Kind string

const (
	// KindNotFound indicates an expected row is absent
	KindNotFound Kind = "not_found"
	// KindIntegrityFailure indicates a uniqueness constraint would be violated
	KindIntegrityFailure Kind = "integrity_failure"
	// KindConstraintFailure indicates a value-range constraint would be violated
	KindConstraintFailure Kind = "constraint_failure"
	// KindTypeError indicates a range was coerced to a scalar or a criterion had the wrong type
	KindTypeError Kind = "type_error"
	// KindUnrecognizedOldVersion indicates there is no migrator for a saved version
	KindUnrecognizedOldVersion Kind = "unrecognized_old_version"
	// KindMigrationCheckFailure indicates a migration self-check disagreed
	KindMigrationCheckFailure Kind = "migration_check_failure"
	// KindValidation indicates malformed caller input
	KindValidation Kind = "validation"
	// KindInternal indicates storage or filesystem failures
	KindInternal Kind = "internal"
)

// Sentinel errors for common scenarios
var (
	ErrNotFound               = errors.New("not found")
	ErrIntegrityFailure       = errors.New("integrity failure")
	ErrConstraintFailure      = errors.New("constraint failure")
	ErrNotScalar              = errors.New("range integer is not a scalar")
	ErrUnrecognizedOldVersion = errors.New("unrecognized old version")
	ErrMigrationCheckFailure  = errors.New("migration check failure")
	ErrInvalidInput           = errors.New("invalid input")
)

var kindSentinels = map[Kind]error{
	KindNotFound:               ErrNotFound,
	KindIntegrityFailure:       ErrIntegrityFailure,
	KindConstraintFailure:      ErrConstraintFailure,
	KindTypeError:              ErrNotScalar,
	KindUnrecognizedOldVersion: ErrUnrecognizedOldVersion,
	KindMigrationCheckFailure:  ErrMigrationCheckFailure,
	KindValidation:             ErrInvalidInput,
}

// CatalogError provides structured error information with context
type CatalogError struct {
	Kind    Kind                   // Error classification
	Op      string                 // Operation that failed (e.g. "add_movie")
	Err     error                  // Underlying error
	Details map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *CatalogError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s in %s: %v", e.Kind, e.Op, e.Err)
	}

	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
	}
	return fmt.Sprintf("%s in %s [%s]: %v", e.Kind, e.Op, strings.Join(parts, " "), e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is matches the kind's sentinel as well as anything in the wrapped chain,
// so errors.Is(err, ErrNotFound) holds for every not_found error.
func (e *CatalogError) Is(target error) bool {
	if sentinel, ok := kindSentinels[e.Kind]; ok && sentinel == target {
		return true
	}
	return errors.Is(e.Err, target)
}

// New creates a new CatalogError
func New(kind Kind, op string, err error) *CatalogError {
	return &CatalogError{
		Kind:    kind,
		Op:      op,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// WithDetail adds a key-value detail to the error
func (e *CatalogError) WithDetail(key string, value interface{}) *CatalogError {
	e.Details[key] = value
	return e
}

// NotFound creates a not_found error
func NotFound(op string, err error) *CatalogError {
	return New(KindNotFound, op, err)
}

// IntegrityFailure creates an integrity_failure error
func IntegrityFailure(op string, err error) *CatalogError {
	return New(KindIntegrityFailure, op, err)
}

// ConstraintFailure creates a constraint_failure error
func ConstraintFailure(op string, err error) *CatalogError {
	return New(KindConstraintFailure, op, err)
}

// TypeError creates a type_error error
func TypeError(op string, err error) *CatalogError {
	return New(KindTypeError, op, err)
}

// UnrecognizedOldVersion creates an unrecognized_old_version error
func UnrecognizedOldVersion(op, version string) *CatalogError {
	return New(KindUnrecognizedOldVersion, op,
		fmt.Errorf("%w: %q", ErrUnrecognizedOldVersion, version)).WithDetail("version", version)
}

// MigrationCheckFailure creates a migration_check_failure error
func MigrationCheckFailure(op, check string, want, got int) *CatalogError {
	return New(KindMigrationCheckFailure, op,
		fmt.Errorf("%w: %s expected %d, got %d", ErrMigrationCheckFailure, check, want, got)).
		WithDetail("check", check)
}

// ValidationError creates a validation error
func ValidationError(op string, err error) *CatalogError {
	return New(KindValidation, op, err)
}

// InternalError creates an internal error
func InternalError(op string, err error) *CatalogError {
	return New(KindInternal, op, err)
}

// Wrap wraps an error with operation context if it's not already a CatalogError
func Wrap(err error, kind Kind, op string) error {
	if err == nil {
		return nil
	}

	var cErr *CatalogError
	if errors.As(err, &cErr) {
		return err
	}

	return New(kind, op, err)
}

// KindOf extracts the kind from an error
func KindOf(err error) Kind {
	var cErr *CatalogError
	if errors.As(err, &cErr) {
		return cErr.Kind
	}
	return KindInternal
}

// OperationOf extracts the operation from an error
func OperationOf(err error) string {
	var cErr *CatalogError
	if errors.As(err, &cErr) {
		return cErr.Op
	}
	return "unknown"
}

func IsNotFound(err error) bool          { return errors.Is(err, ErrNotFound) }
func IsIntegrityFailure(err error) bool  { return errors.Is(err, ErrIntegrityFailure) }
func IsConstraintFailure(err error) bool { return errors.Is(err, ErrConstraintFailure) }
func IsTypeError(err error) bool         { return KindOf(err) == KindTypeError }
