// Package validation implements the workflow document validation pipeline:
// version migration, structural schema checks, cross-reference checks
// against node templates, and resource access checks.
package validation

import (
	"errors"
	"fmt"
)

// Kind classifies a validation failure. The set is closed so orchestrators
// can switch over it exhaustively to pick user-facing behavior.
type Kind string

const (
	KindMissingInput   Kind = "missing_input"
	KindMalformedInput Kind = "malformed_input"
	KindVersion        Kind = "unrecognized_version"
	KindMigration      Kind = "migration_failed"
	KindSchema         Kind = "schema_violation"
	KindUnknown        Kind = "unknown"
)

// Sentinel causes carried inside classified errors.
var (
	ErrNoInput         = errors.New("neither workflow nor graph input present")
	ErrNoMigrationPath = errors.New("no migration registered for version")
)

// Error is a classified validation failure.
type Error struct {
	Kind     Kind
	Version  string // set for version and migration failures
	Path     string // set for schema violations: JSON path of the offending value
	Expected string // set for schema violations: the expected shape
	Message  string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}

	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// KindOf extracts the failure kind from err. Errors that did not originate
// in this package map to KindUnknown.
func KindOf(err error) Kind {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Kind
	}

	return KindUnknown
}

// IsMissingInputError reports whether err means no input was supplied.
func IsMissingInputError(err error) bool {
	return KindOf(err) == KindMissingInput
}

// IsMalformedInputError reports whether err means the input was not
// parseable.
func IsMalformedInputError(err error) bool {
	return KindOf(err) == KindMalformedInput
}

// IsVersionError reports whether err means the document version is not
// recognized.
func IsVersionError(err error) bool {
	return KindOf(err) == KindVersion
}

// IsMigrationError reports whether err means a recognized version could not
// be migrated to the current one.
func IsMigrationError(err error) bool {
	return KindOf(err) == KindMigration
}

// IsSchemaError reports whether err means the document violates the current
// structural schema or its cross-references.
func IsSchemaError(err error) bool {
	return KindOf(err) == KindSchema
}

// NewMissingInputError reports that neither input shape was present.
func NewMissingInputError() *Error {
	return &Error{Kind: KindMissingInput, Err: ErrNoInput}
}

// NewMalformedInputError wraps a parse failure of the raw input.
func NewMalformedInputError(err error) *Error {
	return &Error{Kind: KindMalformedInput, Message: "input is not valid JSON", Err: err}
}

// NewVersionError reports an unrecognized document version.
func NewVersionError(version string) *Error {
	return &Error{
		Kind:    KindVersion,
		Version: version,
		Message: fmt.Sprintf("workflow version %q is not recognized", version),
	}
}

// NewMigrationError reports that migration away from a recognized version
// failed.
func NewMigrationError(version string, err error) *Error {
	return &Error{
		Kind:    KindMigration,
		Version: version,
		Message: fmt.Sprintf("failed to migrate workflow from version %q", version),
		Err:     err,
	}
}

// NewSchemaError reports a structural or cross-reference violation at the
// given document path.
func NewSchemaError(path, expected string) *Error {
	return &Error{
		Kind:     KindSchema,
		Path:     path,
		Expected: expected,
		Message:  fmt.Sprintf("%s: %s", path, expected),
	}
}

// NewUnknownError wraps an unclassifiable failure.
func NewUnknownError(err error) *Error {
	return &Error{Kind: KindUnknown, Message: "unknown error validating workflow", Err: err}
}
