package lakes

import (
	"errors"
	"fmt"
)

// The pipeline distinguishes four failure kinds. SourceUnavailable and
// WriteFailure are fatal; WriteFailure is safe to retry by rerunning the
// whole job since every write replaces its partition wholesale.
// SchemaMismatch is recoverable by skip-and-count unless the run is
// configured strict. DependencyOrder always indicates a driver bug.

// SourceUnavailableError means an input location could not be enumerated or
// read at all, as opposed to holding records we cannot parse.
type SourceUnavailableError struct {
	Location string
	Err      error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source unavailable at %s: %v", e.Location, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// SchemaMismatchError means a single record could not be parsed or coerced
// into the expected raw schema. Kind names the record kind ("song" or
// "log"), Reason says which field was at fault.
type SchemaMismatchError struct {
	Kind   string
	Reason string
	Err    error
}

func (e *SchemaMismatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s record does not match schema: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s record does not match schema: %s", e.Kind, e.Reason)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// WriteFailureError means a destination was unreachable, or a partial write
// could not be cleaned up. Key is the object or partition the writer was
// working on.
type WriteFailureError struct {
	Key string
	Err error
}

func (e *WriteFailureError) Error() string {
	return fmt.Sprintf("write failed at %s: %v", e.Key, e.Err)
}

func (e *WriteFailureError) Unwrap() error { return e.Err }

// DependencyOrderError means a stage ran before the stages it depends on,
// e.g. the fact build before the catalog dimensions were built.
type DependencyOrderError struct {
	Stage   string
	Missing string
}

func (e *DependencyOrderError) Error() string {
	return fmt.Sprintf("dependency order violation: stage %s requires %s", e.Stage, e.Missing)
}

// IsSourceUnavailable reports whether any error in err's chain is a
// SourceUnavailableError. The predicates below see through both stdlib and
// pkg/errors wrapping.
func IsSourceUnavailable(err error) bool {
	var e *SourceUnavailableError
	return errors.As(err, &e)
}

// IsSchemaMismatch reports whether any error in err's chain is a
// SchemaMismatchError.
func IsSchemaMismatch(err error) bool {
	var e *SchemaMismatchError
	return errors.As(err, &e)
}

// IsWriteFailure reports whether any error in err's chain is a
// WriteFailureError.
func IsWriteFailure(err error) bool {
	var e *WriteFailureError
	return errors.As(err, &e)
}

// IsDependencyOrder reports whether any error in err's chain is a
// DependencyOrderError.
func IsDependencyOrder(err error) bool {
	var e *DependencyOrderError
	return errors.As(err, &e)
}
