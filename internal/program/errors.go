package program

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes why an invocation was rejected.
type ErrorKind string

const (
	// KindAuthorization indicates the caller does not control the record.
	KindAuthorization ErrorKind = "authorization"

	// KindDecoding indicates malformed, truncated or over-length state or
	// instruction bytes, or an unrecognized discriminant.
	KindDecoding ErrorKind = "decoding"

	// KindEvaluation indicates an arithmetic precondition failed.
	KindEvaluation ErrorKind = "evaluation"
)

// Error is returned by Handle when any stage fails.
// The cause is reachable with errors.Is (e.g. codec.ErrTruncatedInput).
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Stage names the pipeline step that failed.
	Stage string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from err.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) (ErrorKind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// IsAuthorizationError returns true if the caller was not authorized.
func IsAuthorizationError(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindAuthorization
}

// IsDecodingError returns true if state or instruction bytes were malformed.
func IsDecodingError(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindDecoding
}

// IsEvaluationError returns true if the arithmetic itself failed.
func IsEvaluationError(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindEvaluation
}
