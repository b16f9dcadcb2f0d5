package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a host-side failure around an invocation, as
// opposed to the program rejecting it.
//
// Runtime errors include:
//   - Account not found: the requested slot does not exist
//   - Stale state: the slot changed between read and commit
//   - Replay divergence: re-execution did not reproduce the log
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Account identifies the affected slot (base58).
	Account string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeAccountNotFound indicates the requested slot does not exist.
	ErrCodeAccountNotFound RuntimeErrorCode = "ACCOUNT_NOT_FOUND"

	// ErrCodeStaleState indicates a concurrent writer changed the slot.
	ErrCodeStaleState RuntimeErrorCode = "STALE_STATE"

	// ErrCodeReplayDiverged indicates replay did not reproduce the log.
	ErrCodeReplayDiverged RuntimeErrorCode = "REPLAY_DIVERGED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Account != "" {
		msg = fmt.Sprintf("%s (account=%s)", msg, e.Account)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsNotFoundError returns true if the account does not exist.
// Uses errors.As to handle wrapped errors.
func IsNotFoundError(err error) bool {
	return hasCode(err, ErrCodeAccountNotFound)
}

// IsStaleStateError returns true if the slot changed underneath a commit.
func IsStaleStateError(err error) bool {
	return hasCode(err, ErrCodeStaleState)
}

// IsReplayError returns true if replay diverged from the log.
func IsReplayError(err error) bool {
	return hasCode(err, ErrCodeReplayDiverged)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
