// Package guard checks that the caller of an invocation is the identity
// that controls the target record.
//
// It only compares tokens. Parsing, key management and signature checks
// belong to the host.
package guard

import (
	"crypto/subtle"
	"errors"

	"github.com/roach88/calculator/internal/ir"
)

var ErrIncorrectOwner = errors.New("guard: incorrect owner")

// Authorize succeeds iff owner and caller are bit-identical.
func Authorize(owner, caller ir.Identity) error {
	if subtle.ConstantTimeCompare(owner[:], caller[:]) != 1 {
		return ErrIncorrectOwner
	}
	return nil
}
