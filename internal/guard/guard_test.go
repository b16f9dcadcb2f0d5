package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/calculator/internal/ir"
)

func TestAuthorizeSameIdentity(t *testing.T) {
	alice := ir.NamedIdentity("alice")
	assert.NoError(t, Authorize(alice, alice))
}

func TestAuthorizeZeroIdentities(t *testing.T) {
	assert.NoError(t, Authorize(ir.Identity{}, ir.Identity{}))
}

func TestAuthorizeMismatch(t *testing.T) {
	names := []string{"alice", "bob", "carol", "program"}

	for _, a := range names {
		for _, b := range names {
			if a == b {
				continue
			}
			err := Authorize(ir.NamedIdentity(a), ir.NamedIdentity(b))
			assert.ErrorIs(t, err, ErrIncorrectOwner, "%s vs %s", a, b)
		}
	}
}

func TestAuthorizeSingleBitDifference(t *testing.T) {
	owner := ir.NamedIdentity("alice")

	for i := 0; i < ir.IdentitySize; i++ {
		caller := owner
		caller[i] ^= 0x01
		assert.ErrorIs(t, Authorize(owner, caller), ErrIncorrectOwner, "byte %d", i)
	}
}
