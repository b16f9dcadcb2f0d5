package ir

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58/base58"
)

// IdentitySize is the width of an Identity in bytes.
const IdentitySize = 32

// MaxSeedLen bounds the seed accepted by DeriveAddress.
const MaxSeedLen = 32

var (
	ErrInvalidIdentity = errors.New("ir: invalid identity")
	ErrSeedTooLong     = errors.New("ir: seed too long")
)

// Identity is an opaque fixed-width token naming who may act on a record,
// or naming the record itself. Its text form is base58.
type Identity [IdentitySize]byte

// ProgramID identifies this program when deriving seeded account addresses.
var ProgramID = NamedIdentity("calculator/program")

// ParseIdentity decodes the base58 text form of an Identity.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	if s == "" {
		return id, fmt.Errorf("%w: empty", ErrInvalidIdentity)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if len(raw) != IdentitySize {
		return id, fmt.Errorf("%w: decoded %d bytes, want %d", ErrInvalidIdentity, len(raw), IdentitySize)
	}
	copy(id[:], raw)
	return id, nil
}

// MustParseIdentity is like ParseIdentity but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

// NamedIdentity derives a stable identity from a human-readable name.
// Scenario files and fixtures refer to callers and owners by name.
func NamedIdentity(name string) Identity {
	return Identity(sha256.Sum256([]byte("calculator/identity/v1\x00" + name)))
}

// DeriveAddress computes the address of an account created from a base
// identity and a seed on behalf of owner: SHA256(base || seed || owner).
func DeriveAddress(base Identity, seed string, owner Identity) (Identity, error) {
	if len(seed) > MaxSeedLen {
		return Identity{}, fmt.Errorf("%w: %d bytes, max %d", ErrSeedTooLong, len(seed), MaxSeedLen)
	}
	h := sha256.New()
	h.Write(base[:])
	h.Write([]byte(seed))
	h.Write(owner[:])

	var id Identity
	copy(id[:], h.Sum(nil))
	return id, nil
}

// String returns the base58 form.
func (id Identity) String() string {
	return base58.Encode(id[:])
}

// IsZero reports whether every byte of the identity is zero.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
