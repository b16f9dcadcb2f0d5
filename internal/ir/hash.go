package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainInvocation = "calculator/invocation/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InvocationID computes the content-addressed ID of an invocation.
//
// The ID covers what was asked (account, caller, instruction), the state it
// was asked against, and its position in the log. It excludes the outcome so
// that replay can recompute it before re-executing.
func InvocationID(inv Invocation) (string, error) {
	obj := map[string]any{
		"flow_token":  inv.FlowToken,
		"seq":         inv.Seq,
		"account":     inv.Account.String(),
		"caller":      inv.Caller.String(),
		"instruction": hex.EncodeToString(inv.Instruction),
		"before":      hex.EncodeToString(inv.Before),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("InvocationID: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainInvocation, canonical), nil
}

// MustInvocationID is like InvocationID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustInvocationID(inv Invocation) string {
	id, err := InvocationID(inv)
	if err != nil {
		panic(err)
	}
	return id
}
