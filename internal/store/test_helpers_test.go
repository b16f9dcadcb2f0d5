package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/calculator/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestAccount inserts an account owned by the named identity.
func createTestAccount(t *testing.T, s *Store, name, owner string, data []byte, seq int64) ir.Account {
	t.Helper()
	acct := ir.Account{
		Key:        ir.NamedIdentity(name),
		Owner:      ir.NamedIdentity(owner),
		Data:       data,
		Initial:    data,
		CreatedSeq: seq,
	}
	if err := s.CreateAccount(context.Background(), acct); err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acct
}

// createTestInvocation creates a log record with minimal required fields.
func createTestInvocation(acct ir.Account, caller string, seq int64, before, after []byte, outcome ir.Outcome) ir.Invocation {
	inv := ir.Invocation{
		FlowToken:     "test-flow",
		Seq:           seq,
		Account:       acct.Key,
		Caller:        ir.NamedIdentity(caller),
		Instruction:   []byte{1, 5, 0, 0, 0},
		Before:        before,
		After:         after,
		Outcome:       outcome,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	inv.ID = ir.MustInvocationID(inv)
	return inv
}
