package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/roach88/calculator/internal/ir"
)

func TestReadAccount_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadAccount(context.Background(), createTestAccountKey("missing"))
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("ReadAccount() = %v, want ErrAccountNotFound", err)
	}
}

func TestReadInvocation_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadInvocation(context.Background(), "nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("ReadInvocation() = %v, want sql.ErrNoRows", err)
	}
}

func TestListAccounts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts() failed: %v", err)
	}
	if accounts == nil || len(accounts) != 0 {
		t.Fatalf("empty store should return empty non-nil slice, got %v", accounts)
	}

	createTestAccount(t, s, "second", "alice", []byte{2, 0, 0, 0}, 2)
	createTestAccount(t, s, "first", "alice", []byte{1, 0, 0, 0}, 1)

	accounts, err = s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts() failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(accounts))
	}
	if accounts[0].Key != createTestAccountKey("first") || accounts[1].Key != createTestAccountKey("second") {
		t.Error("accounts must be ordered by created_seq")
	}
}

func TestReadInvocations_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	acct := createTestAccount(t, s, "counter", "alice", []byte{10, 0, 0, 0}, 1)
	other := createTestAccount(t, s, "other", "alice", []byte{0, 0, 0, 0}, 2)

	// Written out of order on purpose.
	for _, seq := range []int64{5, 3, 4} {
		inv := createTestInvocation(acct, "bob", seq, acct.Data, acct.Data, ir.OutcomeAuthorization)
		if err := s.WriteInvocation(ctx, inv); err != nil {
			t.Fatalf("WriteInvocation(seq=%d) failed: %v", seq, err)
		}
	}
	if err := s.WriteInvocation(ctx, createTestInvocation(other, "bob", 6, other.Data, other.Data, ir.OutcomeAuthorization)); err != nil {
		t.Fatalf("WriteInvocation(other) failed: %v", err)
	}

	invs, err := s.ReadInvocations(ctx, acct.Key)
	if err != nil {
		t.Fatalf("ReadInvocations() failed: %v", err)
	}
	if len(invs) != 3 {
		t.Fatalf("got %d invocations, want 3", len(invs))
	}
	for i, want := range []int64{3, 4, 5} {
		if invs[i].Seq != want {
			t.Errorf("invs[%d].Seq = %d, want %d", i, invs[i].Seq, want)
		}
		if invs[i].Account != acct.Key {
			t.Errorf("invs[%d] belongs to another account", i)
		}
	}

	empty, err := s.ReadInvocations(ctx, createTestAccountKey("nobody"))
	if err != nil {
		t.Fatalf("ReadInvocations() failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", empty)
	}
}

func TestCountOutcomes(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	acct := createTestAccount(t, s, "counter", "alice", []byte{10, 0, 0, 0}, 1)
	writes := []struct {
		seq     int64
		outcome ir.Outcome
	}{
		{2, ir.OutcomeAuthorization},
		{3, ir.OutcomeAuthorization},
		{4, ir.OutcomeDecoding},
	}
	for _, w := range writes {
		inv := createTestInvocation(acct, "bob", w.seq, acct.Data, acct.Data, w.outcome)
		if err := s.WriteInvocation(ctx, inv); err != nil {
			t.Fatalf("WriteInvocation() failed: %v", err)
		}
	}

	counts, err := s.CountOutcomes(ctx)
	if err != nil {
		t.Fatalf("CountOutcomes() failed: %v", err)
	}
	if counts[ir.OutcomeAuthorization] != 2 || counts[ir.OutcomeDecoding] != 1 || counts[ir.OutcomeOK] != 0 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
