package engine

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/roach88/calculator/internal/ir"
)

// Replay re-executes an account's invocation log and checks that it
// reproduces what was recorded.
//
// Replay starts from the slot's initial bytes and walks the log in seq order.
// For each entry it verifies the recorded before-state and ID, calls the
// handler, and compares the outcome and after-state. Rejected entries leave
// the running state as it was, just as they did originally. Finally the
// running state must equal the slot's current data.
//
// Replay never writes to the store. A divergence is reported in the result,
// not as an error; the error return is reserved for storage failures.
func (e *Engine) Replay(ctx context.Context, key ir.Identity) (*ReplayResult, error) {
	acct, err := e.Account(ctx, key)
	if err != nil {
		return nil, err
	}

	log, err := e.store.ReadInvocations(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("engine: replay: %w", err)
	}

	result := &ReplayResult{Account: key}
	current := bytes.Clone(acct.Initial)

	for _, inv := range log {
		result.Steps++

		if !bytes.Equal(inv.Before, current) {
			result.diverge(inv.Seq, "before", hex.EncodeToString(inv.Before), hex.EncodeToString(current))
		}

		recomputed := inv
		recomputed.Before = current
		id, err := ir.InvocationID(recomputed)
		if err != nil {
			return nil, fmt.Errorf("engine: replay seq %d: %w", inv.Seq, err)
		}
		if id != inv.ID {
			result.diverge(inv.Seq, "id", inv.ID, id)
		}

		after, handleErr := e.handler(acct.Owner, inv.Caller, bytes.Clone(current), inv.Instruction)
		outcome := ir.OutcomeOK
		if handleErr != nil {
			outcome = outcomeOf(handleErr)
			after = current
		}

		if outcome != inv.Outcome {
			result.diverge(inv.Seq, "outcome", string(inv.Outcome), string(outcome))
		}
		if !bytes.Equal(after, inv.After) {
			result.diverge(inv.Seq, "after", hex.EncodeToString(inv.After), hex.EncodeToString(after))
		}

		current = after
	}

	result.Final = current
	if !bytes.Equal(current, acct.Data) {
		result.diverge(0, "data", hex.EncodeToString(acct.Data), hex.EncodeToString(current))
	}

	e.logger.Debug("replay finished",
		"account", key.String(),
		"steps", result.Steps,
		"mismatches", len(result.Mismatches))
	return result, nil
}

// ReplayResult summarizes one replay run.
type ReplayResult struct {
	Account    ir.Identity `json:"account"`
	Steps      int         `json:"steps"`
	Final      []byte      `json:"final"`
	Mismatches []Mismatch  `json:"mismatches,omitempty"`
}

// Mismatch is one difference between the log and re-execution.
// Seq 0 refers to the slot itself rather than a log entry.
type Mismatch struct {
	Seq      int64  `json:"seq"`
	Field    string `json:"field"`
	Recorded string `json:"recorded"`
	Replayed string `json:"replayed"`
}

// Deterministic reports whether replay reproduced the log exactly.
func (r *ReplayResult) Deterministic() bool {
	return len(r.Mismatches) == 0
}

// Err returns a REPLAY_DIVERGED RuntimeError describing the first mismatch,
// or nil when replay was deterministic.
func (r *ReplayResult) Err() error {
	if r.Deterministic() {
		return nil
	}
	m := r.Mismatches[0]
	return &RuntimeError{
		Code: ErrCodeReplayDiverged,
		Message: fmt.Sprintf("%d mismatch(es), first at seq %d: %s recorded %q, replayed %q",
			len(r.Mismatches), m.Seq, m.Field, m.Recorded, m.Replayed),
		Account: r.Account.String(),
	}
}

func (r *ReplayResult) diverge(seq int64, field, recorded, replayed string) {
	r.Mismatches = append(r.Mismatches, Mismatch{
		Seq:      seq,
		Field:    field,
		Recorded: recorded,
		Replayed: replayed,
	})
}
