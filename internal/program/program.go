package program

import (
	"log/slog"

	"github.com/roach88/calculator/internal/calc"
	"github.com/roach88/calculator/internal/codec"
	"github.com/roach88/calculator/internal/guard"
	"github.com/roach88/calculator/internal/ir"
)

// Handler transitions one record. owner is the identity paired with the
// record, caller is the identity presenting the instruction.
type Handler func(owner, caller ir.Identity, state, instruction []byte) ([]byte, error)

var _ Handler = Handle

// Handle runs the full pipeline. Any failure aborts before a new state is
// produced.
func Handle(owner, caller ir.Identity, state, instruction []byte) ([]byte, error) {
	if err := guard.Authorize(owner, caller); err != nil {
		return nil, &Error{Kind: KindAuthorization, Stage: "authorize", Err: err}
	}

	rec, err := codec.DecodeState(state)
	if err != nil {
		return nil, &Error{Kind: KindDecoding, Stage: "decode state", Err: err}
	}

	op, err := codec.DecodeOperation(instruction)
	if err != nil {
		return nil, &Error{Kind: KindDecoding, Stage: "decode instruction", Err: err}
	}

	next, err := calc.Apply(rec.Value, op)
	if err != nil {
		return nil, &Error{Kind: KindEvaluation, Stage: "apply " + op.Kind.String(), Err: err}
	}

	return codec.EncodeState(ir.StateRecord{Value: next}), nil
}

// Traced wraps next with advisory debug logging. The log output carries no
// meaning for callers; results and errors pass through unchanged.
func Traced(next Handler, logger *slog.Logger) Handler {
	return func(owner, caller ir.Identity, state, instruction []byte) ([]byte, error) {
		logger.Debug("calculating the operation",
			"owner", owner,
			"caller", caller,
			"state_len", len(state),
			"instruction_len", len(instruction))

		if op, err := codec.DecodeOperation(instruction); err == nil {
			logger.Debug("instruction decoded", "operation", op.String())
		}

		out, err := next(owner, caller, state, instruction)
		if err != nil {
			kind, _ := KindOf(err)
			logger.Debug("instruction rejected", "kind", string(kind), "error", err)
			return nil, err
		}

		if rec, decErr := codec.DecodeState(out); decErr == nil {
			logger.Debug("value is now", "value", rec.Value)
		}
		return out, nil
	}
}
