package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/calculator/internal/codec"
	"github.com/roach88/calculator/internal/engine"
	"github.com/roach88/calculator/internal/ir"
)

// AssertionContext carries what assertions need to inspect final state.
type AssertionContext struct {
	Ctx      context.Context
	Engine   *engine.Engine
	Accounts map[string]ir.Identity
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s by %s: %s %s → %s\n",
			ev.Seq, ev.Account, ev.Caller, ev.Instruction, ev.Before, ev.After)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns a message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalValue:
			err = assertFinalValue(actx, a)
		case AssertOutcomeCount:
			err = assertOutcomeCount(result.Trace, a)
		case AssertReplayDeterministic:
			err = assertReplayDeterministic(actx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			var ae *AssertionError
			if errors.As(err, &ae) {
				ae.Trace = result.Trace
			}
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func assertFinalValue(actx *AssertionContext, a Assertion) error {
	got, err := finalValue(actx.Ctx, actx.Engine, actx.Accounts[a.Account])
	if err != nil {
		return err
	}
	if got != a.Value {
		return &AssertionError{
			Type:     AssertFinalValue,
			Expected: fmt.Sprintf("%s = %d", a.Account, a.Value),
			Actual:   fmt.Sprintf("%s = %d", a.Account, got),
		}
	}
	return nil
}

func assertOutcomeCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, ev := range trace {
		if ev.Outcome == a.Outcome {
			n++
		}
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertOutcomeCount,
			Expected: fmt.Sprintf("%d %s invocation(s)", a.Count, a.Outcome),
			Actual:   fmt.Sprintf("%d", n),
		}
	}
	return nil
}

func assertReplayDeterministic(actx *AssertionContext, a Assertion) error {
	res, err := actx.Engine.Replay(actx.Ctx, actx.Accounts[a.Account])
	if err != nil {
		return err
	}
	if !res.Deterministic() {
		return &AssertionError{
			Type:     AssertReplayDeterministic,
			Expected: fmt.Sprintf("replay of %s reproduces the log", a.Account),
			Actual:   res.Err().Error(),
		}
	}
	return nil
}

func finalValue(ctx context.Context, eng *engine.Engine, key ir.Identity) (uint32, error) {
	acct, err := eng.Account(ctx, key)
	if err != nil {
		return 0, err
	}
	rec, err := codec.DecodeState(acct.Data)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return rec.Value, nil
}
