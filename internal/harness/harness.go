package harness

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/roach88/calculator/internal/engine"
	"github.com/roach88/calculator/internal/ir"
	"github.com/roach88/calculator/internal/program"
	"github.com/roach88/calculator/internal/store"
	"github.com/roach88/calculator/internal/testutil"
)

// Harness holds the per-scenario execution state.
type Harness struct {
	store    *store.Store
	engine   *engine.Engine
	logger   *slog.Logger
	accounts map[string]ir.Identity // scenario name → slot key
	names    map[ir.Identity]string // identity → scenario name, for traces
}

// AccountKey derives the slot key for a scenario account. It mirrors
// `calculator init <name> --owner <owner>`.
func AccountKey(owner, name string) (ir.Identity, error) {
	return ir.DeriveAddress(ir.NamedIdentity(owner), name, ir.ProgramID)
}

// Run executes a scenario against the real engine and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create accounts in declaration order
//  2. Execute steps, checking expect clauses
//  3. Evaluate assertions
//  4. Collect final values
//
// A failed expectation is recorded in the Result; the returned error is
// reserved for problems running the scenario at all.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, testutil.DiscardLogger())
}

// RunWithLogger is Run with program diagnostics sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	eng, err := engine.New(ctx, st, program.Traced(program.Handle, logger),
		engine.WithClock(engine.NewClock()),
		engine.WithFlowGenerator(testutil.NewFixedFlowGenerator(scenario.FlowToken)),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store:    st,
		engine:   eng,
		logger:   logger,
		accounts: make(map[string]ir.Identity),
		names:    make(map[ir.Identity]string),
	}

	result := NewResult()
	if err := h.createAccounts(ctx, scenario.Accounts); err != nil {
		return nil, fmt.Errorf("failed to create accounts: %w", err)
	}
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	actx := &AssertionContext{
		Ctx:      ctx,
		Engine:   eng,
		Accounts: h.accounts,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	for _, a := range scenario.Accounts {
		value, err := finalValue(ctx, eng, h.accounts[a.Name])
		if err != nil {
			return nil, err
		}
		result.Values[a.Name] = value
	}
	return result, nil
}

func (h *Harness) createAccounts(ctx context.Context, accounts []AccountSetup) error {
	for _, a := range accounts {
		key, err := AccountKey(a.Owner, a.Name)
		if err != nil {
			return fmt.Errorf("account %q: %w", a.Name, err)
		}
		if _, err := h.engine.CreateAccount(ctx, key, ir.NamedIdentity(a.Owner), a.Value); err != nil {
			return fmt.Errorf("account %q: %w", a.Name, err)
		}
		h.accounts[a.Name] = key
		h.names[key] = a.Name
	}
	return nil
}

func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		instr, err := step.Instruction()
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		key, ok := h.accounts[step.Account]
		if !ok {
			return fmt.Errorf("steps[%d]: unknown account %q", i, step.Account)
		}

		receipt, execErr := h.engine.Execute(ctx, engine.Request{
			Account:     key,
			Caller:      ir.NamedIdentity(step.Caller),
			Instruction: instr,
		})
		if execErr != nil && receipt.Invocation.ID == "" {
			// Not logged, so the engine itself failed.
			return fmt.Errorf("steps[%d]: %w", i, execErr)
		}

		inv := receipt.Invocation
		result.AddTrace(TraceEvent{
			Seq:         inv.Seq,
			Account:     step.Account,
			Caller:      step.Caller,
			Instruction: hex.EncodeToString(inv.Instruction),
			Before:      hex.EncodeToString(inv.Before),
			After:       hex.EncodeToString(inv.After),
			Outcome:     string(inv.Outcome),
		})

		if msg := checkExpect(i, step.Expect, receipt, execErr); msg != "" {
			result.AddError(msg)
		}
	}
	return nil
}

// checkExpect returns a failure message, or "" if the expectation held.
func checkExpect(index int, expect *Expect, receipt engine.Receipt, execErr error) string {
	if expect == nil {
		return ""
	}
	outcome := receipt.Invocation.Outcome

	if expect.Error != "" {
		if string(outcome) != expect.Error {
			return fmt.Sprintf("steps[%d]: expected %s error, got outcome %s", index, expect.Error, outcome)
		}
		return ""
	}

	if execErr != nil {
		return fmt.Sprintf("steps[%d]: expected success, got %v", index, execErr)
	}
	if expect.Value != nil {
		got, err := receipt.Value()
		if err != nil {
			return fmt.Sprintf("steps[%d]: decode result: %v", index, err)
		}
		if got != *expect.Value {
			return fmt.Sprintf("steps[%d]: expected value %d, got %d", index, *expect.Value, got)
		}
	}
	return ""
}
