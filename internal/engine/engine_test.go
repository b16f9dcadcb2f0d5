package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calculator/internal/calc"
	"github.com/roach88/calculator/internal/codec"
	"github.com/roach88/calculator/internal/ir"
	"github.com/roach88/calculator/internal/program"
	"github.com/roach88/calculator/internal/store"
	"github.com/roach88/calculator/internal/testutil"
)

var counterKey = ir.NamedIdentity("counter")

func newTestEngine(t *testing.T, s *store.Store, handler program.Handler) *Engine {
	t.Helper()
	e, err := New(context.Background(), s, handler,
		WithClock(NewClock()),
		WithFlowGenerator(testutil.NewFixedFlowGenerator("flow-test")),
		WithLogger(testutil.DiscardLogger()),
	)
	require.NoError(t, err)
	return e
}

func instruction(kind ir.OpKind, operand uint32) []byte {
	return codec.EncodeOperation(ir.Operation{Kind: kind, Operand: operand})
}

func TestNew_RejectsNilDependencies(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)

	_, err := New(ctx, nil, program.Handle)
	assert.Error(t, err)

	_, err = New(ctx, s, nil)
	assert.Error(t, err)
}

func TestExecute_AddCommits(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	e := newTestEngine(t, s, program.Handle)

	acct, err := e.CreateAccount(ctx, counterKey, testutil.Alice, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 0, 0, 0}, acct.Data)
	assert.Equal(t, int64(1), acct.CreatedSeq)

	receipt, err := e.Execute(ctx, Request{
		Account:     counterKey,
		Caller:      testutil.Alice,
		Instruction: instruction(ir.OpAdd, 5),
	})
	require.NoError(t, err)

	inv := receipt.Invocation
	assert.Equal(t, ir.OutcomeOK, inv.Outcome)
	assert.Equal(t, int64(2), inv.Seq)
	assert.Equal(t, "flow-test", inv.FlowToken)
	assert.Equal(t, []byte{10, 0, 0, 0}, inv.Before)
	assert.Equal(t, []byte{15, 0, 0, 0}, inv.After)
	assert.Equal(t, ir.MustInvocationID(inv), inv.ID)

	value, err := receipt.Value()
	require.NoError(t, err)
	assert.Equal(t, uint32(15), value)

	stored, err := s.ReadAccount(ctx, counterKey)
	require.NoError(t, err)
	assert.Equal(t, []byte{15, 0, 0, 0}, stored.Data)
	assert.Equal(t, []byte{10, 0, 0, 0}, stored.Initial)

	logged, err := s.ReadInvocation(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv, logged)
}

func TestExecute_RejectionsLeaveSlotUnchanged(t *testing.T) {
	tests := []struct {
		name        string
		caller      ir.Identity
		instruction []byte
		outcome     ir.Outcome
		check       func(error) bool
		cause       error
	}{
		{
			name:        "wrong caller",
			caller:      testutil.Bob,
			instruction: instruction(ir.OpAdd, 5),
			outcome:     ir.OutcomeAuthorization,
			check:       program.IsAuthorizationError,
		},
		{
			name:        "unknown tag",
			caller:      testutil.Alice,
			instruction: []byte{7, 0, 0, 0, 0},
			outcome:     ir.OutcomeDecoding,
			check:       program.IsDecodingError,
			cause:       codec.ErrUnknownDiscriminant,
		},
		{
			name:        "truncated instruction",
			caller:      testutil.Alice,
			instruction: []byte{1, 5},
			outcome:     ir.OutcomeDecoding,
			check:       program.IsDecodingError,
			cause:       codec.ErrTruncatedInput,
		},
		{
			name:        "divide by zero",
			caller:      testutil.Alice,
			instruction: instruction(ir.OpDivide, 0),
			outcome:     ir.OutcomeEvaluation,
			check:       program.IsEvaluationError,
			cause:       calc.ErrDivideByZero,
		},
		{
			name:        "underflow",
			caller:      testutil.Alice,
			instruction: instruction(ir.OpSubtract, 11),
			outcome:     ir.OutcomeEvaluation,
			check:       program.IsEvaluationError,
			cause:       calc.ErrUnderflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := testutil.NewStore(t)
			e := newTestEngine(t, s, program.Handle)

			_, err := e.CreateAccount(ctx, counterKey, testutil.Alice, 10)
			require.NoError(t, err)

			receipt, err := e.Execute(ctx, Request{
				Account:     counterKey,
				Caller:      tt.caller,
				Instruction: tt.instruction,
			})
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}

			inv := receipt.Invocation
			assert.Equal(t, tt.outcome, inv.Outcome)
			assert.Equal(t, inv.Before, inv.After)
			assert.Equal(t, err.Error(), inv.ErrorMessage)

			stored, err := s.ReadAccount(ctx, counterKey)
			require.NoError(t, err)
			assert.Equal(t, []byte{10, 0, 0, 0}, stored.Data)

			log, err := s.ReadInvocations(ctx, counterKey)
			require.NoError(t, err)
			require.Len(t, log, 1)
			assert.Equal(t, tt.outcome, log[0].Outcome)
		})
	}
}

func TestExecute_AccountNotFound(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testutil.NewStore(t), program.Handle)

	_, err := e.Execute(ctx, Request{
		Account:     counterKey,
		Caller:      testutil.Alice,
		Instruction: instruction(ir.OpAdd, 1),
	})
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
	assert.ErrorIs(t, err, store.ErrAccountNotFound)
}

func TestExecute_ForeignHandlerErrorLogsFailed(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	boom := errors.New("boom")
	e := newTestEngine(t, s, func(owner, caller ir.Identity, state, instruction []byte) ([]byte, error) {
		return nil, boom
	})

	_, err := e.CreateAccount(ctx, counterKey, testutil.Alice, 3)
	require.NoError(t, err)

	receipt, err := e.Execute(ctx, Request{Account: counterKey, Caller: testutil.Alice, Instruction: instruction(ir.OpAdd, 1)})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ir.OutcomeFailed, receipt.Invocation.Outcome)
}

func TestExecute_StaleStateNotCommitted(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)

	// The handler simulates a second writer landing between read and commit.
	racing := func(owner, caller ir.Identity, state, instr []byte) ([]byte, error) {
		_, err := s.DB().ExecContext(ctx, `UPDATE accounts SET data = ? WHERE key = ?`,
			[]byte{99, 0, 0, 0}, counterKey.String())
		require.NoError(t, err)
		return program.Handle(owner, caller, state, instr)
	}
	e := newTestEngine(t, s, racing)

	_, err := e.CreateAccount(ctx, counterKey, testutil.Alice, 10)
	require.NoError(t, err)

	_, err = e.Execute(ctx, Request{Account: counterKey, Caller: testutil.Alice, Instruction: instruction(ir.OpAdd, 5)})
	require.Error(t, err)
	assert.True(t, IsStaleStateError(err))

	stored, err := s.ReadAccount(ctx, counterKey)
	require.NoError(t, err)
	assert.Equal(t, []byte{99, 0, 0, 0}, stored.Data)

	log, err := s.ReadInvocations(ctx, counterKey)
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestExecute_HandlerCannotMutateStoredBytes(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	scribble := func(owner, caller ir.Identity, state, instr []byte) ([]byte, error) {
		for i := range state {
			state[i] = 0xff
		}
		return nil, errors.New("rejected after scribbling")
	}
	e := newTestEngine(t, s, scribble)

	_, err := e.CreateAccount(ctx, counterKey, testutil.Alice, 10)
	require.NoError(t, err)

	receipt, err := e.Execute(ctx, Request{Account: counterKey, Caller: testutil.Alice, Instruction: instruction(ir.OpAdd, 5)})
	require.Error(t, err)
	assert.Equal(t, []byte{10, 0, 0, 0}, receipt.Invocation.Before)
	assert.Equal(t, []byte{10, 0, 0, 0}, receipt.Invocation.After)
}

func TestCreateAccount_Duplicate(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, testutil.NewStore(t), program.Handle)

	_, err := e.CreateAccount(ctx, counterKey, testutil.Alice, 1)
	require.NoError(t, err)

	_, err = e.CreateAccount(ctx, counterKey, testutil.Bob, 2)
	assert.ErrorIs(t, err, store.ErrAccountExists)
}

func TestNew_ResumesClockFromStore(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)

	first := newTestEngine(t, s, program.Handle)
	_, err := first.CreateAccount(ctx, counterKey, testutil.Alice, 0)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := first.Execute(ctx, Request{Account: counterKey, Caller: testutil.Alice, Instruction: instruction(ir.OpAdd, 1)})
		require.NoError(t, err)
	}

	second, err := New(ctx, s, program.Handle, WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)

	receipt, err := second.Execute(ctx, Request{Account: counterKey, Caller: testutil.Alice, Instruction: instruction(ir.OpAdd, 1)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), receipt.Invocation.Seq)

	value, err := receipt.Value()
	require.NoError(t, err)
	assert.Equal(t, uint32(4), value)
}
