package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/calculator/internal/codec"
	"github.com/roach88/calculator/internal/ir"
	"github.com/roach88/calculator/internal/program"
	"github.com/roach88/calculator/internal/store"
)

// Engine is the single writer in front of the store.
//
// Thread-safety model:
//   - Execute() and CreateAccount(): safe from any goroutine, serialized
//     internally by mu
//   - Replay(): read-only against the store, safe from any goroutine
type Engine struct {
	mu      sync.Mutex
	store   *store.Store
	handler program.Handler
	clock   Sequencer
	flowGen FlowTokenGenerator
	logger  *slog.Logger
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithClock replaces the engine clock.
// By default the engine resumes from the highest seq in the store.
func WithClock(c Sequencer) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithFlowGenerator replaces the default UUIDv7 flow token generator.
func WithFlowGenerator(g FlowTokenGenerator) Option {
	return func(e *Engine) {
		e.flowGen = g
	}
}

// WithLogger sets the logger for engine diagnostics.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine that runs handler against the slots in s.
//
// The handler is injected rather than registered globally, so tests and
// replay can host the same program with different wrappers.
func New(ctx context.Context, s *store.Store, handler program.Handler, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, errors.New("engine: nil store")
	}
	if handler == nil {
		return nil, errors.New("engine: nil handler")
	}

	e := &Engine{
		store:   s,
		handler: handler,
		flowGen: UUIDv7Generator{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.clock == nil {
		last, err := s.MaxSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("engine: resume clock: %w", err)
		}
		e.clock = NewClockAt(last)
	}
	return e, nil
}

// Request is one invocation of the program against an account slot.
type Request struct {
	Account     ir.Identity
	Caller      ir.Identity
	Instruction []byte

	// FlowToken correlates related invocations. Generated if empty.
	FlowToken string
}

// Receipt describes a completed invocation, successful or not.
type Receipt struct {
	Invocation ir.Invocation
}

// Value decodes the slot value after the invocation.
func (r Receipt) Value() (uint32, error) {
	rec, err := codec.DecodeState(r.Invocation.After)
	if err != nil {
		return 0, err
	}
	return rec.Value, nil
}

// CreateAccount creates a slot holding value, controlled by owner.
func (e *Engine) CreateAccount(ctx context.Context, key, owner ir.Identity, value uint32) (ir.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	data := codec.EncodeState(ir.StateRecord{Value: value})
	acct := ir.Account{
		Key:        key,
		Owner:      owner,
		Data:       data,
		Initial:    bytes.Clone(data),
		CreatedSeq: e.clock.Next(),
	}
	if err := e.store.CreateAccount(ctx, acct); err != nil {
		return ir.Account{}, err
	}

	e.logger.Debug("account created",
		"account", key.String(),
		"owner", owner.String(),
		"value", value,
		"seq", acct.CreatedSeq)
	return acct, nil
}

// Execute runs one invocation.
//
// The returned Receipt is populated whenever the invocation was logged, even
// if the program rejected it. In that case the error is the program's
// *program.Error and the slot is unchanged. Host failures (missing account,
// storage errors) return an empty Receipt.
func (e *Engine) Execute(ctx context.Context, req Request) (Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	acct, err := e.store.ReadAccount(ctx, req.Account)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return Receipt{}, &RuntimeError{
				Code:    ErrCodeAccountNotFound,
				Message: "no such account",
				Account: req.Account.String(),
				Err:     err,
			}
		}
		return Receipt{}, fmt.Errorf("engine: read account: %w", err)
	}

	flow := req.FlowToken
	if flow == "" {
		flow = e.flowGen.Generate()
	}

	inv := ir.Invocation{
		FlowToken:     flow,
		Seq:           e.clock.Next(),
		Account:       acct.Key,
		Caller:        req.Caller,
		Instruction:   bytes.Clone(req.Instruction),
		Before:        acct.Data,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	id, err := ir.InvocationID(inv)
	if err != nil {
		return Receipt{}, fmt.Errorf("engine: %w", err)
	}
	inv.ID = id

	after, handleErr := e.handler(acct.Owner, req.Caller, bytes.Clone(acct.Data), inv.Instruction)
	if handleErr != nil {
		inv.After = acct.Data
		inv.Outcome = outcomeOf(handleErr)
		inv.ErrorMessage = handleErr.Error()
		if err := e.store.WriteInvocation(ctx, inv); err != nil {
			return Receipt{}, fmt.Errorf("engine: %w", err)
		}
		e.logger.Debug("invocation rejected",
			"account", acct.Key.String(),
			"seq", inv.Seq,
			"outcome", inv.Outcome,
			"error", handleErr)
		return Receipt{Invocation: inv}, handleErr
	}

	inv.After = after
	inv.Outcome = ir.OutcomeOK
	if err := e.store.CommitInvocation(ctx, inv); err != nil {
		if errors.Is(err, store.ErrStaleState) {
			return Receipt{}, &RuntimeError{
				Code:    ErrCodeStaleState,
				Message: "slot changed during invocation",
				Account: acct.Key.String(),
				Err:     err,
			}
		}
		return Receipt{}, fmt.Errorf("engine: %w", err)
	}

	e.logger.Debug("invocation committed",
		"account", acct.Key.String(),
		"seq", inv.Seq,
		"flow_token", flow)
	return Receipt{Invocation: inv}, nil
}

// Account returns the current slot for key.
func (e *Engine) Account(ctx context.Context, key ir.Identity) (ir.Account, error) {
	acct, err := e.store.ReadAccount(ctx, key)
	if errors.Is(err, store.ErrAccountNotFound) {
		return ir.Account{}, &RuntimeError{
			Code:    ErrCodeAccountNotFound,
			Message: "no such account",
			Account: key.String(),
			Err:     err,
		}
	}
	return acct, err
}

// outcomeOf maps a handler error to the logged outcome.
// Errors that are not *program.Error (a wrapped handler, say) log as failed.
func outcomeOf(err error) ir.Outcome {
	kind, ok := program.KindOf(err)
	if !ok {
		return ir.OutcomeFailed
	}
	switch kind {
	case program.KindAuthorization:
		return ir.OutcomeAuthorization
	case program.KindDecoding:
		return ir.OutcomeDecoding
	case program.KindEvaluation:
		return ir.OutcomeEvaluation
	default:
		return ir.OutcomeFailed
	}
}
