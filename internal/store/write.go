package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/calculator/internal/ir"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateAccount inserts a new account slot.
// Returns ErrAccountExists if the key is already taken; the existing slot is
// left as it was.
func (s *Store) CreateAccount(ctx context.Context, acct ir.Account) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (key, owner, data, initial, created_seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`,
		acct.Key.String(),
		acct.Owner.String(),
		blob(acct.Data),
		blob(acct.Initial),
		acct.CreatedSeq,
	)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("create account: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("create account %s: %w", acct.Key, ErrAccountExists)
	}
	return nil
}

// WriteInvocation appends a log record without touching the account slot.
// Used for rejected invocations.
//
// Note: The account referenced by inv.Account must exist (foreign key constraint).
func (s *Store) WriteInvocation(ctx context.Context, inv ir.Invocation) error {
	if err := insertInvocation(ctx, s.db, inv); err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}
	return nil
}

// CommitInvocation atomically replaces the slot's data with inv.After and
// appends inv to the log.
//
// The update only applies while the slot still holds inv.Before. If another
// writer got there first, nothing is written and ErrStaleState is returned.
func (s *Store) CommitInvocation(ctx context.Context, inv ir.Invocation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit invocation: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		UPDATE accounts SET data = ?
		WHERE key = ? AND data = ?
	`,
		blob(inv.After),
		inv.Account.String(),
		blob(inv.Before),
	)
	if err != nil {
		return fmt.Errorf("commit invocation: update account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("commit invocation: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("commit invocation %s: %w", inv.Account, ErrStaleState)
	}

	if err := insertInvocation(ctx, tx, inv); err != nil {
		return fmt.Errorf("commit invocation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit invocation: commit: %w", err)
	}
	return nil
}

func insertInvocation(ctx context.Context, db execer, inv ir.Invocation) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO invocations
		(id, flow_token, seq, account, caller, instruction, state_before, state_after,
		 outcome, error_message, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.ID,
		inv.FlowToken,
		inv.Seq,
		inv.Account.String(),
		inv.Caller.String(),
		blob(inv.Instruction),
		blob(inv.Before),
		blob(inv.After),
		string(inv.Outcome),
		inv.ErrorMessage,
		inv.EngineVersion,
		inv.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("insert invocation: %w", err)
	}
	return nil
}
