package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/calculator/internal/ir"
)

const invocationColumns = `
	id, flow_token, seq, account, caller, instruction, state_before, state_after,
	outcome, error_message, engine_version, ir_version`

// ReadAccount retrieves an account slot by key.
// Returns ErrAccountNotFound if no such account exists.
func (s *Store) ReadAccount(ctx context.Context, key ir.Identity) (ir.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, owner, data, initial, created_seq
		FROM accounts
		WHERE key = ?
	`, key.String())

	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Account{}, fmt.Errorf("read account %s: %w", key, ErrAccountNotFound)
	}
	if err != nil {
		return ir.Account{}, fmt.Errorf("read account %s: %w", key, err)
	}
	return acct, nil
}

// ListAccounts returns every account ordered by creation seq.
// Returns an empty slice (not nil) if the store has no accounts.
func (s *Store) ListAccounts(ctx context.Context) ([]ir.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, owner, data, initial, created_seq
		FROM accounts
		ORDER BY created_seq ASC, key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []ir.Account{}
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

// ReadInvocations returns the log for one account in execution order.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the account has no invocations.
func (s *Store) ReadInvocations(ctx context.Context, account ir.Identity) ([]ir.Invocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+invocationColumns+`
		FROM invocations
		WHERE account = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, account.String())
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	invocations := []ir.Invocation{}
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		invocations = append(invocations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}
	return invocations, nil
}

// ReadInvocation retrieves a single invocation by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadInvocation(ctx context.Context, id string) (ir.Invocation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+invocationColumns+`
		FROM invocations
		WHERE id = ?
	`, id)

	inv, err := scanInvocation(row)
	if err != nil {
		return ir.Invocation{}, fmt.Errorf("read invocation %s: %w", id, err)
	}
	return inv, nil
}

// CountOutcomes returns how many logged invocations ended with each outcome.
func (s *Store) CountOutcomes(ctx context.Context) (map[ir.Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*)
		FROM invocations
		GROUP BY outcome
		ORDER BY outcome
	`)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()

	counts := map[ir.Outcome]int{}
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[ir.Outcome(outcome)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome counts: %w", err)
	}
	return counts, nil
}
