package store

import (
	"fmt"

	"github.com/roach88/calculator/internal/ir"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// blob returns b, or an empty non-nil slice. The driver binds a nil slice
// as NULL, which NOT NULL blob columns reject.
func blob(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

func parseIdentityColumn(column, value string) (ir.Identity, error) {
	id, err := ir.ParseIdentity(value)
	if err != nil {
		return ir.Identity{}, fmt.Errorf("column %s: %w", column, err)
	}
	return id, nil
}

func scanAccount(row rowScanner) (ir.Account, error) {
	var (
		acct       ir.Account
		key, owner string
	)
	if err := row.Scan(&key, &owner, &acct.Data, &acct.Initial, &acct.CreatedSeq); err != nil {
		return ir.Account{}, err
	}

	var err error
	if acct.Key, err = parseIdentityColumn("key", key); err != nil {
		return ir.Account{}, err
	}
	if acct.Owner, err = parseIdentityColumn("owner", owner); err != nil {
		return ir.Account{}, err
	}
	return acct, nil
}

func scanInvocation(row rowScanner) (ir.Invocation, error) {
	var (
		inv             ir.Invocation
		account, caller string
		outcome         string
	)
	err := row.Scan(
		&inv.ID,
		&inv.FlowToken,
		&inv.Seq,
		&account,
		&caller,
		&inv.Instruction,
		&inv.Before,
		&inv.After,
		&outcome,
		&inv.ErrorMessage,
		&inv.EngineVersion,
		&inv.IRVersion,
	)
	if err != nil {
		return ir.Invocation{}, err
	}

	if inv.Account, err = parseIdentityColumn("account", account); err != nil {
		return ir.Invocation{}, err
	}
	if inv.Caller, err = parseIdentityColumn("caller", caller); err != nil {
		return ir.Invocation{}, err
	}
	inv.Outcome = ir.Outcome(outcome)
	return inv, nil
}
