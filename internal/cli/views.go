package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/calculator/internal/codec"
	"github.com/roach88/calculator/internal/engine"
	"github.com/roach88/calculator/internal/ir"
	"github.com/roach88/calculator/internal/store"
)

// AccountView is the printable form of an account slot.
type AccountView struct {
	Key        string `json:"key"`
	Owner      string `json:"owner"`
	Value      uint32 `json:"value"`
	Data       string `json:"data"`
	Initial    uint32 `json:"initial"`
	CreatedSeq int64  `json:"created_seq"`
}

func newAccountView(acct ir.Account) AccountView {
	return AccountView{
		Key:        acct.Key.String(),
		Owner:      acct.Owner.String(),
		Value:      decodeValue(acct.Data),
		Data:       hex.EncodeToString(acct.Data),
		Initial:    decodeValue(acct.Initial),
		CreatedSeq: acct.CreatedSeq,
	}
}

func (v AccountView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Account: %s\n", v.Key)
	fmt.Fprintf(&b, "  Owner:   %s\n", v.Owner)
	fmt.Fprintf(&b, "  Value:   %d (%s)\n", v.Value, v.Data)
	fmt.Fprintf(&b, "  Initial: %d\n", v.Initial)
	fmt.Fprintf(&b, "  Created: seq %d", v.CreatedSeq)
	return b.String()
}

// InvocationView is the printable form of one log entry.
type InvocationView struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	FlowToken   string `json:"flow_token"`
	Account     string `json:"account"`
	Caller      string `json:"caller"`
	Operation   string `json:"operation"`
	Instruction string `json:"instruction"`
	Before      uint32 `json:"before"`
	After       uint32 `json:"after"`
	Outcome     string `json:"outcome"`
	Error       string `json:"error,omitempty"`
}

func newInvocationView(inv ir.Invocation) InvocationView {
	return InvocationView{
		ID:          inv.ID,
		Seq:         inv.Seq,
		FlowToken:   inv.FlowToken,
		Account:     inv.Account.String(),
		Caller:      inv.Caller.String(),
		Operation:   describeInstruction(inv.Instruction),
		Instruction: hex.EncodeToString(inv.Instruction),
		Before:      decodeValue(inv.Before),
		After:       decodeValue(inv.After),
		Outcome:     string(inv.Outcome),
		Error:       inv.ErrorMessage,
	}
}

func (v InvocationView) String() string {
	line := fmt.Sprintf("[%d] %s: %d → %d (%s)", v.Seq, v.Operation, v.Before, v.After, v.Outcome)
	if v.Error != "" {
		line += ": " + v.Error
	}
	return line
}

// describeInstruction renders instruction bytes the way the program would
// read them.
func describeInstruction(b []byte) string {
	op, err := codec.DecodeOperation(b)
	if err != nil {
		return fmt.Sprintf("invalid instruction %q", hex.EncodeToString(b))
	}
	return op.String()
}

// decodeValue decodes stored slot bytes. Stored data is always written by
// the engine, so a decode failure means a corrupt database and reads as 0.
func decodeValue(b []byte) uint32 {
	rec, err := codec.DecodeState(b)
	if err != nil {
		return 0
	}
	return rec.Value
}

// accountError maps a lookup error to an ExitError, printing it first.
func accountError(f *OutputFormatter, key ir.Identity, err error) error {
	if engine.IsNotFoundError(err) || errors.Is(err, store.ErrAccountNotFound) {
		msg := fmt.Sprintf("account not found: %s", key)
		_ = f.Error(ErrCodeAccountNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	_ = f.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "account lookup failed", err)
}
