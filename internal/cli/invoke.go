package cli

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/calculator/internal/codec"
	"github.com/roach88/calculator/internal/engine"
	"github.com/roach88/calculator/internal/ir"
	"github.com/roach88/calculator/internal/program"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Caller    string
	Op        string
	Operand   uint32
	Raw       string
	FlowToken string
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <account>",
		Short: "Send an instruction to an account",
		Long: `Send one instruction to an account slot as --caller.

Give either --op (reset|add|subtract|multiply|divide|set) with --operand,
or --raw with the instruction bytes in hex. The result is committed only if
the caller owns the slot and the operation succeeds; every attempt is
recorded in the invocation log.

Exit codes:
  0 - Instruction applied
  1 - Instruction rejected (authorization, decoding or evaluation)
  2 - Command error (account not found, bad flags, etc.)

Examples:
  calculator invoke <key> --caller alice --op add --operand 5
  calculator invoke <key> --caller alice --raw 0400000000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoke(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Caller, "caller", "", "invoking identity (required)")
	_ = cmd.MarkFlagRequired("caller")
	cmd.Flags().StringVar(&opts.Op, "op", "", "operation name")
	cmd.Flags().Uint32Var(&opts.Operand, "operand", 0, "operation operand")
	cmd.Flags().StringVar(&opts.Raw, "raw", "", "raw instruction bytes in hex")
	cmd.Flags().StringVar(&opts.FlowToken, "flow", "", "flow token (default: new UUIDv7)")
	cmd.MarkFlagsMutuallyExclusive("op", "raw")
	cmd.MarkFlagsOneRequired("op", "raw")

	return cmd
}

// buildInstruction encodes --op/--operand or decodes --raw.
func buildInstruction(op string, operand uint32, raw string) ([]byte, error) {
	if op != "" {
		kind, err := ir.ParseOpKind(op)
		if err != nil {
			return nil, err
		}
		return codec.EncodeOperation(ir.Operation{Kind: kind, Operand: operand}), nil
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --raw: %w", err)
	}
	return b, nil
}

func runInvoke(opts *InvokeOptions, account string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	key, err := ir.ParseIdentity(account)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid account key", err)
	}
	caller, err := resolveIdentity(opts.Caller)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --caller", err)
	}
	instr, err := buildInstruction(opts.Op, opts.Operand, opts.Raw)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid instruction", err)
	}

	eng, st, err := opts.openEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	receipt, err := eng.Execute(ctx, engine.Request{
		Account:     key,
		Caller:      caller,
		Instruction: instr,
		FlowToken:   opts.FlowToken,
	})
	if err != nil {
		if _, rejected := program.KindOf(err); rejected {
			view := newInvocationView(receipt.Invocation)
			_ = f.Failure(ErrCodeRejected, err.Error(), view)
			return WrapExitError(ExitFailure, "instruction rejected", err)
		}
		if engine.IsNotFoundError(err) {
			return accountError(f, key, err)
		}
		return WrapExitError(ExitCommandError, "invocation failed", err)
	}

	return f.Success(newInvocationView(receipt.Invocation))
}
