package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/calculator/internal/codec"
)

// EncodeOptions holds flags for the encode command.
type EncodeOptions struct {
	*RootOptions
	Op      string
	Operand uint32
	Decode  string
}

// EncodedInstruction is the output of the encode command.
type EncodedInstruction struct {
	Hex         string `json:"hex"`
	Description string `json:"description"`
}

func (e EncodedInstruction) String() string {
	return fmt.Sprintf("%s  (%s)", e.Hex, e.Description)
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode or decode an instruction",
		Long: `Print the wire bytes for an instruction, or describe existing bytes.

Instructions are one tag byte followed by a 4-byte little-endian operand:
  0 reset  1 add  2 subtract  3 multiply  4 divide  5 set

Examples:
  calculator encode --op add --operand 5
  calculator encode --decode 0400000000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "operation name")
	cmd.Flags().Uint32Var(&opts.Operand, "operand", 0, "operation operand")
	cmd.Flags().StringVar(&opts.Decode, "decode", "", "instruction bytes in hex to describe")
	cmd.MarkFlagsMutuallyExclusive("op", "decode")
	cmd.MarkFlagsOneRequired("op", "decode")

	return cmd
}

func runEncode(opts *EncodeOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	if opts.Decode != "" {
		b, err := hex.DecodeString(opts.Decode)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --decode", err)
		}
		op, err := codec.DecodeOperation(b)
		if err != nil {
			_ = f.Error(ErrCodeRejected, err.Error(), nil)
			return WrapExitError(ExitFailure, "instruction does not decode", err)
		}
		return f.Success(EncodedInstruction{Hex: hex.EncodeToString(b), Description: op.String()})
	}

	instr, err := buildInstruction(opts.Op, opts.Operand, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid instruction", err)
	}
	return f.Success(EncodedInstruction{Hex: hex.EncodeToString(instr), Description: describeInstruction(instr)})
}
