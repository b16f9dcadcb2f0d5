package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/calculator/internal/ir"
	"github.com/roach88/calculator/internal/store"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Owner string
	Base  string
	Value uint32
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init <seed>",
		Short: "Create an account slot",
		Long: `Create a 4-byte account slot controlled by --owner.

The slot key is derived from the base identity (default: the owner), the
seed and the program identity, so the same inputs always name the same slot.
Seeds are at most 32 bytes.

Identities may be given as base58 keys or as names; a name is hashed into
a key.

Examples:
  calculator init counter --owner alice
  calculator init counter --owner alice --value 10
  calculator init shared --owner alice --base treasury`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "identity allowed to transition the slot (required)")
	_ = cmd.MarkFlagRequired("owner")
	cmd.Flags().StringVar(&opts.Base, "base", "", "base identity for address derivation (default: owner)")
	cmd.Flags().Uint32Var(&opts.Value, "value", 0, "initial value")

	return cmd
}

func runInit(opts *InitOptions, seed string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	owner, err := resolveIdentity(opts.Owner)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --owner", err)
	}
	base := owner
	if opts.Base != "" {
		if base, err = resolveIdentity(opts.Base); err != nil {
			return WrapExitError(ExitCommandError, "invalid --base", err)
		}
	}

	key, err := ir.DeriveAddress(base, seed, ir.ProgramID)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid seed", err)
	}

	eng, st, err := opts.openEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	acct, err := eng.CreateAccount(ctx, key, owner, opts.Value)
	if err != nil {
		if errors.Is(err, store.ErrAccountExists) {
			msg := fmt.Sprintf("account already exists: %s", key)
			_ = f.Error(ErrCodeAccountExists, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		return WrapExitError(ExitCommandError, "failed to create account", err)
	}

	f.VerboseLog("Derived %s from seed %q", key, seed)
	return f.Success(newAccountView(acct))
}
