package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/calculator/internal/ir"
	"github.com/roach88/calculator/internal/store"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [account]",
		Short: "Show account slots",
		Long: `Show one account slot, or list every slot when no key is given.

Examples:
  calculator show
  calculator show <key> --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runShow(opts *RootOptions, args []string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if len(args) == 1 {
		key, err := ir.ParseIdentity(args[0])
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid account key", err)
		}
		acct, err := st.ReadAccount(ctx, key)
		if err != nil {
			return accountError(f, key, err)
		}
		return f.Success(newAccountView(acct))
	}

	accounts, err := st.ListAccounts(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list accounts", err)
	}
	if len(accounts) == 0 && f.Format != "json" {
		return f.Success("No accounts found.")
	}

	views := make([]AccountView, 0, len(accounts))
	for _, acct := range accounts {
		views = append(views, newAccountView(acct))
	}
	if f.Format == "json" {
		return f.Success(views)
	}
	for _, v := range views {
		if err := f.Success(v); err != nil {
			return err
		}
	}
	return nil
}
