package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/calculator/internal/ir"
)

// IdentityOptions holds flags for the identity command.
type IdentityOptions struct {
	*RootOptions
	Seed string
}

// IdentityView is the output of the identity command.
type IdentityView struct {
	Name    string `json:"name"`
	Key     string `json:"key"`
	Seed    string `json:"seed,omitempty"`
	Address string `json:"address,omitempty"`
}

func (v IdentityView) String() string {
	s := fmt.Sprintf("%s: %s", v.Name, v.Key)
	if v.Address != "" {
		s += fmt.Sprintf("\n  seed %q: %s", v.Seed, v.Address)
	}
	return s
}

// NewIdentityCommand creates the identity command.
func NewIdentityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IdentityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "identity <name>",
		Short: "Print the key for a named identity",
		Long: `Print the base58 key a name resolves to. With --seed, also print the
account address that "calculator init <seed> --owner <name>" would create.

Examples:
  calculator identity alice
  calculator identity alice --seed counter`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentity(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "derive the account address for this seed")

	return cmd
}

func runIdentity(opts *IdentityOptions, name string, cmd *cobra.Command) error {
	id, err := resolveIdentity(name)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid identity", err)
	}

	view := IdentityView{Name: name, Key: id.String()}
	if opts.Seed != "" {
		addr, err := ir.DeriveAddress(id, opts.Seed, ir.ProgramID)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid seed", err)
		}
		view.Seed = opts.Seed
		view.Address = addr.String()
	}
	return opts.formatter(cmd).Success(view)
}
