package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/calculator/internal/config"
	"github.com/roach88/calculator/internal/engine"
	"github.com/roach88/calculator/internal/ir"
	"github.com/roach88/calculator/internal/program"
	"github.com/roach88/calculator/internal/store"
)

// RootOptions holds global flags for all commands.
// Defaults come from the environment (see config.Config).
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	LogLevel string

	configErr error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the calculator CLI.
func NewRootCommand() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		// Fall back to defaults; the error is reported before any command runs.
		cfg = config.Config{DBPath: "calculator.db", LogLevel: "info", Format: "text"}
	}
	opts := &RootOptions{configErr: err}

	cmd := &cobra.Command{
		Use:   "calculator",
		Short: "Calculator - an owner-gated state transition program",
		Long: `Host the calculator program against a local SQLite ledger.

Each account slot holds a 4-byte little-endian value and is controlled by
one owner identity. Instructions are a 1-byte operation tag followed by a
4-byte little-endian operand. Only the owner may transition a slot, and a
rejected instruction never changes it.

Environment:
  CALCULATOR_DB_PATH    default for --db
  CALCULATOR_LOG_LEVEL  debug|info|warn|error
  CALCULATOR_FORMAT     default for --format`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", opts.configErr)
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", cfg.DBPath, "path to SQLite database")
	opts.LogLevel = cfg.LogLevel

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewInvokeCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewIdentityCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns a text logger on stderr. --verbose forces debug.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if l, err := config.ParseLevel(o.LogLevel); err == nil {
		level = l
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// openEngine opens the database and hosts the program against it.
// The caller must close the returned store.
func (o *RootOptions) openEngine(ctx context.Context, cmd *cobra.Command) (*engine.Engine, *store.Store, error) {
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	logger := o.logger(cmd)
	eng, err := engine.New(ctx, st, program.Traced(program.Handle, logger), engine.WithLogger(logger))
	if err != nil {
		st.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	return eng, st, nil
}

// resolveIdentity accepts either a base58 key or a name. A value that
// decodes to exactly 32 bytes is a key; anything else is hashed with
// ir.NamedIdentity.
func resolveIdentity(value string) (ir.Identity, error) {
	if value == "" {
		return ir.Identity{}, fmt.Errorf("identity is required")
	}
	if id, err := ir.ParseIdentity(value); err == nil {
		return id, nil
	}
	return ir.NamedIdentity(value), nil
}
