package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/calculator/internal/engine"
	"github.com/roach88/calculator/internal/ir"
)

// AccountReplay holds the replay result for a single account.
type AccountReplay struct {
	Account       string            `json:"account"`
	Steps         int               `json:"steps"`
	Deterministic bool              `json:"deterministic"`
	Mismatches    []engine.Mismatch `json:"mismatches,omitempty"`
}

// ReplayReport holds the overall replay result.
type ReplayReport struct {
	Accounts         []AccountReplay `json:"accounts"`
	AllDeterministic bool            `json:"all_deterministic"`
}

func (r ReplayReport) String() string {
	if len(r.Accounts) == 0 {
		return "No accounts found in database."
	}
	var b strings.Builder
	for _, a := range r.Accounts {
		mark := "✓"
		if !a.Deterministic {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s (%d invocation(s))\n", mark, a.Account, a.Steps)
		for _, m := range a.Mismatches {
			fmt.Fprintf(&b, "    seq %d %s: recorded %s, replayed %s\n", m.Seq, m.Field, m.Recorded, m.Replayed)
		}
	}
	if r.AllDeterministic {
		b.WriteString("Replay deterministic")
	} else {
		b.WriteString("Replay DIVERGED")
	}
	return b.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [account]",
		Short: "Replay the invocation log and verify determinism",
		Long: `Re-execute each account's invocation log from its initial value and
check that every recorded outcome and state is reproduced, and that the
final state matches the slot. Nothing is written.

Without an account key, every account is replayed.

Exit codes:
  0 - All replays deterministic
  1 - Replay diverged from the log
  2 - Command error (database or account not found, etc.)

Examples:
  calculator replay
  calculator replay <key> --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runReplay(opts *RootOptions, args []string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	eng, st, err := opts.openEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var keys []ir.Identity
	if len(args) == 1 {
		key, err := ir.ParseIdentity(args[0])
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid account key", err)
		}
		keys = append(keys, key)
	} else {
		accounts, err := st.ListAccounts(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list accounts", err)
		}
		for _, a := range accounts {
			keys = append(keys, a.Key)
		}
	}

	report := ReplayReport{
		Accounts:         make([]AccountReplay, 0, len(keys)),
		AllDeterministic: true,
	}
	for _, key := range keys {
		f.VerboseLog("Replaying %s", key)
		res, err := eng.Replay(ctx, key)
		if err != nil {
			if engine.IsNotFoundError(err) {
				return accountError(f, key, err)
			}
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay %s", key), err)
		}
		report.Accounts = append(report.Accounts, AccountReplay{
			Account:       key.String(),
			Steps:         res.Steps,
			Deterministic: res.Deterministic(),
			Mismatches:    res.Mismatches,
		})
		if !res.Deterministic() {
			report.AllDeterministic = false
		}
	}

	if !report.AllDeterministic {
		_ = f.Failure(ErrCodeReplayDiverged, "replay diverged from the invocation log", report)
		return NewExitError(ExitFailure, "replay diverged")
	}
	return f.Success(report)
}
