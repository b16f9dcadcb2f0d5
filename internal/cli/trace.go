package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/calculator/internal/ir"
	"github.com/roach88/calculator/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Outcome string // optional - filter to one outcome
}

// TraceResult holds the invocation timeline for one account.
type TraceResult struct {
	Account  string           `json:"account"`
	Timeline []InvocationView `json:"timeline"`
	Stats    map[string]int   `json:"stats"`
}

func (r TraceResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trace: %s\n", r.Account)
	if len(r.Timeline) == 0 {
		b.WriteString("  (no invocations)")
		return b.String()
	}
	for _, v := range r.Timeline {
		fmt.Fprintf(&b, "  %s\n", v)
	}
	fmt.Fprintf(&b, "Total: %d", len(r.Timeline))
	return b.String()
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <account>",
		Short: "Show the invocation log for an account",
		Long: `Show every invocation recorded against an account, in seq order,
including rejected ones.

Examples:
  calculator trace <key>
  calculator trace <key> --outcome authorization
  calculator trace <key> --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "only show invocations with this outcome")

	return cmd
}

func runTrace(opts *TraceOptions, account string, cmd *cobra.Command) error {
	ctx := context.Background()
	f := opts.formatter(cmd)

	key, err := ir.ParseIdentity(account)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid account key", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if _, err := st.ReadAccount(ctx, key); err != nil {
		return accountError(f, key, err)
	}

	log, err := st.ReadInvocations(ctx, key)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read invocations", err)
	}

	result := TraceResult{
		Account:  key.String(),
		Timeline: make([]InvocationView, 0, len(log)),
		Stats:    make(map[string]int),
	}
	for _, inv := range log {
		if opts.Outcome != "" && string(inv.Outcome) != opts.Outcome {
			continue
		}
		result.Timeline = append(result.Timeline, newInvocationView(inv))
		result.Stats[string(inv.Outcome)]++
	}

	return f.Success(result)
}
