package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/calculator/internal/harness"
)

// ValidationResult holds validation results for one scenario file.
type ValidationResult struct {
	File     string                  `json:"file"`
	Valid    bool                    `json:"valid"`
	Problems []harness.SchemaProblem `json:"problems,omitempty"`
}

// ValidationReport holds validation results for every file.
type ValidationReport struct {
	Files   []ValidationResult `json:"files"`
	Invalid int                `json:"invalid"`
}

func (r ValidationReport) String() string {
	var b strings.Builder
	for i, f := range r.Files {
		if i > 0 {
			b.WriteByte('\n')
		}
		if f.Valid {
			fmt.Fprintf(&b, "✓ %s", f.File)
			continue
		}
		fmt.Fprintf(&b, "✗ %s", f.File)
		for _, p := range f.Problems {
			b.WriteString("\n  ")
			if p.Line > 0 {
				fmt.Fprintf(&b, "line %d: ", p.Line)
			}
			if p.Path != "" {
				fmt.Fprintf(&b, "%s: ", p.Path)
			}
			b.WriteString(p.Message)
		}
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario-file>...",
		Short: "Validate scenario files without running them",
		Long: `Check scenario files against the scenario schema and verify that steps
and assertions only reference declared accounts.

Examples:
  calculator validate testdata/scenarios/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	report := ValidationReport{Files: make([]ValidationResult, 0, len(files))}
	for _, file := range files {
		f.VerboseLog("Validating %s", file)
		vr := ValidationResult{File: file, Valid: true}

		if _, err := harness.LoadScenario(file); err != nil {
			vr.Valid = false
			var se *harness.SchemaError
			if errors.As(err, &se) {
				vr.Problems = se.Problems
			} else {
				vr.Problems = []harness.SchemaProblem{{Message: err.Error()}}
			}
			report.Invalid++
		}
		report.Files = append(report.Files, vr)
	}

	if report.Invalid > 0 {
		_ = f.Failure(ErrCodeInvalidScenario, fmt.Sprintf("%d invalid scenario file(s)", report.Invalid), report)
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenario file(s)", report.Invalid))
	}
	return f.Success(report)
}
