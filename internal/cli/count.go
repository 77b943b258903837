package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/seedcomb/internal/plan"
)

type countReport struct {
	Cardinality string `json:"cardinality"`
	Positions   int    `json:"positions"`
	Fingerprint string `json:"fingerprint"`
}

// NewCountCommand creates the count command: it compiles the plan's space
// and reports its size without running anything.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count <plan-file>",
		Short: "Count the candidates a plan generates",
		Long: `Compile a recovery plan into its candidate space and print the exact
candidate count, so the search size is known before committing hours to it.

Example:
  seedcomb count plan.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load plan", err)
			}
			s, err := p.BuildSpace()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to build candidate space", err)
			}

			report := countReport{
				Cardinality: s.Cardinality().Text(10),
				Positions:   s.Positions(),
				Fingerprint: s.Fingerprint(),
			}
			formatter := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}
			if rootOpts.Format == "json" {
				return formatter.Success(report)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "candidates:  %s\npositions:   %d\nfingerprint: %s\n",
				report.Cardinality, report.Positions, report.Fingerprint)
			return nil
		},
	}
}
