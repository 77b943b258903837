package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/seedcomb/internal/partition"
	"github.com/roach88/seedcomb/internal/plan"
)

type splitReport struct {
	Cardinality string       `json:"cardinality"`
	Workers     int          `json:"workers"`
	Ranges      []splitRange `json:"ranges"`
}

type splitRange struct {
	Worker int    `json:"worker"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Size   string `json:"size"`
}

// NewSplitCommand creates the split command: it shows how a plan's space
// divides across M distributed workers, for provisioning a multi-machine
// run before starting it.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "split <plan-file>",
		Short: "Show worker ranges for a distributed run",
		Long: `Compute the ordinal range each worker of a distributed run would own.
Each machine then runs the same plan with its own --worker i/M selector.

Example:
  seedcomb split --workers 8 plan.yaml`,
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
			ranges, err := partition.Ranges(s.Cardinality(), workers)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to split space", err)
			}

			report := splitReport{
				Cardinality: s.Cardinality().Text(10),
				Workers:     workers,
			}
			for i, r := range ranges {
				report.Ranges = append(report.Ranges, splitRange{
					Worker: i,
					Start:  r.Start.Text(10),
					End:    r.End.Text(10),
					Size:   r.Len().Text(10),
				})
			}

			formatter := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}
			if rootOpts.Format == "json" {
				return formatter.Success(report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s candidates over %d workers:\n", report.Cardinality, workers)
			for _, r := range report.Ranges {
				fmt.Fprintf(out, "  --worker %d/%d  [%s, %s)  %s candidates\n",
					r.Worker, workers, r.Start, r.End, r.Size)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 1, "number of distributed workers")
	return cmd
}
