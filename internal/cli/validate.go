package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/seedcomb/internal/plan"
	"github.com/roach88/seedcomb/internal/tokens"
)

type validateReport struct {
	Valid       bool   `json:"valid"`
	Kind        string `json:"kind"`
	Oracle      string `json:"oracle"`
	Positions   int    `json:"positions"`
	Cardinality string `json:"cardinality"`
	Fingerprint string `json:"fingerprint"`
}

// NewValidateCommand creates the validate command: full plan compilation,
// including the oracle target, without starting a search.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Validate a recovery plan",
		Long: `Compile a recovery plan end to end: parse the token list, resolve
anchors and wildcards, build the candidate space, and construct the
oracle. Configuration problems are reported with their position in the
token list where possible.

Exit code 0 means the plan would run; 1 means it is invalid.

Example:
  seedcomb validate plan.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}

			p, err := plan.Load(args[0])
			if err != nil {
				return reportInvalid(formatter, err)
			}
			s, err := p.BuildSpace()
			if err != nil {
				return reportInvalid(formatter, err)
			}
			o, err := p.BuildOracle()
			if err != nil {
				return reportInvalid(formatter, err)
			}

			report := validateReport{
				Valid:       true,
				Kind:        p.Kind,
				Oracle:      o.Name(),
				Positions:   s.Positions(),
				Cardinality: s.Cardinality().Text(10),
				Fingerprint: s.Fingerprint(),
			}
			if rootOpts.Format == "json" {
				return formatter.Success(report)
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"plan OK: %s search, %d positions, %s candidates, oracle %s\n",
				report.Kind, report.Positions, report.Cardinality, report.Oracle)
			return nil
		},
	}
}

// reportInvalid renders the validation failure and maps it to exit code 1.
func reportInvalid(formatter *OutputFormatter, err error) error {
	code := "INVALID_PLAN"
	if tokens.IsConfigError(err) {
		code = "INVALID_TOKENS"
	}
	_ = formatter.Error(code, err.Error(), nil)
	return &ExitError{Code: ExitFailure, Message: "plan is invalid", Err: err}
}
