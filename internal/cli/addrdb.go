package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/seedcomb/internal/oracle"
)

// NewAddrDBCommand creates the addrdb command group for building and
// querying compact address databases.
func NewAddrDBCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addrdb",
		Short: "Build and query address databases",
		Long: `An address database is the compact form of a large address list: a
bloom filter the seed oracle checks derived addresses against. Build one
once from a newline-separated address dump, then reference it from plans
as oracle.seed.address_db.`,
	}
	cmd.AddCommand(newAddrDBBuildCommand(rootOpts))
	cmd.AddCommand(newAddrDBCheckCommand(rootOpts))
	return cmd
}

func newAddrDBBuildCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build <address-list> <output-db>",
		Short: "Build a compact database from an address list",
		Long: `Index a newline-separated address list into a compact database.

Example:
  seedcomb addrdb build addresses.txt addresses.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open address list", err)
			}
			defer in.Close()

			set, err := oracle.BuildAddressSet(in)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to index addresses", err)
			}

			out, err := os.Create(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to create database file", err)
			}
			defer out.Close()
			if _, err := set.WriteTo(out); err != nil {
				return WrapExitError(ExitCommandError, "failed to write database", err)
			}
			if err := out.Close(); err != nil {
				return WrapExitError(ExitCommandError, "failed to finish database", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d addresses into %s\n", set.Len(), args[1])
			return nil
		},
	}
}

func newAddrDBCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <db> <address>...",
		Short: "Check addresses against a database",
		Long: `Test whether addresses are present in a compact database. A hit from
the compact form is probabilistic (the false-positive rate is set at build
time); a miss is definitive.

Exit code 0 when every address hits, 1 otherwise.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer f.Close()
			set, err := oracle.ReadAddressSet(f)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read database", err)
			}

			missing := 0
			for _, addr := range args[1:] {
				if set.Contains(addr) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: present\n", addr)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: absent\n", addr)
					missing++
				}
			}
			if missing > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d of %d addresses absent", missing, len(args)-1))
			}
			return nil
		},
	}
}
