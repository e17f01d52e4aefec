package cli

import (
	"github.com/spf13/cobra"
)

func newLintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [-- <sqlfluff args>]",
		Short: "Lint the project's SQL with sqlfluff",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSqlfluffVerb(cmd, "lint", args)
		},
	}
}

func newFixCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fix [-- <sqlfluff args>]",
		Short: "Fix lint violations in the project's SQL with sqlfluff",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSqlfluffVerb(cmd, "fix", args)
		},
	}
}

func runSqlfluffVerb(cmd *cobra.Command, verb string, args []string) error {
	r, err := newRunnerFromWD()
	if err != nil {
		return err
	}
	r.Stdout = cmd.OutOrStdout()
	r.Stderr = cmd.ErrOrStderr()

	if verb == "fix" {
		return r.Fix(cmd.Context(), args)
	}
	return r.Lint(cmd.Context(), args)
}
