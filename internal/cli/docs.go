package cli

import (
	"github.com/spf13/cobra"
)

func newDocsCommand() *cobra.Command {
	var static bool
	cmd := &cobra.Command{
		Use:   "docs [-- <dbt args>]",
		Short: "Generate the project's documentation site",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocs(cmd, static, args)
		},
	}
	cmd.Flags().BoolVar(&static, "static", false, "produce a single self-contained HTML file")
	return cmd
}

func runDocs(cmd *cobra.Command, static bool, extra []string) error {
	r, err := newRunnerFromWD()
	if err != nil {
		return err
	}
	r.Stdout = cmd.OutOrStdout()
	r.Stderr = cmd.ErrOrStderr()

	args := extra
	if static {
		args = append([]string{"--static"}, extra...)
	}
	return r.GenerateDocs(cmd.Context(), args)
}
