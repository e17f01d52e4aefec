package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newExecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec -- <dbt args>",
		Short: "Invoke dbt with raw arguments, injecting project context",
		Args:  cobra.ArbitraryArgs,
		RunE:  runExec,
	}
	return cmd
}

func runExec(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("exec requires dbt arguments, e.g. `dbtx exec -- run --select orders`")
	}

	r, err := newRunnerFromWD()
	if err != nil {
		return err
	}
	r.Stdout = cmd.OutOrStdout()
	r.Stderr = cmd.ErrOrStderr()

	_, err = r.Invoke(cmd.Context(), args)
	return err
}
