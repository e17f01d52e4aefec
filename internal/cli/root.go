package cli

import (
	"github.com/spf13/cobra"

	"github.com/dbtx/dbtx/internal/logging"
	"github.com/dbtx/dbtx/internal/version"
)

func Execute() error {
	logging.InitFromEnv()
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dbtx",
		Short:         "Thin orchestration and extension layer over the dbt CLI",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runStatus,
	}

	cmd.AddCommand(
		newInitCommand(),
		newRunCommand(),
		newBuildCommand(),
		newTestCommand(),
		newSeedCommand(),
		newSnapshotCommand(),
		newCompileCommand(),
		newExecCommand(),
		newParseCommand(),
		newDocsCommand(),
		newLintCommand(),
		newFixCommand(),
		newStatusCommand(),
		newDoctorCommand(),
		newVersionCommand(),
	)

	return cmd
}
