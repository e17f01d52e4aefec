package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dbtx/dbtx/internal/config"
	"github.com/dbtx/dbtx/internal/project"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default dbtx.toml into the current dbt project",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	proj, err := project.Discover(wd)
	if err != nil {
		return err
	}

	path := filepath.Join(proj.Root, config.FileName)
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "dbtx already initialized at %s\n", path)
		return nil
	}

	if _, err := project.EnsureConfig(proj.Root); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s for project %s\n", path, proj.Spec.Name)
	return nil
}
