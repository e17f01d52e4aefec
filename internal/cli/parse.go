package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newParseCommand() *cobra.Command {
	var noPartialParse bool
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse the project and summarize its manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, !noPartialParse)
		},
	}
	cmd.Flags().BoolVar(&noPartialParse, "no-partial-parse", false, "force a full re-parse")
	return cmd
}

func runParse(cmd *cobra.Command, partialParse bool) error {
	r, err := newRunnerFromWD()
	if err != nil {
		return err
	}
	r.Stdout = cmd.OutOrStdout()
	r.Stderr = cmd.ErrOrStderr()

	manifest, err := r.Manifest(cmd.Context(), partialParse)
	if err != nil {
		return err
	}

	counts := manifest.NodesByType()
	types := make([]string, 0, len(counts))
	for typ := range counts {
		types = append(types, typ)
	}
	sort.Strings(types)

	fmt.Fprintf(cmd.OutOrStdout(), "parsed %s\n", r.Project.Spec.Name)
	for _, typ := range types {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %d\n", typ, counts[typ])
	}
	return nil
}
