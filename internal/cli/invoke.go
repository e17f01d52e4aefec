package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbtx/dbtx/artifacts"
	"github.com/dbtx/dbtx/internal/timefmt"
	"github.com/dbtx/dbtx/runner"
)

type verbOptions struct {
	target      string
	profilesDir string
	selector    string
	exclude     string
	vars        string
	threads     int
	fullRefresh bool
	subprocess  bool
	noWriteJSON bool
}

// newVerbCommand builds one dbt verb subcommand. All verbs share the
// same flag surface and delegate to runner.Run; extra positional args
// are passed through to dbt untouched.
func newVerbCommand(verb, short string, fullRefresh bool) *cobra.Command {
	opts := &verbOptions{}
	cmd := &cobra.Command{
		Use:   verb + " [-- <dbt args>]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, verb, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "dbt target to run against")
	cmd.Flags().StringVar(&opts.profilesDir, "profiles-dir", "", "directory containing profiles.yml")
	cmd.Flags().StringVarP(&opts.selector, "select", "s", "", "dbt node selector")
	cmd.Flags().StringVar(&opts.exclude, "exclude", "", "dbt node exclusion")
	cmd.Flags().StringVar(&opts.vars, "vars", "", "dbt vars as a YAML mapping")
	cmd.Flags().IntVar(&opts.threads, "threads", 0, "dbt thread count")
	cmd.Flags().BoolVar(&opts.subprocess, "subprocess", false, "re-invoke dbtx in a fresh process")
	cmd.Flags().BoolVar(&opts.noWriteJSON, "no-write-json", false, "suppress dbt's JSON artifacts")
	if fullRefresh {
		cmd.Flags().BoolVar(&opts.fullRefresh, "full-refresh", false, "rebuild incremental models from scratch")
	}
	return cmd
}

func runVerb(cmd *cobra.Command, verb string, opts *verbOptions, extra []string) error {
	r, err := newRunnerFromWD()
	if err != nil {
		return err
	}
	r.ProfilesDir = opts.profilesDir
	r.Stdout = cmd.OutOrStdout()
	r.Stderr = cmd.ErrOrStderr()

	var args []string
	if opts.selector != "" {
		args = append(args, "--select", opts.selector)
	}
	if opts.exclude != "" {
		args = append(args, "--exclude", opts.exclude)
	}
	if opts.vars != "" {
		args = append(args, "--vars", opts.vars)
	}
	if opts.threads > 0 {
		args = append(args, "--threads", strconv.Itoa(opts.threads))
	}
	if opts.fullRefresh {
		args = append(args, "--full-refresh")
	}
	args = append(args, extra...)

	results, err := r.Run(cmd.Context(), verb, runner.RunOptions{
		Target:      opts.target,
		Args:        args,
		Subprocess:  opts.subprocess,
		NoWriteJSON: opts.noWriteJSON,
	})
	if err != nil {
		return err
	}
	if results != nil {
		fmt.Fprintln(cmd.OutOrStdout(), summarizeRun(verb, results))
	}
	return nil
}

// summarizeRun reduces run results to a single closing line.
func summarizeRun(verb string, results *artifacts.RunResults) string {
	counts := results.Counts()
	statuses := make([]string, 0, len(counts))
	for _, status := range []string{"success", "pass", "warn", "skipped", "error", "fail"} {
		if n := counts[status]; n > 0 {
			statuses = append(statuses, fmt.Sprintf("%d %s", n, status))
			delete(counts, status)
		}
	}
	var rest []string
	for status, n := range counts {
		rest = append(rest, fmt.Sprintf("%d %s", n, status))
	}
	sort.Strings(rest)
	statuses = append(statuses, rest...)
	if len(statuses) == 0 {
		statuses = append(statuses, "no nodes")
	}
	return fmt.Sprintf("%s finished in %s: %s", verb, timefmt.Seconds(results.Elapsed), strings.Join(statuses, ", "))
}

func newRunCommand() *cobra.Command {
	return newVerbCommand("run", "Execute the project's models", true)
}

func newBuildCommand() *cobra.Command {
	return newVerbCommand("build", "Run models, tests, snapshots, and seeds", true)
}

func newTestCommand() *cobra.Command {
	return newVerbCommand("test", "Run the project's tests", false)
}

func newSeedCommand() *cobra.Command {
	return newVerbCommand("seed", "Load seed files into the warehouse", true)
}

func newSnapshotCommand() *cobra.Command {
	return newVerbCommand("snapshot", "Execute the project's snapshots", false)
}

func newCompileCommand() *cobra.Command {
	return newVerbCommand("compile", "Compile models without running them", false)
}
