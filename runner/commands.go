package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/dbtx/dbtx/artifacts"
	"github.com/dbtx/dbtx/internal/logging"
)

// RunOptions tunes a high-level Run invocation.
type RunOptions struct {
	// Target overrides the runner's target for this invocation.
	Target string
	// Args are inserted between the standard arguments and the
	// runner-wide extras.
	Args []string
	// Subprocess re-executes the dbtx binary instead of calling dbt
	// in this process, streaming its output. No results are returned.
	Subprocess bool
	// NoWriteJSON suppresses dbt's JSON artifacts. Failure surfacing
	// then falls back to exit status only.
	NoWriteJSON bool
}

// Run assembles and executes a dbt command: `command --target T
// --project-dir P [--profiles-dir R] <args...>`.
func (r *Runner) Run(ctx context.Context, command string, opts RunOptions) (*artifacts.RunResults, error) {
	target := opts.Target
	if target == "" {
		target = r.target()
	}

	runArgs := []string{command, "--target", target}
	runArgs = append(runArgs, opts.Args...)
	runArgs = append(runArgs, r.Args...)
	if opts.NoWriteJSON || r.Project.Config.NoWriteJSON {
		runArgs = append(runArgs, "--no-write-json")
	}

	if opts.Subprocess {
		return nil, r.runSubprocess(ctx, runArgs)
	}
	return r.Invoke(ctx, runArgs)
}

// runSubprocess re-executes the current binary as `dbtx exec -- <args>`
// so the invocation gets a fresh process and environment.
func (r *Runner) runSubprocess(ctx context.Context, runArgs []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate dbtx executable: %w", err)
	}

	args := append([]string{"exec", "--"}, runArgs...)
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = r.Project.Root
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()
	cmd.Stdin = os.Stdin

	logging.L().Info("running in subprocess", "command", exe, "args", args)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("dbtx subprocess: %w", err)
	}
	return nil
}

// Manifest parses the project and returns the manifest artifact. dbt
// runs out of process, so the parse always writes JSON and the
// artifact is read back from the target directory.
func (r *Runner) Manifest(ctx context.Context, partialParse bool) (*artifacts.Manifest, error) {
	args := []string{"parse"}
	if partialParse {
		args = append(args, "--partial-parse")
	}
	if _, err := r.Invoke(ctx, args); err != nil {
		return nil, err
	}

	manifest, err := artifacts.LoadManifest(r.Project.TargetPath())
	if err != nil {
		return nil, fmt.Errorf("dbt parse did not produce a manifest artifact: %w", err)
	}
	return manifest, nil
}

// GenerateDocs runs `docs generate` with any extra args appended.
func (r *Runner) GenerateDocs(ctx context.Context, args []string) error {
	_, err := r.Invoke(ctx, append([]string{"docs", "generate"}, args...))
	return err
}
