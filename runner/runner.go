// Package runner is the programmatic entry point for invoking dbt
// against a project. It assembles argument lists, resolves configured
// extension points, delegates to the dbt executable, and surfaces
// results or failures from dbt's JSON artifacts.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/dbtx/dbtx/adapters"
	"github.com/dbtx/dbtx/artifacts"
	"github.com/dbtx/dbtx/hooks"
	"github.com/dbtx/dbtx/internal/dbtutil"
	"github.com/dbtx/dbtx/internal/logging"
	"github.com/dbtx/dbtx/internal/project"
)

// DefaultTarget is used when neither configuration nor caller names one.
const DefaultTarget = "dev"

// lockRetryDelay paces acquisition attempts on the project lock.
const lockRetryDelay = 250 * time.Millisecond

// Runner invokes dbt for one discovered project.
type Runner struct {
	Project *project.Project

	// Target overrides the configured default target.
	Target string
	// ProfilesDir overrides profile resolution; empty lets the
	// project (env, dbtx.toml, ~/.dbt) decide.
	ProfilesDir string
	// Args are appended to every invocation after the configured args.
	Args []string
	// Callbacks run in addition to the ones named in configuration.
	Callbacks []hooks.Callback

	Stdout io.Writer
	Stderr io.Writer

	resolveOnce sync.Once
	resolved    []hooks.Callback
	resolveErr  error
}

// New returns a Runner bound to the given project.
func New(proj *project.Project) *Runner {
	return &Runner{
		Project: proj,
		Target:  proj.Config.DefaultTarget,
		Args:    proj.Config.Args,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

func (r *Runner) target() string {
	if r.Target != "" {
		return r.Target
	}
	return DefaultTarget
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

// projectCallbacks resolves the full callback list once: caller
// callbacks, then the dbtx.toml callbacks list, then names from the
// dbt_callbacks project var.
func (r *Runner) projectCallbacks() ([]hooks.Callback, error) {
	r.resolveOnce.Do(func() {
		callbacks := append([]hooks.Callback(nil), r.Callbacks...)
		for _, name := range r.Project.Config.Callbacks {
			cb, err := hooks.Resolve(strings.TrimSpace(name))
			if err != nil {
				r.resolveErr = err
				return
			}
			callbacks = append(callbacks, cb)
		}
		if raw, ok := r.Project.Vars()["dbt_callbacks"]; ok {
			fromVar, err := hooks.ResolveList(fmt.Sprint(raw))
			if err != nil {
				r.resolveErr = err
				return
			}
			callbacks = append(callbacks, fromVar...)
		}
		r.resolved = callbacks
	})
	return r.resolved, r.resolveErr
}

// Invoke runs dbt with the given arguments, injecting --project-dir and
// --profiles-dir when the caller did not supply them.
func (r *Runner) Invoke(ctx context.Context, args []string) (*artifacts.RunResults, error) {
	runArgs := append([]string(nil), args...)
	if !containsFlag(runArgs, "--project-dir") {
		runArgs = append(runArgs, "--project-dir", r.Project.Root)
	}
	if dir := r.Project.ProfilesDir(r.ProfilesDir); dir != "" && !containsFlag(runArgs, "--profiles-dir") {
		runArgs = append(runArgs, "--profiles-dir", dir)
	}

	command := ""
	if len(runArgs) > 0 {
		command = runArgs[0]
	}

	callbacks, err := r.projectCallbacks()
	if err != nil {
		return nil, err
	}

	adapterEnv, err := r.resolveAdapter(runArgs)
	if err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(r.Project.Root, ".dbtx.lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire project lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another dbtx invocation holds the project lock")
	}
	defer lock.Unlock()

	for _, cb := range callbacks {
		if err := cb(ctx, hooks.Event{Phase: hooks.BeforeRun, Command: command, Args: runArgs}); err != nil {
			return nil, fmt.Errorf("before-run callback: %w", err)
		}
	}

	logging.L().Info("running dbt", "args", strings.Join(runArgs, " "))
	runErr := dbtutil.RunStreamed(ctx, r.Project.Root, r.Project.Config.DbtBin, r.stdout(), r.stderr(), adapterEnv, runArgs...)

	results, loadErr := artifacts.LoadRunResults(r.Project.TargetPath())
	if loadErr != nil {
		if !errors.Is(loadErr, artifacts.ErrMissing) {
			logging.L().Warn("unreadable run results artifact", "error", loadErr)
		}
		results = nil
	}

	invokeErr := r.surfaceFailure(runErr, results)
	for _, cb := range callbacks {
		event := hooks.Event{Phase: hooks.AfterRun, Command: command, Args: runArgs, Result: results, Err: invokeErr}
		if err := cb(ctx, event); err != nil {
			logging.L().Warn("after-run callback failed", "error", err)
			invokeErr = errors.Join(invokeErr, fmt.Errorf("after-run callback: %w", err))
		}
	}
	if invokeErr != nil {
		return results, invokeErr
	}
	return results, nil
}

// surfaceFailure converts a subprocess failure into the most specific
// error available: node messages from run_results when present,
// otherwise the exit status.
func (r *Runner) surfaceFailure(runErr error, results *artifacts.RunResults) error {
	if runErr == nil {
		return nil
	}
	if results != nil {
		if errored := results.Errored(); len(errored) > 0 {
			messages := make([]string, 0, len(errored))
			for _, node := range errored {
				msg := node.Message
				if msg == "" {
					msg = node.Status
				}
				messages = append(messages, fmt.Sprintf("%s: %s", node.UniqueID, msg))
			}
			return fmt.Errorf("dbt reported %d failed node(s):\n%s", len(errored), strings.Join(messages, "\n"))
		}
	}
	return fmt.Errorf("dbt execution failed (exit %d): %w", dbtutil.ExitCode(runErr), runErr)
}

// resolveAdapter determines the configured custom adapter, validates
// it against the registry, and returns its subprocess environment.
func (r *Runner) resolveAdapter(args []string) ([]string, error) {
	cliVars, err := CLIVars(args)
	if err != nil {
		return nil, err
	}
	name := adapters.ConfiguredName(cliVars, r.Project.Vars())
	if name == "" {
		return nil, nil
	}
	factory, err := adapters.Resolve(name)
	if err != nil {
		return nil, err
	}
	adapter, err := factory(r.Project.Vars())
	if err != nil {
		return nil, fmt.Errorf("configure adapter %q: %w", name, err)
	}
	logging.L().Debug("using custom adapter", "name", name, "type", adapter.Type())
	return adapter.Env(), nil
}

// CLIVars extracts the YAML mapping passed via --vars, if any.
func CLIVars(args []string) (map[string]any, error) {
	raw := flagValue(args, "--vars")
	if raw == "" {
		return nil, nil
	}
	var vars map[string]any
	if err := yaml.Unmarshal([]byte(raw), &vars); err != nil {
		return nil, fmt.Errorf("parse --vars: %w", err)
	}
	return vars, nil
}

func containsFlag(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag || strings.HasPrefix(arg, flag+"=") {
			return true
		}
	}
	return false
}

func flagValue(args []string, flag string) string {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1]
		}
		if rest, ok := strings.CutPrefix(arg, flag+"="); ok {
			return rest
		}
	}
	return ""
}
