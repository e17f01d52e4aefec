// Implementation of the `dbtxcmdtest` harness.
//
// Key behaviors:
//   - Creates `/tmp/dbtx-transcripts/tmpproj-<id>` and scaffolds a
//     minimal dbt project (dbt_project.yml, profiles.yml, one model).
//   - Installs a hermetic `dbt` stub by copying `bin/dbtstub` into the
//     temp project as `bin/dbt`, and puts `bin/dbtx` on PATH.
//   - Honors `DBTX_CMDTEST_TIMEOUT` (default 10s) to cap setup + command runtime.
//   - Honors `DBTX_CMDTEST_ID` to isolate temp projects for parallel tests.
package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

type tool struct {
	repoRoot        string
	transcriptsRoot string
	dbtStubBinary   string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

const defaultTimeout = 10 * time.Second

const projectSpec = `name: shop
version: "1.0.0"
profile: shop
vars:
  start_date: "2020-01-01"
`

const profilesSpec = `shop:
  target: dev
  outputs:
    dev:
      type: duckdb
      path: dev.duckdb
`

func newToolFromExecutable() (*tool, error) {
	if root := os.Getenv("DBTX_REPO_ROOT"); root != "" {
		return newTool(root), nil
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, err
	}
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(exe), ".."))
	return newTool(repoRoot), nil
}

func newTool(repoRoot string) *tool {
	repoRoot = filepath.Clean(repoRoot)
	return &tool{
		repoRoot:        repoRoot,
		transcriptsRoot: "/tmp/dbtx-transcripts",
		dbtStubBinary:   filepath.Join(repoRoot, "bin", "dbtstub"),
		stdin:           os.Stdin,
		stdout:          os.Stdout,
		stderr:          os.Stderr,
	}
}

func (t *tool) runCLI(ctx context.Context, args []string) int {
	ctx, cancel, timeout := withTimeoutFromEnv(ctx, "DBTX_CMDTEST_TIMEOUT", defaultTimeout)
	if cancel != nil {
		defer cancel()
	}

	opts, cmdArgs, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(t.stderr, err)
		t.printUsage()
		return 2
	}
	if opts.help {
		t.printUsage()
		return 0
	}

	exitCode, err := t.run(ctx, opts, cmdArgs, timeout)
	if err != nil {
		fmt.Fprintln(t.stderr, err)
		return 1
	}
	return exitCode
}

func (t *tool) printUsage() {
	fmt.Fprint(t.stderr, `Usage: dbtxcmdtest [options] -- <command> [args...]

Sets up a disposable dbt test project, runs the given command inside it,
and cleans up afterward. Intended for transcript integration tests.

Options:
  --skip-init    Leave the project without a dbtx.toml (for dbtx init tests).
  --no-profiles  Omit profiles.yml (for doctor failure tests).
  --workdir DIR  cd into DIR (relative to the temp project) before running.
  --keep         Preserve the temp project for debugging (prints its path).
`)
}

func (t *tool) run(ctx context.Context, opts options, cmdArgs []string, timeout time.Duration) (int, error) {
	if t.repoRoot == "" {
		return 1, errors.New("repo root is required")
	}
	if _, err := os.Stat(filepath.Join(t.repoRoot, "go.mod")); err != nil {
		return 1, fmt.Errorf("unable to locate dbtx repo root: %w", err)
	}

	if err := os.MkdirAll(t.transcriptsRoot, 0o755); err != nil {
		return 1, err
	}

	unlock, err := acquireLockFile(ctx, filepath.Join(t.transcriptsRoot, ".lock"), timeout)
	if err != nil {
		return 1, err
	}

	tmpproj := filepath.Join(t.transcriptsRoot, tmpprojDirName())
	if err := removeAllUnder(t.transcriptsRoot, tmpproj); err != nil {
		unlock()
		return 1, err
	}
	if err := os.MkdirAll(tmpproj, 0o755); err != nil {
		unlock()
		return 1, err
	}
	unlock()

	if err := t.scaffoldProject(tmpproj, opts); err != nil {
		return 1, err
	}
	if err := t.installDbtStub(tmpproj); err != nil {
		return 1, err
	}

	childEnv := deterministicEnv(os.Environ())
	childEnv = withEnv(childEnv, "DBT_PROFILES_DIR", "")
	childEnv = withEnv(childEnv, "PATH", strings.Join([]string{
		filepath.Join(tmpproj, "bin"),
		filepath.Join(t.repoRoot, "bin"),
		getEnv(childEnv, "PATH"),
	}, string(os.PathListSeparator)))

	if !opts.skipInit {
		if err := t.runQuiet(ctx, tmpproj, childEnv, filepath.Join(t.repoRoot, "bin", "dbtx"), "init"); err != nil {
			return 1, err
		}
	}

	workdir := tmpproj
	if opts.workdir != "" {
		workdir = filepath.Join(tmpproj, opts.workdir)
	}

	cmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
	cmd.Dir = workdir
	cmd.Env = withEnv(childEnv, "PWD", workdir)
	cmd.Stdin = t.stdin
	cmd.Stdout = t.stdout
	cmd.Stderr = t.stderr

	runErr := cmd.Run()
	if runErr != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return 124, fmt.Errorf("dbtxcmdtest: timed out after %s", timeout)
	}
	exitCode := exitStatus(runErr)

	if opts.keepProj {
		fmt.Fprintf(t.stderr, "temp project kept at %s\n", tmpproj)
	} else if cleanupErr := removeAllUnder(t.transcriptsRoot, tmpproj); cleanupErr != nil {
		return 1, cleanupErr
	}

	return exitCode, nil
}

func (t *tool) scaffoldProject(tmpproj string, opts options) error {
	if err := os.WriteFile(filepath.Join(tmpproj, "dbt_project.yml"), []byte(projectSpec), 0o644); err != nil {
		return err
	}
	if !opts.noProfiles {
		if err := os.WriteFile(filepath.Join(tmpproj, "profiles.yml"), []byte(profilesSpec), 0o644); err != nil {
			return err
		}
	}
	modelsDir := filepath.Join(tmpproj, "models")
	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(modelsDir, "orders.sql"), []byte("select 1 as id\n"), 0o644)
}

func (t *tool) installDbtStub(tmpproj string) error {
	stub, err := os.ReadFile(t.dbtStubBinary)
	if err != nil {
		return fmt.Errorf("read dbt stub (run `mise run build` first?): %w", err)
	}

	binDir := filepath.Join(tmpproj, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(binDir, "dbt"), stub, 0o755)
}

func (t *tool) runQuiet(ctx context.Context, dir string, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = withEnv(env, "PWD", dir)

	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			msg = ": " + msg
		}
		return fmt.Errorf("%s %s failed%s: %w", name, strings.Join(args, " "), msg, err)
	}
	return nil
}

func deterministicEnv(base []string) []string {
	env := envMap(base)
	env["NO_COLOR"] = "1"
	env["CLICOLOR"] = "0"
	env["CLICOLOR_FORCE"] = "0"
	env["DBTX_NOW"] = "2000-01-02T00:10:00Z"
	env["DBTX_LOG_LEVEL"] = "error"
	return envSlice(env)
}

func removeAllUnder(root, target string) error {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return err
	}
	if rel == "." {
		return fmt.Errorf("refusing to remove root: %s", root)
	}
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return fmt.Errorf("refusing to remove outside root: %s", target)
	}
	return os.RemoveAll(target)
}

func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 127
}

func withTimeoutFromEnv(ctx context.Context, key string, def time.Duration) (context.Context, context.CancelFunc, time.Duration) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		raw = def.String()
	}
	if raw == "0" || raw == "0s" {
		return ctx, nil, 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		d = def
	}
	next, cancel := context.WithTimeout(ctx, d)
	return next, cancel, d
}

func envMap(env []string) map[string]string {
	out := make(map[string]string, len(env))
	for _, entry := range env {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		out[key] = value
	}
	return out
}

func envSlice(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}

func withEnv(env []string, key, value string) []string {
	m := envMap(env)
	m[key] = value
	return envSlice(m)
}

func getEnv(env []string, key string) string {
	m := envMap(env)
	return m[key]
}

func tmpprojDirName() string {
	raw := strings.TrimSpace(os.Getenv("DBTX_CMDTEST_ID"))
	if raw != "" {
		safe := make([]rune, 0, len(raw))
		for _, r := range raw {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
				safe = append(safe, r)
				continue
			}
			safe = append(safe, '_')
		}
		id := strings.Trim(strings.TrimSpace(string(safe)), "._-")
		if id != "" {
			return "tmpproj-" + id
		}
	}

	// Fallback: unique, non-guessable ID to avoid collisions in /tmp.
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("tmpproj-%d", os.Getpid())
	}
	return "tmpproj-" + hex.EncodeToString(b[:])
}
