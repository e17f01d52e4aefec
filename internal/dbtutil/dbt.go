package dbtutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultBinary is the executable used when no override is configured.
const DefaultBinary = "dbt"

// Binary resolves the dbt executable to invoke: explicit override first,
// otherwise the default name looked up on PATH at exec time.
func Binary(override string) string {
	if override != "" {
		return override
	}
	return DefaultBinary
}

// Run executes dbt within dir and returns trimmed stdout.
func Run(dir, bin string, args ...string) (string, error) {
	cmd := exec.Command(Binary(bin), args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %v\n%s", commandName(bin), strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RunStreamed executes dbt within dir, wiring output to the given writers.
// The returned error preserves the subprocess exit status.
func RunStreamed(ctx context.Context, dir, bin string, stdout, stderr io.Writer, env []string, args ...string) error {
	cmd := exec.CommandContext(ctx, Binary(bin), args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Stdin = os.Stdin
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", commandName(bin), strings.Join(args, " "), err)
	}
	return nil
}

// commandName is the short name used in error text; overrides may be
// full paths.
func commandName(bin string) string {
	return filepath.Base(Binary(bin))
}

// ExitCode extracts the subprocess exit status from a Run/RunStreamed error.
// Errors that carry no exit status report -1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
