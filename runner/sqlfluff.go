package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbtx/dbtx/internal/dbtutil"
	"github.com/dbtx/dbtx/internal/logging"
)

// DefaultSqlfluffBinary is the linter executable used when dbtx.toml
// does not name one.
const DefaultSqlfluffBinary = "sqlfluff"

// Lint runs `sqlfluff lint` inside the project, streaming its output.
func (r *Runner) Lint(ctx context.Context, args []string) error {
	return r.runSqlfluff(ctx, "lint", args)
}

// Fix runs `sqlfluff fix` inside the project, streaming its output.
func (r *Runner) Fix(ctx context.Context, args []string) error {
	return r.runSqlfluff(ctx, "fix", args)
}

func (r *Runner) runSqlfluff(ctx context.Context, verb string, args []string) error {
	bin := r.Project.Config.SqlfluffBin
	if bin == "" {
		bin = DefaultSqlfluffBinary
	}

	runArgs := append([]string{verb}, args...)
	logging.L().Info("running sqlfluff", "args", strings.Join(runArgs, " "))
	if err := dbtutil.RunStreamed(ctx, r.Project.Root, bin, r.stdout(), r.stderr(), nil, runArgs...); err != nil {
		return fmt.Errorf("sqlfluff %s failed (exit %d): %w", verb, dbtutil.ExitCode(err), err)
	}
	return nil
}
