package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newSqlfluffStub(t *testing.T, proj string, exitCode int) string {
	t.Helper()
	argsFile := filepath.Join(proj, "sqlfluff-args.txt")
	script := "#!/bin/sh\n" +
		fmt.Sprintf("echo \"$@\" > %q\n", argsFile) +
		fmt.Sprintf("exit %d\n", exitCode)
	stub := filepath.Join(proj, "sqlfluff-stub")
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return argsFile
}

func TestLintRunsSqlfluff(t *testing.T) {
	proj, _ := newTestProject(t, passingRunResults, 0, "")
	argsFile := newSqlfluffStub(t, proj.Root, 0)
	proj.Config.SqlfluffBin = filepath.Join(proj.Root, "sqlfluff-stub")

	r := silence(New(proj))
	if err := r.Lint(context.Background(), []string{"models"}); err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if got := recordedArgs(t, argsFile); got != "lint models" {
		t.Fatalf("args = %q", got)
	}
}

func TestFixSurfacesExitStatus(t *testing.T) {
	proj, _ := newTestProject(t, passingRunResults, 0, "")
	argsFile := newSqlfluffStub(t, proj.Root, 2)
	proj.Config.SqlfluffBin = filepath.Join(proj.Root, "sqlfluff-stub")

	r := silence(New(proj))
	err := r.Fix(context.Background(), []string{"--rules", "L010"})
	if err == nil || !strings.Contains(err.Error(), "sqlfluff fix failed (exit 2)") {
		t.Fatalf("error = %v", err)
	}
	if got := recordedArgs(t, argsFile); got != "fix --rules L010" {
		t.Fatalf("args = %q", got)
	}
}
