// dbtstub is a hermetic stand-in for the `dbt` CLI used by transcript
// tests. It understands just enough of dbt's surface to exercise the
// wrapper: `--version`, the standard verbs, and artifact writing.
//
// Behavior is steered through the environment:
//   - DBT_STUB_VERSION: version reported by `dbt --version` (default 1.8.2).
//   - DBT_STUB_EXIT: exit code for verb invocations (default 0).
//   - DBT_STUB_RESULTS_FILE: run_results.json payload to install verbatim.
//   - DBT_STUB_MANIFEST_FILE: manifest.json payload to install verbatim.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "dbt stub: missing arguments")
		os.Exit(1)
	}

	if args[0] == "--version" {
		version := getenvDefault("DBT_STUB_VERSION", "1.8.2")
		fmt.Printf("Core:\n  - installed: %s\n  - latest:    %s\n", version, version)
		os.Exit(0)
	}

	verb := args[0]
	projectDir := flagValue(args, "--project-dir")
	if projectDir == "" {
		projectDir = mustGetwd()
	}
	target := getenvDefault("DBT_STUB_TARGET", flagValue(args, "--target"))

	switch verb {
	case "run", "build", "test", "seed", "snapshot", "compile", "parse", "docs":
	default:
		fmt.Fprintf(os.Stderr, "dbt stub cannot handle: %s\n", strings.Join(args, " "))
		os.Exit(1)
	}

	exitCode := 0
	if raw := os.Getenv("DBT_STUB_EXIT"); raw != "" {
		code, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dbt stub: bad DBT_STUB_EXIT %q\n", raw)
			os.Exit(1)
		}
		exitCode = code
	}

	fmt.Printf("Running with dbt=%s\n", getenvDefault("DBT_STUB_VERSION", "1.8.2"))

	if !contains(args, "--no-write-json") {
		if err := writeArtifacts(projectDir, verb, target, exitCode); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if exitCode != 0 {
		fmt.Println("Completed with 1 error:")
		fmt.Println("  Database Error in model customers")
	} else {
		fmt.Println("Completed successfully")
	}
	os.Exit(exitCode)
}

func writeArtifacts(projectDir, verb, target string, exitCode int) error {
	targetDir := filepath.Join(projectDir, "target")
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return err
	}

	results := defaultRunResults(verb, target, exitCode)
	if path := os.Getenv("DBT_STUB_RESULTS_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("dbt stub: %w", err)
		}
		results = string(data)
	}
	if err := os.WriteFile(filepath.Join(targetDir, "run_results.json"), []byte(results), 0o644); err != nil {
		return err
	}

	if verb != "parse" {
		return nil
	}
	manifest := defaultManifest()
	if path := os.Getenv("DBT_STUB_MANIFEST_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("dbt stub: %w", err)
		}
		manifest = string(data)
	}
	return os.WriteFile(filepath.Join(targetDir, "manifest.json"), []byte(manifest), 0o644)
}

func defaultRunResults(verb, target string, exitCode int) string {
	if target == "" {
		target = "dev"
	}
	status := "success"
	extra := ""
	if exitCode != 0 {
		extra = `,
    {"unique_id": "model.shop.customers", "status": "error", "message": "Database Error in model customers", "execution_time": 0.1}`
	}
	return fmt.Sprintf(`{
  "metadata": {"dbt_version": %q, "generated_at": "2000-01-02T00:00:00Z", "invocation_id": "stub"},
  "args": {"which": %q, "target": %q},
  "elapsed_time": 1.5,
  "results": [
    {"unique_id": "model.shop.orders", "status": %q, "message": "OK", "execution_time": 1.2}%s
  ]
}`, getenvDefault("DBT_STUB_VERSION", "1.8.2"), verb, target, status, extra)
}

func defaultManifest() string {
	return `{
  "metadata": {"dbt_version": "1.8.2"},
  "nodes": {
    "model.shop.orders": {"unique_id": "model.shop.orders", "name": "orders", "resource_type": "model", "path": "orders.sql"},
    "model.shop.customers": {"unique_id": "model.shop.customers", "name": "customers", "resource_type": "model", "path": "customers.sql"},
    "test.shop.not_null_orders_id": {"unique_id": "test.shop.not_null_orders_id", "name": "not_null_orders_id", "resource_type": "test", "path": "schema.yml"}
  },
  "sources": {
    "source.shop.raw_orders": {"unique_id": "source.shop.raw_orders", "name": "raw_orders", "resource_type": "source"}
  }
}`
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

func contains(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag {
			return true
		}
	}
	return false
}

func getenvDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return wd
}
