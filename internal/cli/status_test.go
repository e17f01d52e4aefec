package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dbtx/dbtx/artifacts"
	"github.com/dbtx/dbtx/internal/config"
	"github.com/dbtx/dbtx/internal/project"
)

func newCaptureCommand() (*cobra.Command, *strings.Builder, *strings.Builder) {
	cmd := &cobra.Command{}
	var out, errOut strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

func TestStatusGlyph(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	cases := []struct {
		status string
		want   string
	}{
		{"success", "✓"},
		{"pass", "✓"},
		{"warn", "!"},
		{"skipped", "-"},
		{"error", "✗"},
		{"fail", "✗"},
		{"mystery", "?"},
	}
	for _, tc := range cases {
		if got := statusGlyph(artifacts.NodeResult{Status: tc.status}); got != tc.want {
			t.Fatalf("statusGlyph(%q) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestPrintRunHeader(t *testing.T) {
	cmd, out, _ := newCaptureCommand()
	proj := &project.Project{
		Spec:   project.Spec{Name: "shop"},
		Config: config.Default(),
	}
	now := time.Date(2026, time.March, 1, 12, 5, 0, 0, time.UTC)
	results := &artifacts.RunResults{
		Metadata: artifacts.Metadata{GeneratedAt: now.Add(-3 * time.Minute)},
		Args:     artifacts.RunArgs{Command: "build", Target: "prod"},
		Elapsed:  12.5,
	}

	printRunHeader(cmd, proj, results, now)

	want := "shop: dbt build --target prod, 3 min ago (12.5s)\n"
	if out.String() != want {
		t.Fatalf("header = %q, want %q", out.String(), want)
	}
}

func TestPrintNodeTable(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	cmd, out, _ := newCaptureCommand()
	results := &artifacts.RunResults{
		Results: []artifacts.NodeResult{
			{UniqueID: "model.shop.orders", Status: "success", ExecutionTime: 1.21},
			{UniqueID: "model.shop.customers", Status: "error", Message: "relation missing\nsee logs", ExecutionTime: 0.3},
		},
	}

	printNodeTable(cmd, results, 120)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if !strings.Contains(lines[0], "✓ model.shop.orders") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[0], "1.2s") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "✗ model.shop.customers") {
		t.Fatalf("line 1 = %q", lines[1])
	}
	if !strings.Contains(lines[1], "relation missing see logs") {
		t.Fatalf("line 1 = %q", lines[1])
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("short", 80); got != "short" {
		t.Fatalf("truncateLine = %q", got)
	}
	got := truncateLine(strings.Repeat("x", 50), 20)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncateLine = %q, want ellipsis suffix", got)
	}
	if len([]rune(got)) > 20 {
		t.Fatalf("truncateLine = %q, too long", got)
	}
}

func TestTruncateLineIgnoresColorEscapes(t *testing.T) {
	old := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = old })

	colored := "  " + colorStatusGood("✓") + " model.shop.orders"
	if !strings.Contains(colored, "\x1b[") {
		t.Fatal("fixture carries no escapes")
	}

	// Visible width is 21; the escapes must not push it over 25.
	if got := truncateLine(colored, 25); got != colored {
		t.Fatalf("truncateLine = %q, want unchanged", got)
	}

	got := truncateLine(colored, 10)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncateLine = %q, want ellipsis suffix", got)
	}
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("truncateLine = %q, escapes dropped", got)
	}
	if w := lineWidth(got); w > 10 {
		t.Fatalf("visible width = %d, want <= 10 (%q)", w, got)
	}
}

func TestWarnRunningInvocations(t *testing.T) {
	t.Setenv("DBTX_PROCESS_TEST_DATA", `[
		{"pid": 41, "command": "dbt", "cwd": "/work/shop"},
		{"pid": 42, "command": "vim", "cwd": "/work/shop"}
	]`)

	cmd, _, errOut := newCaptureCommand()
	proj := &project.Project{Root: "/work/shop"}

	warnRunningInvocations(cmd, proj)

	if !strings.Contains(errOut.String(), "dbt (pid 41) is running in this project") {
		t.Fatalf("stderr = %q", errOut.String())
	}
	if strings.Contains(errOut.String(), "vim") {
		t.Fatalf("stderr = %q", errOut.String())
	}
}
