package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dbtx/dbtx/artifacts"
	"github.com/dbtx/dbtx/internal/processes"
	"github.com/dbtx/dbtx/internal/project"
	"github.com/dbtx/dbtx/internal/timefmt"
)

const fallbackTermWidth = 100

var (
	colorStatusGood = color.New(color.FgGreen).SprintFunc()
	colorStatusBad  = color.New(color.FgRed, color.Bold).SprintFunc()
	colorStatusWarn = color.New(color.FgYellow).SprintFunc()
	colorStatusDim  = color.New(color.FgHiBlack).SprintFunc()
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the project's most recent dbt invocation",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	proj, err := loadProjectFromWD()
	if err != nil {
		return err
	}

	warnRunningInvocations(cmd, proj)

	results, err := artifacts.LoadRunResults(proj.TargetPath())
	if err != nil {
		if errors.Is(err, artifacts.ErrMissing) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: no runs recorded yet (try `dbtx run`)\n", proj.Spec.Name)
			return nil
		}
		return err
	}

	printRunHeader(cmd, proj, results, currentTimeOverride())
	printNodeTable(cmd, results, terminalWidth())
	return nil
}

func printRunHeader(cmd *cobra.Command, proj *project.Project, results *artifacts.RunResults, now time.Time) {
	command := results.Args.Command
	if command == "" {
		command = "run"
	}
	target := results.Args.Target
	if target == "" {
		target = proj.Config.DefaultTarget
	}
	fmt.Fprintf(
		cmd.OutOrStdout(),
		"%s: dbt %s --target %s, %s (%s)\n",
		proj.Spec.Name,
		command,
		target,
		timefmt.Relative(results.Metadata.GeneratedAt, now),
		timefmt.Seconds(results.Elapsed),
	)
}

func printNodeTable(cmd *cobra.Command, results *artifacts.RunResults, width int) {
	idWidth := 0
	for _, node := range results.Results {
		if w := runewidth.StringWidth(node.UniqueID); w > idWidth {
			idWidth = w
		}
	}

	for _, node := range results.Results {
		glyph := statusGlyph(node)
		elapsed := timefmt.Seconds(node.ExecutionTime)
		line := fmt.Sprintf(
			"  %s %s %6s",
			glyph,
			runewidth.FillRight(node.UniqueID, idWidth),
			elapsed,
		)
		if node.Failed() && node.Message != "" {
			line += "  " + singleLine(node.Message)
		}
		fmt.Fprintln(cmd.OutOrStdout(), truncateLine(line, width))
	}
}

func statusGlyph(node artifacts.NodeResult) string {
	switch node.Status {
	case "success", "pass":
		return colorStatusGood("✓")
	case "warn":
		return colorStatusWarn("!")
	case "skipped":
		return colorStatusDim("-")
	default:
		if node.Failed() {
			return colorStatusBad("✗")
		}
		return "?"
	}
}

func warnRunningInvocations(cmd *cobra.Command, proj *project.Project) {
	procs, err := processes.List()
	if err != nil {
		return
	}
	running := processes.DbtWithin(procs, proj.Root, os.Getpid())
	for _, proc := range running {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s (pid %d) is running in this project\n", proc.Command, proc.PID)
	}
}

func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return fallbackTermWidth
}

// truncateLine trims the line to the display width, accounting for
// wide runes. Color escape sequences are copied through and take no
// width.
func truncateLine(line string, width int) string {
	if width <= 0 || lineWidth(line) <= width {
		return line
	}

	var b strings.Builder
	used := 0
	for i := 0; i < len(line); {
		if esc, ok := cutEscape(line[i:]); ok {
			b.WriteString(esc)
			i += len(esc)
			continue
		}
		r, size := utf8.DecodeRuneInString(line[i:])
		w := runewidth.RuneWidth(r)
		if used+w > width-1 {
			break
		}
		b.WriteRune(r)
		used += w
		i += size
	}
	b.WriteString("…")
	return b.String()
}

// lineWidth measures display width, skipping color escape sequences.
func lineWidth(line string) int {
	width := 0
	for i := 0; i < len(line); {
		if esc, ok := cutEscape(line[i:]); ok {
			i += len(esc)
			continue
		}
		r, size := utf8.DecodeRuneInString(line[i:])
		width += runewidth.RuneWidth(r)
		i += size
	}
	return width
}

// cutEscape returns the SGR escape sequence at the start of s, if any.
func cutEscape(s string) (string, bool) {
	if !strings.HasPrefix(s, "\x1b[") {
		return "", false
	}
	end := strings.IndexByte(s, 'm')
	if end < 0 {
		return "", false
	}
	return s[:end+1], true
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

func currentTimeOverride() time.Time {
	if override := os.Getenv("DBTX_NOW"); override != "" {
		if t, err := time.Parse(time.RFC3339, override); err == nil {
			return t
		}
	}
	return time.Now()
}
