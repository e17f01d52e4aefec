package processes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupported = errors.New("process detection unsupported")

	testDataInlineEnv      = "DBTX_PROCESS_TEST_DATA"
	testDataFileEnv        = "DBTX_PROCESS_TEST_DATA_FILE"
	minimumCommandFallback = "process"
)

// Process is one process owned by the current user.
type Process struct {
	PID     int    `json:"pid"`
	Command string `json:"command"`
	CWD     string `json:"cwd"`
	PPID    int    `json:"ppid"`
}

// List enumerates the current user's processes with their working
// directories. Test data env vars take precedence over native listing.
func List() ([]Process, error) {
	if procs, ok, err := fromTestData(); err != nil || ok {
		return procs, err
	}
	return listNative(os.Getuid())
}

// DbtWithin filters procs to dbt invocations whose working directory
// falls under root. The wrapper's own process is excluded by PID.
func DbtWithin(procs []Process, root string, selfPID int) []Process {
	var matches []Process
	for _, proc := range procs {
		if proc.PID == selfPID {
			continue
		}
		if !isDbtCommand(proc.Command) {
			continue
		}
		if !within(proc.CWD, root) {
			continue
		}
		matches = append(matches, proc)
	}
	return matches
}

func isDbtCommand(command string) bool {
	base := filepath.Base(strings.TrimSpace(command))
	return base == "dbt" || base == "dbtx" || strings.HasPrefix(base, "dbt-")
}

func within(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}

func fromTestData() ([]Process, bool, error) {
	if path := os.Getenv(testDataFileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, true, fmt.Errorf("read %s: %w", path, err)
		}
		procs, err := decodeTestData(data)
		return procs, true, err
	}
	if data := os.Getenv(testDataInlineEnv); data != "" {
		procs, err := decodeTestData([]byte(data))
		return procs, true, err
	}
	return nil, false, nil
}

func decodeTestData(data []byte) ([]Process, error) {
	var procs []Process
	if err := json.Unmarshal(data, &procs); err != nil {
		return nil, fmt.Errorf("parse dbtx process test data: %w", err)
	}
	return procs, nil
}

func sanitizeCommand(cmd string, pid int) string {
	if cmd != "" {
		return cmd
	}
	return fmt.Sprintf("%s-%d", minimumCommandFallback, pid)
}
