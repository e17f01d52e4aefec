package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrMissing indicates the requested artifact has not been written yet.
var ErrMissing = errors.New("artifact not found; has dbt run in this project?")

// RunResults mirrors the parts of target/run_results.json that the
// wrapper surfaces to callers.
type RunResults struct {
	Metadata Metadata     `json:"metadata"`
	Args     RunArgs      `json:"args"`
	Results  []NodeResult `json:"results"`
	Elapsed  float64      `json:"elapsed_time"`
}

type Metadata struct {
	SchemaVersion string    `json:"dbt_schema_version"`
	DbtVersion    string    `json:"dbt_version"`
	GeneratedAt   time.Time `json:"generated_at"`
	InvocationID  string    `json:"invocation_id"`
}

type RunArgs struct {
	Command string `json:"which"`
	Target  string `json:"target"`
}

// NodeResult is the outcome of a single node execution.
type NodeResult struct {
	UniqueID      string  `json:"unique_id"`
	Status        string  `json:"status"`
	Message       string  `json:"message"`
	ExecutionTime float64 `json:"execution_time"`
}

// Failed reports whether the node ended in an error-like status.
func (r NodeResult) Failed() bool {
	switch r.Status {
	case "error", "fail", "runtime error":
		return true
	}
	return false
}

// LoadRunResults reads run_results.json from the given target directory.
func LoadRunResults(targetDir string) (*RunResults, error) {
	path := filepath.Join(targetDir, "run_results.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrMissing)
		}
		return nil, err
	}
	var results RunResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &results, nil
}

// Errored returns the node results that ended in failure.
func (r *RunResults) Errored() []NodeResult {
	var failed []NodeResult
	for _, result := range r.Results {
		if result.Failed() {
			failed = append(failed, result)
		}
	}
	return failed
}

// Counts tallies node results by status.
func (r *RunResults) Counts() map[string]int {
	counts := make(map[string]int)
	for _, result := range r.Results {
		counts[result.Status]++
	}
	return counts
}
