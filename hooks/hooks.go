// Package hooks lets embedding programs observe dbt invocations.
//
// Callbacks are registered under dotted names (for example
// "audit.LogRuns") and referenced from configuration: either the
// callbacks list in dbtx.toml or the dbt_callbacks project var in
// dbt_project.yml. Registration happens at program start, typically
// from an init function, in the same spirit as database/sql drivers.
package hooks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dbtx/dbtx/artifacts"
)

// Phase identifies where in the invocation lifecycle an event fires.
type Phase string

const (
	BeforeRun Phase = "before-run"
	AfterRun  Phase = "after-run"
)

// Event describes one dbt invocation as seen by a callback.
type Event struct {
	Phase   Phase
	Command string
	Args    []string

	// Result and Err are only populated for AfterRun. Result may be
	// nil when dbt produced no run_results artifact.
	Result *artifacts.RunResults
	Err    error
}

// Callback is a user-supplied hook invoked around the dbt lifecycle.
// An error returned from a BeforeRun event aborts the invocation.
type Callback func(ctx context.Context, event Event) error

var (
	mu       sync.RWMutex
	registry = make(map[string]Callback)
)

// Register makes a callback available under the given dotted name.
// It panics if the name is invalid or already taken.
func Register(name string, cb Callback) {
	if err := ValidateName(name); err != nil {
		panic(fmt.Sprintf("hooks: %v", err))
	}
	if cb == nil {
		panic("hooks: Register callback is nil")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("hooks: Register called twice for callback %q", name))
	}
	registry[name] = cb
}

// Resolve looks up a registered callback by its dotted name.
func Resolve(name string) (Callback, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	mu.RLock()
	defer mu.RUnlock()
	cb, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("callback %q is not registered; known callbacks: %s", name, knownNames())
	}
	return cb, nil
}

// ResolveList resolves a comma-separated list of callback names, the
// format of the dbt_callbacks project var.
func ResolveList(names string) ([]Callback, error) {
	var callbacks []Callback
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cb, err := Resolve(name)
		if err != nil {
			return nil, err
		}
		callbacks = append(callbacks, cb)
	}
	return callbacks, nil
}

// Names lists all registered callback names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateName enforces the dotted-name rule shared with adapters.
func ValidateName(name string) error {
	if !strings.Contains(name, ".") {
		return fmt.Errorf("unexpected callback name %q, expecting something like `mypackage.MyCallback`", name)
	}
	return nil
}

func knownNames() string {
	if len(registry) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// reset clears the registry; tests only.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]Callback)
}
