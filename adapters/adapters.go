// Package adapters resolves user-supplied warehouse adapters by name.
//
// dbt owns the adapter protocol; dbtx only decides which adapter a
// project asked for and validates that the embedding program actually
// registered it. The configured name comes from the dbt_custom_adapter
// var, with command-line vars taking precedence over dbt_project.yml.
package adapters

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// VarName is the var key holding the custom adapter name.
const VarName = "dbt_custom_adapter"

// Adapter is a registered warehouse adapter customization. Env is
// appended to the dbt subprocess environment so the Python-side shim
// can pick the customization up.
type Adapter interface {
	Type() string
	Env() []string
}

// Factory builds an adapter from the project's global vars.
type Factory func(vars map[string]any) (Adapter, error)

var (
	mu       sync.RWMutex
	registry = make(map[string]Factory)
)

// Register makes an adapter factory available under a dotted name.
// It panics if the name is invalid or already taken.
func Register(name string, factory Factory) {
	if err := validateName(name); err != nil {
		panic(fmt.Sprintf("adapters: %v", err))
	}
	if factory == nil {
		panic("adapters: Register factory is nil")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("adapters: Register called twice for adapter %q", name))
	}
	registry[name] = factory
}

// ConfiguredName determines which adapter the invocation asked for.
// Command-line vars win over project vars; blank values are ignored.
// An empty result means no custom adapter is configured.
func ConfiguredName(cliVars, projectVars map[string]any) string {
	if name := varString(cliVars); name != "" {
		return name
	}
	return varString(projectVars)
}

func varString(vars map[string]any) string {
	raw, ok := vars[VarName]
	if !ok {
		return ""
	}
	name, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(name)
}

// Resolve looks up a registered adapter factory by its dotted name.
func Resolve(name string) (Factory, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	mu.RLock()
	defer mu.RUnlock()
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("adapter %q is not registered; known adapters: %s", name, knownNames())
	}
	return factory, nil
}

// Names lists all registered adapter names, sorted.
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

func validateName(name string) error {
	if !strings.Contains(name, ".") {
		return fmt.Errorf("unexpected adapter name %q, expecting something like `mypackage.MyAdapter`", name)
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
	registry = make(map[string]Factory)
}
