package adapters

import (
	"strings"
	"testing"
)

type stubAdapter struct {
	typ string
	env []string
}

func (a stubAdapter) Type() string  { return a.typ }
func (a stubAdapter) Env() []string { return a.env }

func TestConfiguredNamePrecedence(t *testing.T) {
	cases := []struct {
		name        string
		cliVars     map[string]any
		projectVars map[string]any
		want        string
	}{
		{
			name:        "cliWins",
			cliVars:     map[string]any{VarName: "custom.DuckDB"},
			projectVars: map[string]any{VarName: "custom.Postgres"},
			want:        "custom.DuckDB",
		},
		{
			name:        "projectFallback",
			projectVars: map[string]any{VarName: "custom.Postgres"},
			want:        "custom.Postgres",
		},
		{
			name:        "blankCLIIgnored",
			cliVars:     map[string]any{VarName: "   "},
			projectVars: map[string]any{VarName: "custom.Postgres"},
			want:        "custom.Postgres",
		},
		{
			name:        "nonStringIgnored",
			projectVars: map[string]any{VarName: 42},
			want:        "",
		},
		{
			name: "unset",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConfiguredName(tc.cliVars, tc.projectVars); got != tc.want {
				t.Fatalf("ConfiguredName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRegisterAndResolve(t *testing.T) {
	t.Cleanup(reset)

	Register("custom.DuckDB", func(vars map[string]any) (Adapter, error) {
		return stubAdapter{typ: "duckdb", env: []string{"DUCKDB_PATH=dev.duckdb"}}, nil
	})

	factory, err := Resolve("custom.DuckDB")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	adapter, err := factory(nil)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if adapter.Type() != "duckdb" {
		t.Fatalf("Type = %q", adapter.Type())
	}
	if len(adapter.Env()) != 1 {
		t.Fatalf("Env = %v", adapter.Env())
	}
}

func TestResolveUnknown(t *testing.T) {
	t.Cleanup(reset)

	_, err := Resolve("custom.Missing")
	if err == nil || !strings.Contains(err.Error(), `adapter "custom.Missing" is not registered`) {
		t.Fatalf("error = %v", err)
	}
}

func TestResolveRejectsUndottedName(t *testing.T) {
	_, err := Resolve("nodots")
	if err == nil || !strings.Contains(err.Error(), "expecting something like") {
		t.Fatalf("error = %v", err)
	}
}
