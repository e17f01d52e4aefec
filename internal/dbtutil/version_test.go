package dbtutil

import (
	"context"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
)

func TestParseVersionOutput(t *testing.T) {
	cases := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{
			name: "modern",
			out:  "Core:\n  - installed: 1.8.2\n  - latest:    1.8.4\n\nPlugins:\n  - duckdb: 1.8.1",
			want: "1.8.2",
		},
		{
			name: "legacy",
			out:  "installed version: 1.7.11\n   latest version: 1.8.0",
			want: "1.7.11",
		},
		{
			name:    "garbage",
			out:     "dbt: command output changed",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := parseVersionOutput(tc.out)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseVersionOutput(%q) succeeded, want error", tc.out)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVersionOutput: %v", err)
			}
			if v.String() != tc.want {
				t.Fatalf("version = %s, want %s", v, tc.want)
			}
		})
	}
}

func TestCheckSupported(t *testing.T) {
	cases := []struct {
		version string
		ok      bool
	}{
		{"1.7.0", true},
		{"1.8.9", true},
		{"1.9.4", true},
		{"1.6.11", false},
		{"1.10.0", false},
	}

	for _, tc := range cases {
		t.Run(tc.version, func(t *testing.T) {
			err := CheckSupported(semver.MustParse(tc.version))
			if tc.ok && err != nil {
				t.Fatalf("CheckSupported(%s) = %v, want nil", tc.version, err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatalf("CheckSupported(%s) = nil, want error", tc.version)
				}
				if !strings.Contains(err.Error(), "unsupported dbt version") {
					t.Fatalf("error = %v", err)
				}
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("ExitCode(nil) = %d", got)
	}
	err := RunStreamed(context.Background(), t.TempDir(), "/bin/sh", nil, nil, nil, "-c", "exit 3")
	if got := ExitCode(err); got != 3 {
		t.Fatalf("ExitCode = %d, want 3 (err=%v)", got, err)
	}
}
