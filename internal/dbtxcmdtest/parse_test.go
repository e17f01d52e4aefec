package main

import (
	"strings"
	"testing"
)

func TestParseArgs(t *testing.T) {
	cases := []struct {
		name    string
		args    []string
		wantErr string
		check   func(t *testing.T, opts options, cmd []string)
	}{
		{
			name: "plain",
			args: []string{"--", "dbtx", "status"},
			check: func(t *testing.T, opts options, cmd []string) {
				if opts.skipInit || opts.noProfiles || opts.keepProj {
					t.Fatalf("unexpected options: %+v", opts)
				}
				if len(cmd) != 2 || cmd[0] != "dbtx" {
					t.Fatalf("cmd = %v", cmd)
				}
			},
		},
		{
			name: "flags",
			args: []string{"--skip-init", "--no-profiles", "--workdir", "models", "--", "dbtx", "doctor"},
			check: func(t *testing.T, opts options, cmd []string) {
				if !opts.skipInit || !opts.noProfiles {
					t.Fatalf("options = %+v", opts)
				}
				if opts.workdir != "models" {
					t.Fatalf("workdir = %q", opts.workdir)
				}
			},
		},
		{
			name:    "absoluteWorkdir",
			args:    []string{"--workdir", "/etc", "--", "dbtx"},
			wantErr: "workdir must be a relative path",
		},
		{
			name:    "escapingWorkdir",
			args:    []string{"--workdir", "../outside", "--", "dbtx"},
			wantErr: "must not escape",
		},
		{
			name:    "missingCommand",
			args:    []string{"--skip-init"},
			wantErr: "missing command",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts, cmd, err := parseArgs(tc.args)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs: %v", err)
			}
			tc.check(t, opts, cmd)
		})
	}
}
