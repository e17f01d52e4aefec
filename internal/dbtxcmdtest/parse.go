// Argument parsing for the `dbtxcmdtest` harness.
//
// Supported flags:
//   - `--skip-init` (leave the project without a dbtx.toml)
//   - `--no-profiles` (omit profiles.yml, for doctor failure transcripts)
//   - `--workdir <dir>` (cd under the temp project before running)
//   - `--keep` (preserve the temp project for debugging)
//   - `-h/--help`
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

type options struct {
	skipInit   bool
	noProfiles bool
	workdir    string
	keepProj   bool
	help       bool
}

func parseArgs(args []string) (options, []string, error) {
	var opts options

	fs := flag.NewFlagSet("dbtxcmdtest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&opts.skipInit, "skip-init", false, "")
	fs.BoolVar(&opts.noProfiles, "no-profiles", false, "")
	fs.StringVar(&opts.workdir, "workdir", "", "")
	fs.BoolVar(&opts.keepProj, "keep", false, "")

	fs.BoolVar(&opts.help, "help", false, "")
	fs.BoolVar(&opts.help, "h", false, "")

	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	if opts.help {
		return opts, nil, nil
	}

	if opts.workdir != "" {
		if filepath.IsAbs(opts.workdir) {
			return options{}, nil, errors.New("workdir must be a relative path")
		}
		clean := filepath.Clean(opts.workdir)
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return options{}, nil, fmt.Errorf("workdir must not escape the project root: %q", opts.workdir)
		}
	}

	cmd := fs.Args()
	if len(cmd) == 0 {
		return options{}, nil, errors.New("missing command")
	}

	return opts, cmd, nil
}
