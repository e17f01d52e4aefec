package dbtutil

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// supportedRange is the dbt-core version window dbtx is tested against.
// Artifact schemas and CLI flags outside this window are not guaranteed
// to match what the wrapper expects.
const supportedRange = ">= 1.7.0, < 1.10.0"

// Version runs `dbt --version` and extracts the installed core version.
func Version(dir, bin string) (*semver.Version, error) {
	out, err := Run(dir, bin, "--version")
	if err != nil {
		return nil, err
	}
	return parseVersionOutput(out)
}

// parseVersionOutput handles both dbt's modern multi-line layout
//
//	Core:
//	  - installed: 1.8.2
//	  - latest:    1.8.4
//
// and the older single line `installed version: 1.7.11`.
func parseVersionOutput(out string) (*semver.Version, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		for _, prefix := range []string{"installed:", "installed version:"} {
			if rest, ok := strings.CutPrefix(line, prefix); ok {
				v, err := semver.NewVersion(strings.TrimSpace(rest))
				if err != nil {
					return nil, fmt.Errorf("parse dbt version %q: %w", strings.TrimSpace(rest), err)
				}
				return v, nil
			}
		}
	}
	return nil, fmt.Errorf("unable to find installed version in `dbt --version` output:\n%s", out)
}

// CheckSupported verifies the installed dbt version falls inside the
// supported range.
func CheckSupported(v *semver.Version) error {
	constraint, err := semver.NewConstraint(supportedRange)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("unsupported dbt version %s; dbtx supports %s", v, supportedRange)
	}
	return nil
}
