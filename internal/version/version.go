package version

import (
	"runtime/debug"
	"strings"
)

// version is injected at release time via
// -ldflags "-X github.com/dbtx/dbtx/internal/version.version=v1.2.3".
var version string

// String reports the build's version: the injected release version,
// the module version from build info, or "(devel)".
func String() string {
	if version != "" {
		return version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(devel)"
	}
	v := info.Main.Version
	if v == "" || v == "(devel)" || strings.Contains(v, "+dirty") || isPseudoVersion(v) {
		return "(devel)"
	}
	return v
}

func isPseudoVersion(v string) bool {
	v, _, _ = strings.Cut(v, "+")

	parts := strings.Split(v, "-")
	if len(parts) < 3 {
		return false
	}

	ts := parts[len(parts)-2]
	hash := parts[len(parts)-1]
	if len(ts) != 14 || !allDigits(ts) {
		return false
	}
	return len(hash) >= 12 && allHex(hash)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func allHex(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= '0' && b <= '9':
		case b >= 'a' && b <= 'f':
		case b >= 'A' && b <= 'F':
		default:
			return false
		}
	}
	return true
}
