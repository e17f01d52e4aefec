package main_test

import (
	"embed"
	"os"
	"os/exec"
	"path"
	"strings"
	"testing"
)

// Embed the fixtures so editing a transcript invalidates the test cache.
//
//go:embed transcripts/*.cmdt
var transcriptFS embed.FS

func TestTranscripts(t *testing.T) {
	if _, err := exec.LookPath("transcript"); err != nil {
		t.Skipf("transcript not found on PATH (run via `mise run test`): %v", err)
	}

	entries, err := transcriptFS.ReadDir("transcripts")
	if err != nil {
		t.Fatalf("read embedded transcripts: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no transcripts found under transcripts/*.cmdt")
	}

	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		fixture := path.Join("transcripts", entry.Name())

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cmd := exec.Command("transcript", "check", fixture)
			cmd.Env = append(os.Environ(),
				"DBTX_CMDTEST_ID="+name,
				"DBTX_CMDTEST_TIMEOUT=60s",
			)

			out, err := cmd.CombinedOutput()
			if err != nil {
				t.Fatalf("transcript check failed for %s: %v\n%s", fixture, err, out)
			}
		})
	}
}
