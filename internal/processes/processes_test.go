package processes

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestListUsesInlineTestData(t *testing.T) {
	data, err := json.Marshal([]Process{{PID: 7, Command: "dbt", CWD: "/work/shop"}})
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(testDataInlineEnv, string(data))

	procs, err := List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(procs) != 1 || procs[0].PID != 7 {
		t.Fatalf("procs = %v", procs)
	}
}

func TestListUsesFileTestData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "procs.json")
	if err := os.WriteFile(path, []byte(`[{"pid": 9, "command": "dbt", "cwd": "/work"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(testDataFileEnv, path)

	procs, err := List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(procs) != 1 || procs[0].PID != 9 {
		t.Fatalf("procs = %v", procs)
	}
}

func TestDbtWithin(t *testing.T) {
	procs := []Process{
		{PID: 1, Command: "dbt", CWD: "/work/shop"},
		{PID: 2, Command: "dbt", CWD: "/work/shop/models"},
		{PID: 3, Command: "dbt", CWD: "/elsewhere"},
		{PID: 4, Command: "vim", CWD: "/work/shop"},
		{PID: 5, Command: "/usr/local/bin/dbt-1.8", CWD: "/work/shop"},
		{PID: 6, Command: "dbtx", CWD: "/work/shop"},
	}

	got := DbtWithin(procs, "/work/shop", 6)
	if len(got) != 3 {
		t.Fatalf("DbtWithin = %v, want 3 entries", got)
	}
	for _, proc := range got {
		switch proc.PID {
		case 1, 2, 5:
		default:
			t.Fatalf("unexpected process %v", proc)
		}
	}
}
