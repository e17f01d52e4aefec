package hooks

import (
	"context"
	"strings"
	"testing"
)

func TestRegisterAndResolve(t *testing.T) {
	t.Cleanup(reset)

	fired := false
	Register("audit.LogRuns", func(ctx context.Context, event Event) error {
		fired = true
		return nil
	})

	cb, err := Resolve("audit.LogRuns")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := cb(context.Background(), Event{Phase: BeforeRun, Command: "run"}); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if !fired {
		t.Fatal("callback did not fire")
	}
}

func TestResolveUnknown(t *testing.T) {
	t.Cleanup(reset)

	_, err := Resolve("audit.Missing")
	if err == nil {
		t.Fatal("Resolve succeeded for unknown name")
	}
	if !strings.Contains(err.Error(), `callback "audit.Missing" is not registered`) {
		t.Fatalf("error = %v", err)
	}
}

func TestResolveRejectsUndottedName(t *testing.T) {
	_, err := Resolve("nodots")
	if err == nil || !strings.Contains(err.Error(), "expecting something like") {
		t.Fatalf("error = %v", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	t.Cleanup(reset)

	Register("audit.Dup", func(context.Context, Event) error { return nil })
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	Register("audit.Dup", func(context.Context, Event) error { return nil })
}

func TestResolveList(t *testing.T) {
	t.Cleanup(reset)

	Register("audit.First", func(context.Context, Event) error { return nil })
	Register("audit.Second", func(context.Context, Event) error { return nil })

	callbacks, err := ResolveList(" audit.First, audit.Second ,")
	if err != nil {
		t.Fatalf("ResolveList: %v", err)
	}
	if len(callbacks) != 2 {
		t.Fatalf("ResolveList returned %d callbacks, want 2", len(callbacks))
	}

	if _, err := ResolveList("audit.First,audit.Nope"); err == nil {
		t.Fatal("ResolveList succeeded with unknown name")
	}
}

func TestNames(t *testing.T) {
	t.Cleanup(reset)

	Register("b.Second", func(context.Context, Event) error { return nil })
	Register("a.First", func(context.Context, Event) error { return nil })

	names := Names()
	if len(names) != 2 || names[0] != "a.First" || names[1] != "b.Second" {
		t.Fatalf("Names = %v", names)
	}
}
