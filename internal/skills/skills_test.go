package skills

import (
	"context"
	"errors"
	"strings"
	"testing"

	"openclaw/internal/pyexec"
	"openclaw/internal/websearch"
)

func TestInvokeUnknownSkill(t *testing.T) {
	r := NewRegistry()
	obs := r.Invoke(context.Background(), "nope", "input")
	if !strings.Contains(obs, "not found") {
		t.Fatalf("expected not-found observation, got %q", obs)
	}
}

func TestInvokeDisabledSkillDoesNotExecute(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register(&Skill{
		ID: "echo",
		Handler: func(ctx context.Context, input string) (string, error) {
			called = true
			return "ran", nil
		},
	})

	obs := r.Invoke(context.Background(), "echo", "x")
	if obs != DisabledObservation("echo") {
		t.Fatalf("expected policy-denial observation, got %q", obs)
	}
	if called {
		t.Fatal("disabled skill handler must not run")
	}
}

func TestInvokeEnabledSkill(t *testing.T) {
	r := NewRegistry()
	r.Register(&Skill{
		ID: "echo",
		Handler: func(ctx context.Context, input string) (string, error) {
			return "echo: " + input, nil
		},
	})
	r.SetEnabled("echo", true)

	obs := r.Invoke(context.Background(), "echo", "hello")
	if obs != "echo: hello" {
		t.Fatalf("unexpected observation %q", obs)
	}
}

func TestInvokeHandlerErrorBecomesObservation(t *testing.T) {
	r := NewRegistry()
	r.Register(&Skill{
		ID: "bad",
		Handler: func(ctx context.Context, input string) (string, error) {
			return "", errors.New("broke")
		},
	})
	r.SetEnabled("bad", true)

	obs := r.Invoke(context.Background(), "bad", "x")
	if !strings.Contains(obs, "broke") {
		t.Fatalf("expected error observation, got %q", obs)
	}
}

type fakeExecutor struct {
	lastReq pyexec.Request
	result  pyexec.Result
}

func (f *fakeExecutor) Execute(ctx context.Context, req pyexec.Request) pyexec.Result {
	f.lastReq = req
	return f.result
}

func TestPythonREPLSkillPassesLimits(t *testing.T) {
	r := NewRegistry()
	fake := &fakeExecutor{result: pyexec.Result{Success: true, Stdout: "391\n", ErrorKind: pyexec.ErrNone}}
	RegisterPythonREPL(r, fake, ExecutorLimits{TimeoutSeconds: 5, MemoryLimitBytes: 1 << 20, FDLimit: 32})
	r.SetEnabled("python_repl", true)

	obs := r.Invoke(context.Background(), "python_repl", "print(17*23)")
	if obs != "391\n" {
		t.Fatalf("unexpected observation %q", obs)
	}
	if fake.lastReq.Code != "print(17*23)" {
		t.Fatalf("handler did not pass code through, got %q", fake.lastReq.Code)
	}
	if fake.lastReq.TimeoutSeconds != 5 || fake.lastReq.FDLimit != 32 {
		t.Fatalf("limits not forwarded: %+v", fake.lastReq)
	}
}

func TestPythonREPLSkillFailureObservation(t *testing.T) {
	r := NewRegistry()
	fake := &fakeExecutor{result: pyexec.Result{
		ErrorKind:   pyexec.ErrValidationRejected,
		ErrorDetail: "forbidden construct: Import",
	}}
	RegisterPythonREPL(r, fake, ExecutorLimits{})
	r.SetEnabled("python_repl", true)

	obs := r.Invoke(context.Background(), "python_repl", "import os")
	if !strings.Contains(obs, "validation_rejected") || !strings.Contains(obs, "Import") {
		t.Fatalf("expected classified failure observation, got %q", obs)
	}
}

type fakeSearcher struct {
	results []websearch.Result
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) []websearch.Result {
	return f.results
}

func TestWebSearchSkillFormatsJSON(t *testing.T) {
	r := NewRegistry()
	RegisterWebSearch(r, &fakeSearcher{results: []websearch.Result{
		{Title: "T", Snippet: "S", URL: "https://example.com"},
	}}, 5)
	r.SetEnabled("web_search", true)

	obs := r.Invoke(context.Background(), "web_search", "query")
	if !strings.Contains(obs, `"title":"T"`) {
		t.Fatalf("expected JSON observation, got %q", obs)
	}
}

func TestWebSearchSkillEmptyResults(t *testing.T) {
	r := NewRegistry()
	RegisterWebSearch(r, &fakeSearcher{}, 5)
	r.SetEnabled("web_search", true)

	obs := r.Invoke(context.Background(), "web_search", "query")
	if obs != "No results found." {
		t.Fatalf("unexpected observation %q", obs)
	}
}

func TestDefinitionsIncludeSchemas(t *testing.T) {
	r := NewRegistry()
	RegisterPythonREPL(r, &fakeExecutor{}, ExecutorLimits{})
	RegisterWebSearch(r, &fakeSearcher{}, 5)

	defs := r.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	// Sorted by id: python_repl, web_search.
	if defs[0].ID != "python_repl" || defs[1].ID != "web_search" {
		t.Fatalf("unexpected order: %s, %s", defs[0].ID, defs[1].ID)
	}
	for _, def := range defs {
		if def.Parameters == nil {
			t.Fatalf("definition %s is missing a parameter schema", def.ID)
		}
		if def.Handler != nil {
			t.Fatalf("definition %s must not leak its handler", def.ID)
		}
	}
}
