package pyexec

import (
	"errors"
	"testing"
)

func TestValidateAcceptsPlainComputation(t *testing.T) {
	cases := []string{
		"print(17*23)",
		"x = 1 + 2\nprint(x)",
		"total = sum([i*i for i in range(10)])\nprint(total)",
		"s = 'hello'\nprint(s.upper())",
		"d = {'a': 1}\nprint(len(d))",
	}
	for _, code := range cases {
		if err := Validate(code); err != nil {
			t.Fatalf("expected %q to validate, got %v", code, err)
		}
	}
}

func TestValidateRejectsForbiddenConstructs(t *testing.T) {
	cases := map[string]string{
		"import":       "import os",
		"import from":  "from os import path",
		"with":         "with open('x') as f:\n    pass",
		"function def": "def f():\n    return 1",
		"class def":    "class C:\n    pass",
		"lambda":       "f = lambda x: x",
	}
	for name, code := range cases {
		if err := Validate(code); err == nil {
			t.Fatalf("expected %s (%q) to be rejected", name, code)
		}
	}
}

func TestValidateRejectsReflectiveAttributes(t *testing.T) {
	cases := []string{
		"print(().__class__)",
		"x = (1).__class__",
		"print([].__class__.__bases__)",
		"c = ().__class__.__subclasses__",
	}
	for _, code := range cases {
		err := Validate(code)
		if err == nil {
			t.Fatalf("expected %q to be rejected", code)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %T", err)
		}
	}
}

func TestValidateAllowsBenignAttributes(t *testing.T) {
	if err := Validate("print('a'.upper())"); err != nil {
		t.Fatalf("benign attribute access rejected: %v", err)
	}
}

func TestValidateRejectsSyntaxErrors(t *testing.T) {
	err := Validate("print(")
	if err == nil {
		t.Fatal("expected syntax error to be rejected")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Construct != "syntax" {
		t.Fatalf("expected syntax construct, got %s", verr.Construct)
	}
	if !verr.ParseFailed() {
		t.Fatal("syntax rejection must report ParseFailed")
	}
}

func TestValidateModernSyntaxReportsParseFailed(t *testing.T) {
	// The in-process grammar cannot read these; they must surface as a
	// parse failure, not a deny-list hit, so the worker gets to decide.
	cases := []string{
		"x = 2\nprint(f'{x}')",
		"print(n := 10)",
	}
	for _, code := range cases {
		err := Validate(code)
		if err == nil {
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("code %q: expected ValidationError, got %T", code, err)
		}
		if !verr.ParseFailed() {
			t.Fatalf("code %q: expected parse failure, got deny-list hit %s", code, verr.Construct)
		}
	}
}

func TestValidateDenyListHitIsNotParseFailure(t *testing.T) {
	err := Validate("import os")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.ParseFailed() {
		t.Fatal("deny-list rejection must not report ParseFailed")
	}
}
