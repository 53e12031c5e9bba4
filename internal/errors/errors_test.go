package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	if got := New(CodeStore, "opening file").Error(); got != "opening file" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := Wrap(CodeStore, "opening file", fmt.Errorf("permission denied"))
	if got := wrapped.Error(); got != "opening file: permission denied" {
		t.Errorf("Error() = %q", got)
	}

	bare := &Error{Code: CodeSandbox}
	if got := bare.Error(); got != "sandbox" {
		t.Errorf("Error() = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeStore, "writing", cause)
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause must be reachable through errors.Is")
	}

	var coded *Error
	if !stderrors.As(err, &coded) || coded.Code != CodeStore {
		t.Errorf("errors.As failed or wrong code: %v", coded)
	}
}
