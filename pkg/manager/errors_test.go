package manager

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestLoadErrorFormatting(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := &LoadError{FilePath: "rules/a.yaml", Message: "file not found", Cause: cause}

	if !strings.Contains(err.Error(), "rules/a.yaml") || !strings.Contains(err.Error(), "file not found") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}

	bare := &LoadError{FilePath: "rules/a.yaml", Message: "not a regular file"}
	if strings.Contains(bare.Error(), "%!") {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestCompileErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("shape violation")
	err := &CompileError{FilePath: "rules/a.yaml", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "rejected") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestErrorList(t *testing.T) {
	list := &ErrorList{}

	if list.HasErrors() {
		t.Error("Expected fresh list to have no errors")
	}
	if list.ToError() != nil {
		t.Error("Expected nil from empty ToError")
	}

	first := fmt.Errorf("first")
	list.Add(first)
	list.Add(nil) // ignored

	if got := list.ToError(); got != first {
		t.Errorf("Expected single error to be returned directly, got %v", got)
	}

	list.Add(fmt.Errorf("second"))
	err := list.ToError()
	if err != list {
		t.Errorf("Expected the list itself for multiple errors, got %T", err)
	}
	if !strings.Contains(err.Error(), "2 errors occurred") {
		t.Errorf("Error() = %q", err.Error())
	}
}
