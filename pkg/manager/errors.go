package manager

import (
	"fmt"
	"strings"
)

// LoadError represents an error that occurred while reading a rule
// document from the file system. This covers "file not found",
// "permission denied", size limit violations, and encoding problems.
type LoadError struct {
	// FilePath is the path to the file that failed to load
	FilePath string

	// Message describes the error
	Message string

	// Cause is the underlying error that caused this load error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load rule file %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load rule file %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// CompileError represents a rule document that was readable but did not
// compile or did not pass reference validation. The cause carries the
// detailed error list from the compiler.
type CompileError struct {
	// FilePath is the path to the document that failed
	FilePath string

	// Cause is the compiler or validator error
	Cause error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("rule file %q rejected: %v", e.FilePath, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// RegistryError represents an error that occurred during registry operations.
type RegistryError struct {
	// RuleName is the name of the rule involved in the error
	RuleName string

	// Operation is the operation that failed (e.g., "register", "replace")
	Operation string

	// Message describes the registry error
	Message string
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.RuleName != "" {
		return fmt.Sprintf("registry error for rule %q during %s: %s", e.RuleName, e.Operation, e.Message)
	}
	return fmt.Sprintf("registry error during %s: %s", e.Operation, e.Message)
}

// ErrorList contains multiple errors that occurred during rule loading.
// This is used when loading a directory where some documents succeed and
// others fail.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Add adds an error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if there are no errors, the single error if there
// is one, or the ErrorList itself if there are multiple errors.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}
