package errors

import (
	"fmt"
	"strings"

	"datalens-hq/saturn/pkg/srl/ast"
)

// ErrorType categorizes the kind of failure encountered while compiling or
// checking a rule document.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // YAML could not be decoded at all
	ErrorTypeStructural ErrorType = "structural" // Shape violation (missing/unknown keys, bad scalar)
	ErrorTypeReference  ErrorType = "reference"  // A named reference does not resolve
	ErrorTypeIO         ErrorType = "io"         // File I/O error
)

// Error is a structured error carrying the offending value and the shape
// that was expected of it. Every rejection of a document is expressed as
// one or more of these.
type Error struct {
	Type       ErrorType    // Category of error
	Message    string       // Error message
	Value      any          // The offending subtree or scalar
	Expected   string       // Description of the expected shape or constraint
	Location   ast.Location // Source location, when known
	Suggestion string       // Suggested fix (optional)
}

// Error implements the error interface. It returns a formatted message
// with the offending value, expected shape, location and suggestion.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", e.Type, e.Message))

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Location.String()))
	}

	if e.Value != nil {
		sb.WriteString(fmt.Sprintf("  value: %s\n", renderValue(e.Value)))
	}

	if e.Expected != "" {
		sb.WriteString(fmt.Sprintf("  expected: %s\n", e.Expected))
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// renderValue formats an offending value for display, truncating large
// subtrees so a single bad document cannot flood the log.
func renderValue(v any) string {
	const maxLen = 200

	s := fmt.Sprintf("%v", v)
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}

// ErrorList accumulates errors found while processing one document.
// Independent sibling keys each report their own error; the list is the
// document's aggregate rejection.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, message string, value any, expected string) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Value:    value,
		Expected: expected,
	})
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, value any, expected, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Message:    message,
		Value:      value,
		Expected:   expected,
		Suggestion: suggestion,
	})
}

// Merge appends all errors of another error value to the list. It accepts
// both *Error and *ErrorList; any other error becomes an opaque entry of
// the given type.
func (el *ErrorList) Merge(err error, fallbackType ErrorType) {
	switch e := err.(type) {
	case nil:
	case *Error:
		el.Add(e)
	case *ErrorList:
		el.Errors = append(el.Errors, e.Errors...)
	default:
		el.AddError(fallbackType, e.Error(), nil, "")
	}
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// HasErrorType returns true if the list contains at least one error of the
// given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// Error implements the error interface. It returns all errors formatted as
// a single string.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d error(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}
