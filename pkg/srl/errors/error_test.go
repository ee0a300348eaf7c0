package errors

import (
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeStructural,
		Message:    "score must be an integer between 0 and 100",
		Value:      101,
		Expected:   "score (integer in [0, 100])",
		Suggestion: "Lower the score",
	}

	s := err.Error()
	for _, fragment := range []string{"[structural]", "101", "score (integer in [0, 100])", "Lower the score"} {
		if !strings.Contains(s, fragment) {
			t.Errorf("formatted error missing %q:\n%s", fragment, s)
		}
	}
}

func TestErrorTruncatesLargeValues(t *testing.T) {
	err := &Error{
		Type:    ErrorTypeStructural,
		Message: "bad subtree",
		Value:   strings.Repeat("x", 1000),
	}
	if len(err.Error()) > 600 {
		t.Errorf("offending value should be truncated, got %d bytes", len(err.Error()))
	}
}

func TestErrorList(t *testing.T) {
	el := NewErrorList()
	if el.HasErrors() {
		t.Error("new list should be empty")
	}
	if el.ToError() != nil {
		t.Error("empty list should convert to nil error")
	}

	el.AddError(ErrorTypeStructural, "first", nil, "")
	el.AddErrorWithSuggestion(ErrorTypeReference, "second", "x", "a defined name", "Did you mean 'y'?")

	if el.Count() != 2 {
		t.Errorf("Count() = %d", el.Count())
	}
	if !el.HasErrorType(ErrorTypeReference) {
		t.Error("should report reference error type")
	}
	if el.HasErrorType(ErrorTypeSyntax) {
		t.Error("should not report syntax error type")
	}
	if got := len(el.ByType(ErrorTypeStructural)); got != 1 {
		t.Errorf("ByType() = %d entries", got)
	}
	if el.ToError() == nil {
		t.Error("non-empty list should convert to itself")
	}
}

func TestErrorListMerge(t *testing.T) {
	el := NewErrorList()

	el.Merge(&Error{Type: ErrorTypeStructural, Message: "one"}, ErrorTypeStructural)

	inner := NewErrorList()
	inner.AddError(ErrorTypeReference, "two", nil, "")
	inner.AddError(ErrorTypeReference, "three", nil, "")
	el.Merge(inner, ErrorTypeStructural)

	el.Merge(nil, ErrorTypeStructural)

	if el.Count() != 3 {
		t.Errorf("Count() = %d, want 3", el.Count())
	}
}

func TestSuggestName(t *testing.T) {
	tests := []struct {
		name    string
		unknown string
		defined []string
		want    string
	}{
		{
			name:    "close match suggested",
			unknown: "Categry",
			defined: []string{"Category", "Revenue"},
			want:    "Did you mean 'Category'?",
		},
		{
			name:    "no close match lists defined names",
			unknown: "zzzzzzzzzz",
			defined: []string{"Category"},
			want:    "Defined names: Category",
		},
		{
			name:    "no candidates",
			unknown: "x",
			defined: nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuggestName(tt.unknown, tt.defined); got != tt.want {
				t.Errorf("SuggestName() = %q, want %q", got, tt.want)
			}
		})
	}
}
