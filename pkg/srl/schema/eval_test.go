package schema

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	srlErrors "datalens-hq/saturn/pkg/srl/errors"
)

func intShape() *Scalar {
	return &Scalar{
		Name: "integer",
		Coerce: func(v any) (any, *srlErrors.Error) {
			n, ok := v.(int)
			if !ok {
				return nil, &srlErrors.Error{
					Type:    srlErrors.ErrorTypeStructural,
					Message: fmt.Sprintf("expected integer, got %T", v),
					Value:   v,
				}
			}
			return n, nil
		},
	}
}

func stringShape() *Scalar {
	return &Scalar{
		Name: "string",
		Coerce: func(v any) (any, *srlErrors.Error) {
			s, ok := v.(string)
			if !ok {
				return nil, &srlErrors.Error{
					Type:    srlErrors.ErrorTypeStructural,
					Message: fmt.Sprintf("expected string, got %T", v),
					Value:   v,
				}
			}
			return s, nil
		},
	}
}

func TestApplyMapping(t *testing.T) {
	shape := &Mapping{
		Name:     "config",
		Required: map[string]Shape{"name": stringShape()},
		Optional: map[string]Shape{"count": intShape()},
	}

	tests := []struct {
		name    string
		value   any
		want    any
		wantErr bool
	}{
		{
			name:  "required and optional present",
			value: map[string]any{"name": "a", "count": 3},
			want:  map[string]any{"name": "a", "count": 3},
		},
		{
			name:  "optional omitted",
			value: map[string]any{"name": "a"},
			want:  map[string]any{"name": "a"},
		},
		{
			name:    "missing required key",
			value:   map[string]any{"count": 3},
			wantErr: true,
		},
		{
			name:    "unknown key rejected",
			value:   map[string]any{"name": "a", "extra": true},
			wantErr: true,
		},
		{
			name:    "not a mapping",
			value:   []any{"a"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(shape, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyMappingAccumulatesSiblingErrors(t *testing.T) {
	shape := &Mapping{
		Name: "config",
		Required: map[string]Shape{
			"a": intShape(),
			"b": intShape(),
		},
	}

	_, err := Apply(shape, map[string]any{"a": "x", "b": "y"})
	if err == nil {
		t.Fatal("Apply() expected error")
	}

	errList, ok := err.(*srlErrors.ErrorList)
	if !ok {
		t.Fatalf("expected ErrorList, got %T", err)
	}
	if errList.Count() != 2 {
		t.Errorf("expected 2 accumulated errors, got %d: %v", errList.Count(), errList)
	}
}

func TestApplySequence(t *testing.T) {
	tests := []struct {
		name    string
		shape   *Sequence
		value   any
		want    any
		wantErr bool
	}{
		{
			name:  "sequence preserved in order",
			shape: &Sequence{Elem: intShape()},
			value: []any{3, 1, 2},
			want:  []any{3, 1, 2},
		},
		{
			name:  "scalar promoted to one-element sequence",
			shape: &Sequence{Elem: stringShape(), PromoteScalar: true},
			value: "only",
			want:  []any{"only"},
		},
		{
			name:    "scalar rejected without promotion",
			shape:   &Sequence{Elem: stringShape()},
			value:   "only",
			wantErr: true,
		},
		{
			name:    "bad element reported with index",
			shape:   &Sequence{Elem: intShape()},
			value:   []any{1, "two", 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.shape, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplySequenceElementErrorCarriesIndex(t *testing.T) {
	_, err := Apply(&Sequence{Elem: intShape()}, []any{1, "two"})
	if err == nil {
		t.Fatal("Apply() expected error")
	}
	if !strings.Contains(err.Error(), "element 1") {
		t.Errorf("error should name the failing element index: %v", err)
	}
}

func TestApplyOneOf(t *testing.T) {
	shape := &OneOf{
		Name:         "string or integer",
		Alternatives: []Shape{stringShape(), intShape()},
	}

	if got, err := Apply(shape, "x"); err != nil || got != "x" {
		t.Errorf("Apply(string) = %v, %v", got, err)
	}
	if got, err := Apply(shape, 7); err != nil || got != 7 {
		t.Errorf("Apply(int) = %v, %v", got, err)
	}
	if _, err := Apply(shape, true); err == nil {
		t.Error("Apply(bool) expected error")
	}
}

func TestApplyEntry(t *testing.T) {
	shape := &Entry{
		Name:      "metric",
		ScalarKey: "metric",
		Defaults:  map[string]any{"score": 100},
		Attrs: &Mapping{
			Required: map[string]Shape{
				"metric": &Any{Name: "expression"},
				"score":  intShape(),
			},
		},
	}

	got, err := Apply(shape, map[string]any{"Revenue": "sum"})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := map[string]any{"Revenue": map[string]any{"metric": "sum", "score": 100}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
}

func TestApplyErrorCarriesValueAndExpected(t *testing.T) {
	shape := &Mapping{Name: "config", Required: map[string]Shape{"name": stringShape()}}

	_, err := Apply(shape, "not a mapping")
	structural, ok := err.(*srlErrors.Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if structural.Value != "not a mapping" {
		t.Errorf("error should carry the offending value, got %v", structural.Value)
	}
	if structural.Expected == "" {
		t.Error("error should carry the expected shape description")
	}
}
