package taxonomy

import (
	"testing"

	"datalens-hq/saturn/pkg/srl/ast"
)

func TestRegistryIsA(t *testing.T) {
	r := NewRegistry()
	r.Register("type/Latitude", "type/Coordinate")
	r.Register("type/Coordinate", FieldRoot)

	tests := []struct {
		tag      string
		ancestor string
		want     bool
	}{
		{"type/Latitude", "type/Latitude", true},    // reflexive
		{"type/Latitude", "type/Coordinate", true},  // direct
		{"type/Latitude", "type/Field", true},       // transitive
		{"type/Coordinate", "type/Latitude", false}, // not symmetric
		{"type/Unknown", "type/Field", false},
	}

	for _, tt := range tests {
		if got := r.IsA(ast.TypeTag(tt.tag), ast.TypeTag(tt.ancestor)); got != tt.want {
			t.Errorf("IsA(%q, %q) = %v, want %v", tt.tag, tt.ancestor, got, tt.want)
		}
	}
}

func TestRegistryHandlesDiamonds(t *testing.T) {
	r := NewRegistry()
	r.Register("a", "b")
	r.Register("a", "c")
	r.Register("b", "d")
	r.Register("c", "d")

	if !r.IsA("a", "d") {
		t.Error("IsA should traverse diamond-shaped hierarchies")
	}
}

func TestDefaultHierarchy(t *testing.T) {
	h := Default()

	tests := []struct {
		tag      string
		ancestor ast.TypeTag
		want     bool
	}{
		{"type/TransactionTable", TableRoot, true},
		{"type/GenericTable", TableRoot, true},
		{"type/Latitude", FieldRoot, true},
		{"type/DateTime", FieldRoot, true},
		{"type/Currency", "type/Number", true},
		{"type/Latitude", TableRoot, false},
		{"type/TransactionTable", FieldRoot, false},
	}

	for _, tt := range tests {
		if got := h.IsA(ast.TypeTag(tt.tag), tt.ancestor); got != tt.want {
			t.Errorf("IsA(%q, %q) = %v, want %v", tt.tag, tt.ancestor, got, tt.want)
		}
	}
}
