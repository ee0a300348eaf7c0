package ast

import "strings"

// dimensionMarkers is the fixed set of spellings that mark a dimension
// reference inside an expression tree. Matching is case-insensitive, so the
// set is keyed by lowercase spelling.
var dimensionMarkers = map[string]struct{}{
	"dimension": {},
}

// Expression is an opaque query fragment embedded in a metric or filter.
// The compiler does not interpret it beyond detecting embedded dimension
// references: a sequence whose first element is a marker token (matched
// case-insensitively against a fixed set of spellings) and whose second
// element is the referenced dimension name.
type Expression struct {
	Tree any
}

// IsZero returns true if the expression carries no tree at all.
func (e Expression) IsZero() bool {
	return e.Tree == nil
}

// Dimensions returns the names of all dimension references embedded in the
// expression, in depth-first document order. Nesting depth is unbounded; the
// scan descends through sequences and mapping values alike.
func (e Expression) Dimensions() []string {
	var names []string
	scanDimensions(e.Tree, &names)
	return names
}

func scanDimensions(node any, names *[]string) {
	switch v := node.(type) {
	case []any:
		if name, ok := dimensionReference(v); ok {
			*names = append(*names, name)
			return
		}
		for _, elem := range v {
			scanDimensions(elem, names)
		}
	case map[string]any:
		for _, elem := range v {
			scanDimensions(elem, names)
		}
	}
}

// dimensionReference reports whether a sequence is a dimension reference
// node and, if so, returns the referenced name.
func dimensionReference(seq []any) (string, bool) {
	if len(seq) < 2 {
		return "", false
	}
	marker, ok := seq[0].(string)
	if !ok {
		return "", false
	}
	if _, ok := dimensionMarkers[strings.ToLower(marker)]; !ok {
		return "", false
	}
	name, ok := seq[1].(string)
	return name, ok
}
