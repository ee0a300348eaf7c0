package compiler

import (
	"fmt"
	"strings"

	"datalens-hq/saturn/pkg/srl/ast"
	srlErrors "datalens-hq/saturn/pkg/srl/errors"
	"datalens-hq/saturn/pkg/srl/taxonomy"
)

// CoerceTypeTag maps a raw scalar into a type tag. Already-qualified tags
// and external dimension identifiers pass through unchanged; any other
// string is treated as a bare word and qualified into the type namespace.
// There is no error path: every string is acceptable input.
func CoerceTypeTag(v any) ast.TypeTag {
	switch t := v.(type) {
	case ast.TypeTag:
		return t
	case string:
		return ast.QualifyTypeTag(t)
	default:
		return ast.QualifyTypeTag(fmt.Sprintf("%v", v))
	}
}

// CoerceFieldType maps a raw value into a FieldType. Accepted forms:
//
//   - an already-coerced FieldType (idempotent)
//   - an external dimension string ("ga:source")
//   - a bare or qualified field tag ("Latitude", "type/Latitude")
//   - the compound shorthand "Table.Field", split and each side
//     independently coerced
//   - an explicit two-element pair [table, field]
func CoerceFieldType(v any) (ast.FieldType, *srlErrors.Error) {
	switch t := v.(type) {
	case ast.FieldType:
		return t, nil

	case string:
		if strings.HasPrefix(t, ast.ExternalDimensionPrefix) {
			return ast.FieldType{Field: ast.TypeTag(t)}, nil
		}
		if table, field, ok := splitCompound(t); ok {
			return ast.FieldType{
				Table: CoerceTypeTag(table),
				Field: CoerceTypeTag(field),
			}, nil
		}
		return ast.FieldType{Field: CoerceTypeTag(t)}, nil

	case []any:
		if len(t) != 2 {
			return ast.FieldType{}, &srlErrors.Error{
				Type:     srlErrors.ErrorTypeStructural,
				Message:  fmt.Sprintf("field type pair must have two elements, got %d", len(t)),
				Value:    v,
				Expected: "[table type, field type]",
			}
		}
		table, tok := tagText(t[0])
		field, fok := tagText(t[1])
		if !tok || !fok {
			return ast.FieldType{}, &srlErrors.Error{
				Type:     srlErrors.ErrorTypeStructural,
				Message:  "field type pair elements must be type tags",
				Value:    v,
				Expected: "[table type, field type]",
			}
		}
		return ast.FieldType{
			Table: CoerceTypeTag(table),
			Field: CoerceTypeTag(field),
		}, nil

	default:
		return ast.FieldType{}, &srlErrors.Error{
			Type:     srlErrors.ErrorTypeStructural,
			Message:  fmt.Sprintf("field type must be a string or pair, got %T", v),
			Value:    v,
			Expected: "field type tag, 'Table.Field' shorthand, or [table, field] pair",
		}
	}
}

// splitCompound splits the "Table.Field" shorthand. The dot separates the
// two halves; a leading or trailing dot is not a compound form.
func splitCompound(s string) (table, field string, ok bool) {
	i := strings.Index(s, ".")
	if i <= 0 || i == len(s)-1 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

func tagText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case ast.TypeTag:
		return string(t), true
	default:
		return "", false
	}
}

// CoerceVisualization maps a raw value into a Visualization. A bare string
// is shorthand for the kind with empty options; the full form is the pair
// [kind, options].
func CoerceVisualization(v any) (ast.Visualization, *srlErrors.Error) {
	if viz, ok := v.(ast.Visualization); ok {
		return viz, nil
	}
	if _, ok := v.([]any); ok {
		return coerceVisualizationPair(v)
	}
	return coerceVisualizationKind(v)
}

// coerceVisualizationKind accepts the bare display kind shorthand.
func coerceVisualizationKind(v any) (ast.Visualization, *srlErrors.Error) {
	if s, ok := v.(string); ok && s != "" {
		return ast.Visualization{Kind: s, Options: map[string]any{}}, nil
	}
	return ast.Visualization{}, visualizationError(v)
}

// coerceVisualizationPair accepts the full [kind, options] form. A nil
// options side stands for an empty mapping.
func coerceVisualizationPair(v any) (ast.Visualization, *srlErrors.Error) {
	pair, ok := v.([]any)
	if !ok || len(pair) != 2 {
		return ast.Visualization{}, visualizationError(v)
	}
	kind, ok := pair[0].(string)
	if !ok || kind == "" {
		return ast.Visualization{}, visualizationError(v)
	}
	options, ok := pair[1].(map[string]any)
	if !ok {
		if pair[1] != nil {
			return ast.Visualization{}, visualizationError(v)
		}
		options = map[string]any{}
	}
	return ast.Visualization{Kind: kind, Options: options}, nil
}

func visualizationError(v any) *srlErrors.Error {
	return &srlErrors.Error{
		Type:     srlErrors.ErrorTypeStructural,
		Message:  "visualization must be a display kind or a [kind, options] pair",
		Value:    v,
		Expected: "display kind string or [kind, options mapping]",
	}
}

// CoerceOrderBy maps a raw value into an OrderBy entry. A bare identifier
// string is shorthand for ascending order.
func CoerceOrderBy(v any) (ast.OrderBy, *srlErrors.Error) {
	if o, ok := v.(ast.OrderBy); ok {
		return o, nil
	}
	if _, ok := v.(map[string]any); ok {
		return coerceOrderByDirected(v)
	}
	return coerceOrderByName(v)
}

// coerceOrderByName accepts the bare identifier shorthand for ascending
// order.
func coerceOrderByName(v any) (ast.OrderBy, *srlErrors.Error) {
	if s, ok := v.(string); ok && s != "" {
		return ast.OrderBy{Name: s, Direction: ast.Ascending}, nil
	}
	return ast.OrderBy{}, orderByError(v)
}

// coerceOrderByDirected accepts the one-entry {identifier: direction}
// form.
func coerceOrderByDirected(v any) (ast.OrderBy, *srlErrors.Error) {
	entry, ok := v.(map[string]any)
	if !ok || len(entry) != 1 {
		return ast.OrderBy{}, orderByError(v)
	}
	for name, dir := range entry {
		direction, ok := dir.(string)
		if name == "" || !ok {
			break
		}
		switch ast.Direction(direction) {
		case ast.Ascending, ast.Descending:
			return ast.OrderBy{Name: name, Direction: ast.Direction(direction)}, nil
		}
	}
	return ast.OrderBy{}, orderByError(v)
}

func orderByError(v any) *srlErrors.Error {
	return &srlErrors.Error{
		Type:     srlErrors.ErrorTypeStructural,
		Message:  "order_by entry must be an identifier or {identifier: direction}",
		Value:    v,
		Expected: `identifier string or {identifier: "ascending"|"descending"}`,
	}
}

// IsTableTag reports whether a coerced tag is a member of the Table type
// hierarchy.
func IsTableTag(h taxonomy.Hierarchy, tag ast.TypeTag) bool {
	return h.IsA(tag, taxonomy.TableRoot)
}

// IsFieldTag reports whether a coerced tag is a member of the Field type
// hierarchy. External dimension identifiers count as fields.
func IsFieldTag(h taxonomy.Hierarchy, tag ast.TypeTag) bool {
	return tag.IsExternal() || h.IsA(tag, taxonomy.FieldRoot)
}
