package compiler

import (
	"fmt"

	"datalens-hq/saturn/pkg/srl/ast"
	srlErrors "datalens-hq/saturn/pkg/srl/errors"
	"datalens-hq/saturn/pkg/srl/schema"
)

// documentShape builds the declarative shape of a complete rule document.
// It is constructed once per Compiler and interpreted by schema.Apply for
// every document.
func documentShape() *schema.Mapping {
	scoreDefaults := map[string]any{"score": ast.DefaultScore}

	dimension := &schema.Entry{
		Name:      "dimension",
		ScalarKey: "field_type",
		Defaults:  scoreDefaults,
		Attrs: &schema.Mapping{
			Name: "dimension attributes",
			Required: map[string]schema.Shape{
				"field_type": fieldTypeShape(),
				"score":      scoreShape(),
			},
		},
	}

	metric := &schema.Entry{
		Name:      "metric",
		ScalarKey: "metric",
		Defaults:  scoreDefaults,
		Attrs: &schema.Mapping{
			Name: "metric attributes",
			Required: map[string]schema.Shape{
				"metric": &schema.Any{Name: "expression"},
				"score":  scoreShape(),
			},
		},
	}

	filter := &schema.Entry{
		Name:      "filter",
		ScalarKey: "filter",
		Defaults:  scoreDefaults,
		Attrs: &schema.Mapping{
			Name: "filter attributes",
			Required: map[string]schema.Shape{
				"filter": &schema.Any{Name: "expression"},
				"score":  scoreShape(),
			},
		},
	}

	// Cards have no bare-scalar shorthand but still receive the score
	// default.
	card := &schema.Entry{
		Name:     "card",
		Defaults: scoreDefaults,
		Attrs: &schema.Mapping{
			Name: "card attributes",
			Required: map[string]schema.Shape{
				"title":         nonEmptyStringShape("card title"),
				"visualization": visualizationShape(),
				"score":         scoreShape(),
			},
			Optional: map[string]schema.Shape{
				"description": stringShape("description"),
				"dimensions":  nameListShape(),
				"metrics":     nameListShape(),
				"filters":     nameListShape(),
				"limit":       positiveIntShape("limit"),
				"order_by": &schema.Sequence{
					Elem:          orderByShape(),
					PromoteScalar: true,
				},
			},
		},
	}

	return &schema.Mapping{
		Name: "rule document",
		Required: map[string]schema.Shape{
			"table_type": tableTypeShape(),
			"title":      nonEmptyStringShape("dashboard title"),
			"dimensions": &schema.Sequence{Elem: dimension},
			"cards":      &schema.Sequence{Elem: card},
		},
		Optional: map[string]schema.Shape{
			"description": stringShape("description"),
			"metrics":     &schema.Sequence{Elem: metric},
			"filters":     &schema.Sequence{Elem: filter},
		},
	}
}

func stringShape(name string) *schema.Scalar {
	return &schema.Scalar{
		Name: name,
		Coerce: func(v any) (any, *srlErrors.Error) {
			s, ok := v.(string)
			if !ok {
				return nil, &srlErrors.Error{
					Type:    srlErrors.ErrorTypeStructural,
					Message: fmt.Sprintf("%s must be a string, got %T", name, v),
					Value:   v,
				}
			}
			return s, nil
		},
	}
}

func nonEmptyStringShape(name string) *schema.Scalar {
	return &schema.Scalar{
		Name: name,
		Coerce: func(v any) (any, *srlErrors.Error) {
			s, ok := v.(string)
			if !ok || s == "" {
				return nil, &srlErrors.Error{
					Type:    srlErrors.ErrorTypeStructural,
					Message: fmt.Sprintf("%s must be a non-empty string", name),
					Value:   v,
				}
			}
			return s, nil
		},
	}
}

// scoreShape is the heuristic ranking weight: an integer in [0, 100].
// Out-of-range values are rejected, never clamped.
func scoreShape() *schema.Scalar {
	return &schema.Scalar{
		Name: "score (integer in [0, 100])",
		Coerce: func(v any) (any, *srlErrors.Error) {
			n, ok := intValue(v)
			if !ok || n < 0 || n > 100 {
				return nil, &srlErrors.Error{
					Type:    srlErrors.ErrorTypeStructural,
					Message: "score must be an integer between 0 and 100",
					Value:   v,
				}
			}
			return n, nil
		},
	}
}

func positiveIntShape(name string) *schema.Scalar {
	return &schema.Scalar{
		Name: name + " (positive integer)",
		Coerce: func(v any) (any, *srlErrors.Error) {
			n, ok := intValue(v)
			if !ok || n <= 0 {
				return nil, &srlErrors.Error{
					Type:    srlErrors.ErrorTypeStructural,
					Message: fmt.Sprintf("%s must be a positive integer", name),
					Value:   v,
				}
			}
			return n, nil
		},
	}
}

func tableTypeShape() *schema.Scalar {
	return &schema.Scalar{
		Name: "table type tag",
		Coerce: func(v any) (any, *srlErrors.Error) {
			switch t := v.(type) {
			case ast.TypeTag:
				return t, nil
			case string:
				if t == "" {
					break
				}
				return CoerceTypeTag(t), nil
			}
			return nil, &srlErrors.Error{
				Type:    srlErrors.ErrorTypeStructural,
				Message: "table_type must be a non-empty string",
				Value:   v,
			}
		},
	}
}

func fieldTypeShape() *schema.Scalar {
	return &schema.Scalar{
		Name: "field type",
		Coerce: func(v any) (any, *srlErrors.Error) {
			ft, err := CoerceFieldType(v)
			if err != nil {
				return nil, err
			}
			return ft, nil
		},
	}
}

// visualizationShape admits the two visualization spellings as separate
// alternatives, so the accepted vocabulary reads off the shape tree.
func visualizationShape() *schema.OneOf {
	return &schema.OneOf{
		Name: "visualization (display kind or [kind, options] pair)",
		Alternatives: []schema.Shape{
			&schema.Scalar{
				Name: "display kind",
				Coerce: func(v any) (any, *srlErrors.Error) {
					viz, err := coerceVisualizationKind(v)
					if err != nil {
						return nil, err
					}
					return viz, nil
				},
			},
			&schema.Scalar{
				Name: "[kind, options] pair",
				Coerce: func(v any) (any, *srlErrors.Error) {
					viz, err := coerceVisualizationPair(v)
					if err != nil {
						return nil, err
					}
					return viz, nil
				},
			},
		},
	}
}

func orderByShape() *schema.OneOf {
	return &schema.OneOf{
		Name: "order_by entry (identifier or {identifier: direction})",
		Alternatives: []schema.Shape{
			&schema.Scalar{
				Name: "identifier",
				Coerce: func(v any) (any, *srlErrors.Error) {
					o, err := coerceOrderByName(v)
					if err != nil {
						return nil, err
					}
					return o, nil
				},
			},
			&schema.Scalar{
				Name: "{identifier: direction}",
				Coerce: func(v any) (any, *srlErrors.Error) {
					o, err := coerceOrderByDirected(v)
					if err != nil {
						return nil, err
					}
					return o, nil
				},
			},
		},
	}
}

func nameListShape() *schema.Sequence {
	return &schema.Sequence{
		Elem:          nonEmptyStringShape("reference name"),
		PromoteScalar: true,
	}
}

// intValue extracts an integer from the decoded scalar forms YAML produces.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}
