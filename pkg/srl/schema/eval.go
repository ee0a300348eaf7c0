package schema

import (
	"fmt"
	"sort"

	srlErrors "datalens-hq/saturn/pkg/srl/errors"
)

// Apply interprets a shape tree against a raw decoded subtree, returning
// the normalized (coerced, shorthand-expanded, default-injected) form.
//
// Evaluation is depth-first. Independent sibling keys each report their
// own error; the returned error is a *srlErrors.ErrorList aggregating
// everything found. Evaluation never descends past the first error
// within a failing subtree. Sequence element order is preserved.
func Apply(shape Shape, v any) (any, error) {
	switch s := shape.(type) {
	case *Scalar:
		out, err := s.Coerce(v)
		if err != nil {
			if err.Expected == "" {
				err.Expected = s.Describe()
			}
			return nil, err
		}
		return out, nil

	case *Mapping:
		return applyMapping(s, v)

	case *Sequence:
		return applySequence(s, v)

	case *OneOf:
		return applyOneOf(s, v)

	case *Entry:
		return applyEntry(s, v)

	case *Any:
		return v, nil

	default:
		// A shape kind the evaluator does not know is a programming error
		// in the shape definition, not in the document.
		panic(fmt.Sprintf("schema: unknown shape type %T", shape))
	}
}

func applyMapping(m *Mapping, v any) (any, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, &srlErrors.Error{
			Type:     srlErrors.ErrorTypeStructural,
			Message:  fmt.Sprintf("expected a mapping, got %s", typeName(v)),
			Value:    v,
			Expected: m.Describe(),
		}
	}

	errs := srlErrors.NewErrorList()
	result := make(map[string]any, len(raw))

	// Iterate keys deterministically so error order is stable.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for key := range m.Required {
		if _, present := raw[key]; !present {
			errs.Add(&srlErrors.Error{
				Type:       srlErrors.ErrorTypeStructural,
				Message:    fmt.Sprintf("missing required key %q", key),
				Value:      raw,
				Expected:   m.Describe(),
				Suggestion: srlErrors.SuggestMissingKey(key, ""),
			})
		}
	}

	for _, key := range keys {
		shape, known := m.Required[key]
		if !known {
			shape, known = m.Optional[key]
		}
		if !known {
			errs.Add(&srlErrors.Error{
				Type:     srlErrors.ErrorTypeStructural,
				Message:  fmt.Sprintf("unknown key %q", key),
				Value:    raw[key],
				Expected: m.Describe(),
			})
			continue
		}

		out, err := Apply(shape, raw[key])
		if err != nil {
			errs.Merge(err, srlErrors.ErrorTypeStructural)
			continue
		}
		result[key] = out
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return result, nil
}

func applySequence(s *Sequence, v any) (any, error) {
	seq, ok := v.([]any)
	if !ok {
		if !s.PromoteScalar {
			return nil, &srlErrors.Error{
				Type:     srlErrors.ErrorTypeStructural,
				Message:  fmt.Sprintf("expected a sequence, got %s", typeName(v)),
				Value:    v,
				Expected: s.Describe(),
			}
		}
		seq = []any{v}
	}

	errs := srlErrors.NewErrorList()
	result := make([]any, 0, len(seq))

	for i, elem := range seq {
		out, err := Apply(s.Elem, elem)
		if err != nil {
			indexed := srlErrors.NewErrorList()
			indexed.Merge(err, srlErrors.ErrorTypeStructural)
			for _, e := range indexed.Errors {
				e.Message = fmt.Sprintf("element %d: %s", i, e.Message)
				errs.Add(e)
			}
			continue
		}
		result = append(result, out)
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return result, nil
}

func applyOneOf(o *OneOf, v any) (any, error) {
	for _, alt := range o.Alternatives {
		if out, err := Apply(alt, v); err == nil {
			return out, nil
		}
	}
	return nil, &srlErrors.Error{
		Type:     srlErrors.ErrorTypeStructural,
		Message:  "value matches none of the accepted forms",
		Value:    v,
		Expected: o.Describe(),
	}
}

func applyEntry(e *Entry, v any) (any, error) {
	name, attrs, expErr := Expand(v, e.ScalarKey, e.Defaults)
	if expErr != nil {
		return nil, expErr
	}

	out, err := Apply(e.Attrs, attrs)
	if err != nil {
		named := srlErrors.NewErrorList()
		named.Merge(err, srlErrors.ErrorTypeStructural)
		for _, ne := range named.Errors {
			ne.Message = fmt.Sprintf("entry %q: %s", name, ne.Message)
		}
		return nil, named
	}

	return map[string]any{name: out}, nil
}

// typeName names a raw decoded value's kind for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64:
		return "integer"
	case float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
