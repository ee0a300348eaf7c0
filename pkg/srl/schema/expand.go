package schema

import (
	"fmt"

	srlErrors "datalens-hq/saturn/pkg/srl/errors"
)

// Expand normalizes one named section entry {identifier: value} into its
// full form {identifier: attributes}.
//
// If the value is already a mapping, defaults are merged underneath it:
// defaults never override explicit keys. If the value is a bare scalar it
// is first wrapped as {scalarKey: value}. An empty scalarKey means the
// section has no bare-scalar shorthand and a non-mapping value is an
// error.
func Expand(raw any, scalarKey string, defaults map[string]any) (name string, attrs map[string]any, err *srlErrors.Error) {
	entry, ok := raw.(map[string]any)
	if !ok || len(entry) != 1 {
		return "", nil, &srlErrors.Error{
			Type:     srlErrors.ErrorTypeStructural,
			Message:  "section entry must be a one-entry mapping {identifier: value}",
			Value:    raw,
			Expected: "{identifier: value}",
		}
	}

	var value any
	for k, v := range entry {
		name, value = k, v
	}
	if name == "" {
		return "", nil, &srlErrors.Error{
			Type:     srlErrors.ErrorTypeStructural,
			Message:  "entry identifier must be a non-empty string",
			Value:    raw,
			Expected: "{identifier: value}",
		}
	}

	switch v := value.(type) {
	case map[string]any:
		attrs = mergeDefaults(v, defaults)
	default:
		if scalarKey == "" {
			return "", nil, &srlErrors.Error{
				Type:     srlErrors.ErrorTypeStructural,
				Message:  fmt.Sprintf("entry %q must map to an attribute mapping", name),
				Value:    value,
				Expected: "attribute mapping",
			}
		}
		attrs = mergeDefaults(map[string]any{scalarKey: v}, defaults)
	}

	return name, attrs, nil
}

// mergeDefaults returns a copy of attrs with defaults filled in for keys
// the document did not set.
func mergeDefaults(attrs, defaults map[string]any) map[string]any {
	merged := make(map[string]any, len(attrs)+len(defaults))
	for k, v := range attrs {
		merged[k] = v
	}
	for k, v := range defaults {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}
