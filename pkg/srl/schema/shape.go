package schema

import (
	"fmt"
	"sort"
	"strings"

	srlErrors "datalens-hq/saturn/pkg/srl/errors"
)

// Shape is one node in a declarative description of the form a document
// subtree must take. A shape tree is data: it is built once per document
// kind and interpreted by Apply, rather than scattering type checks
// through call sites.
type Shape interface {
	// Describe returns a human-readable description of the expected form,
	// used in structural error messages.
	Describe() string
}

// Scalar is a constrained scalar. Coerce both checks the constraint and
// maps the raw value into its typed domain form; it returns a structural
// error when the value does not satisfy the constraint.
type Scalar struct {
	Name   string
	Coerce func(v any) (any, *srlErrors.Error)
}

// Describe implements Shape.
func (s *Scalar) Describe() string { return s.Name }

// Mapping is a string-keyed mapping with declared required and optional
// keys. Keys outside both sets are rejected.
type Mapping struct {
	Name     string
	Required map[string]Shape
	Optional map[string]Shape
}

// Describe implements Shape.
func (m *Mapping) Describe() string {
	keys := make([]string, 0, len(m.Required)+len(m.Optional))
	for k := range m.Required {
		keys = append(keys, k)
	}
	for k := range m.Optional {
		keys = append(keys, k+"?")
	}
	sort.Strings(keys)

	name := m.Name
	if name == "" {
		name = "mapping"
	}
	return fmt.Sprintf("%s {%s}", name, strings.Join(keys, ", "))
}

// Sequence is a sequence of elements all matching Elem. With PromoteScalar
// set, a bare scalar is first promoted to a one-element sequence, the
// common "one value meant as a list" case.
type Sequence struct {
	Elem          Shape
	PromoteScalar bool
}

// Describe implements Shape.
func (s *Sequence) Describe() string {
	desc := fmt.Sprintf("sequence of %s", s.Elem.Describe())
	if s.PromoteScalar {
		desc += " (a single value is accepted)"
	}
	return desc
}

// OneOf accepts the first alternative whose shape the value satisfies.
type OneOf struct {
	Name         string
	Alternatives []Shape
}

// Describe implements Shape.
func (o *OneOf) Describe() string {
	if o.Name != "" {
		return o.Name
	}
	parts := make([]string, len(o.Alternatives))
	for i, alt := range o.Alternatives {
		parts[i] = alt.Describe()
	}
	return strings.Join(parts, " or ")
}

// Entry is a named section entry: a one-entry mapping {identifier: value}.
// The value side may be given in shorthand form (a bare scalar standing
// for {ScalarKey: value}); Expand resolves the shorthand and merges
// Defaults underneath before Attrs is applied. ScalarKey may be empty for
// sections without a bare-scalar shorthand.
type Entry struct {
	Name      string
	ScalarKey string
	Defaults  map[string]any
	Attrs     *Mapping
}

// Describe implements Shape.
func (e *Entry) Describe() string {
	name := e.Name
	if name == "" {
		name = "entry"
	}
	return fmt.Sprintf("%s {identifier: %s}", name, e.Attrs.Describe())
}

// Any accepts any subtree unchanged. Used for opaque expression trees.
type Any struct {
	Name string
}

// Describe implements Shape.
func (a *Any) Describe() string {
	if a.Name != "" {
		return a.Name
	}
	return "any value"
}
