// Package schema implements declarative shape validation for SRL
// documents.
//
// A document kind is described once as a tree of Shape values (Mapping,
// Sequence, Scalar, OneOf, Entry, Any), and a single recursive evaluator
// (Apply) interprets that description against raw decoded YAML. This keeps
// shape definitions testable in isolation from the coercion functions they
// bind.
//
// Apply normalizes as it validates: bare scalars are promoted where a
// sequence is expected, section-entry shorthand is expanded (Expand),
// defaults are injected, and scalar coercers map raw values into their
// typed domain forms. A failure produces a structural error carrying the
// offending subtree and the expected-shape description; sibling keys
// accumulate into one ErrorList.
package schema
