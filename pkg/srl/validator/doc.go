// Package validator implements the reference-integrity pass of the SRL
// pipeline.
//
// After the compiler has produced a canonical Rule, the reference
// validator confirms that every symbolic name the document uses resolves:
//
//   - names a card lists under dimensions/metrics/filters resolve to
//     entries defined in the corresponding top-level section
//   - order_by keys resolve in the union of the dimensions and metrics
//     sections (either is acceptable when a name exists in both)
//   - dimension references embedded anywhere inside a metric or filter
//     expression resolve in the dimensions section
//
// Any unresolved name rejects the whole document; there is no partial
// acceptance. Section lookup is existence-based: duplicate definitions
// within one section collapse rather than erroring.
package validator
