// Package ast defines the canonical typed form of a Saturn Rule Language
// (SRL) document.
//
// An SRL document describes how to generate an analytical dashboard for a
// class of data tables: it defines named dimensions, metrics and filters,
// and display cards that reference those sections by name. The compiler in
// pkg/srl/compiler normalizes a loosely-structured YAML document into the
// types defined here; the reference checker in pkg/srl/validator then
// confirms the document's internal cross-references are consistent.
//
// # Core Types
//
// Rule: the accepted document with its table type, title, sections, cards
//
// Dimension, Metric, Filter: named building blocks referenced by cards
//
// Card: one dashboard widget specification
//
// TypeTag, FieldType: hierarchical type tags for tables and fields
//
// Expression: opaque query fragment, scanned only for dimension references
//
// # Immutability
//
// A Rule is constructed once per input document and never mutated after
// acceptance. It is a terminal artifact consumed by downstream dashboard
// generation.
package ast
