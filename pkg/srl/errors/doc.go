// Package errors provides structured error types for SRL compilation.
//
// Every rejection of a rule document is expressed as an Error carrying the
// offending value, a description of the expected shape, and optionally a
// suggested fix. ErrorList accumulates errors across independent parts of
// one document so a single pass can report everything wrong with it.
//
// # Error Types
//
// ErrorTypeSyntax: the YAML text failed to decode into a tree at all
//
// ErrorTypeStructural: a required key is missing, an unknown key is
// present, or a scalar failed its shape constraint
//
// ErrorTypeReference: a card, order_by or embedded expression references a
// name not defined in the corresponding section
//
// ErrorTypeIO: the document could not be read
//
// Structural and reference errors are always fatal to the containing
// document and never escape a single document's processing; the loader
// catches them at the document boundary and continues with the next one.
package errors
