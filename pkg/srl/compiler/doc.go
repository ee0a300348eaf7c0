// Package compiler normalizes loosely-structured SRL documents into the
// canonical typed form defined in pkg/srl/ast.
//
// The pipeline per document:
//
//  1. YAML decoding (gopkg.in/yaml.v3) into a generic tree
//  2. Table-type fallback for documents that omit table_type
//  3. Shape evaluation (pkg/srl/schema): shorthand expansion, default
//     injection, type coercion, required/unknown-key checking
//  4. Construction of the canonical *ast.Rule
//
// Coercion is idempotent: compiling the generic form produced by
// (*ast.Rule).Encode yields an identical rule. The compiler performs no
// reference-integrity checking; pkg/srl/validator runs that pass on the
// canonical rule afterwards.
//
// Type-tag coercion has no error path. Qualified tags ("type/Category")
// and external dimension identifiers ("ga:source") pass through; bare
// words are qualified into the type namespace. The injected taxonomy
// (pkg/srl/taxonomy) is consulted only by Lint, which flags tags outside
// the Table/Field hierarchies without rejecting the document.
package compiler
