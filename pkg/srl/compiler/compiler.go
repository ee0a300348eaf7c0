package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"datalens-hq/saturn/pkg/srl/ast"
	srlErrors "datalens-hq/saturn/pkg/srl/errors"
	"datalens-hq/saturn/pkg/srl/schema"
	"datalens-hq/saturn/pkg/srl/taxonomy"
)

// Compiler normalizes loosely-structured rule documents into canonical
// Rules. It handles YAML decoding, shorthand expansion, default injection,
// type coercion and shape validation; reference-integrity checking is a
// separate pass in pkg/srl/validator.
type Compiler struct {
	hierarchy   taxonomy.Hierarchy
	maxFileSize int64
	fallback    func(sourcePath string) string
	shape       *schema.Mapping
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithHierarchy injects the type taxonomy used by Lint to classify tags.
func WithHierarchy(h taxonomy.Hierarchy) Option {
	return func(c *Compiler) { c.hierarchy = h }
}

// WithMaxFileSize sets the maximum document size in bytes.
func WithMaxFileSize(size int64) Option {
	return func(c *Compiler) { c.maxFileSize = size }
}

// WithTableTypeFallback sets the function that derives a table type for
// documents that omit table_type. It receives the document's source path;
// returning "" disables the fallback for that document.
func WithTableTypeFallback(fn func(sourcePath string) string) Option {
	return func(c *Compiler) { c.fallback = fn }
}

// New creates a compiler with default configuration: 1MB size limit, the
// built-in taxonomy, and a table-type fallback derived from the document's
// filename stem.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		hierarchy:   taxonomy.Default(),
		maxFileSize: 1 << 20,
		fallback:    TableTypeFromPath,
		shape:       documentShape(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TableTypeFromPath derives a table type word from a document's filename
// stem: "rules/TransactionTable.yaml" yields "TransactionTable". The word
// is qualified into a tag during coercion.
func TableTypeFromPath(sourcePath string) string {
	base := filepath.Base(sourcePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Compile reads and compiles the rule document at the given path.
func (c *Compiler) Compile(path string) (*ast.Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &srlErrors.Error{
			Type:     srlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("failed to access file: %v", err),
			Location: ast.Location{File: path},
		}
	}
	if info.Size() > c.maxFileSize {
		return nil, &srlErrors.Error{
			Type:     srlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("file size %d exceeds maximum %d bytes", info.Size(), c.maxFileSize),
			Location: ast.Location{File: path},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &srlErrors.Error{
			Type:     srlErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("failed to read file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	return c.CompileBytes(data, path)
}

// CompileBytes compiles a rule document from a byte slice. sourcePath is
// used for error reporting and for the table-type fallback.
func (c *Compiler) CompileBytes(data []byte, sourcePath string) (*ast.Rule, error) {
	raw, err := decodeDocument(data)
	if err != nil {
		return nil, &srlErrors.Error{
			Type:       srlErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML decoding failed: %v", err),
			Location:   ast.Location{File: sourcePath, Line: 1, Column: 1},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	return c.CompileTree(raw, sourcePath)
}

// CompileTree compiles an already-decoded generic tree. This is the entry
// point for callers that decode documents themselves.
func (c *Compiler) CompileTree(raw map[string]any, sourcePath string) (*ast.Rule, error) {
	if _, ok := raw["table_type"]; !ok && c.fallback != nil {
		if derived := c.fallback(sourcePath); derived != "" {
			withType := make(map[string]any, len(raw)+1)
			for k, v := range raw {
				withType[k] = v
			}
			withType["table_type"] = derived
			raw = withType
		}
	}

	normalized, err := schema.Apply(c.shape, raw)
	if err != nil {
		return nil, err
	}

	return buildRule(normalized.(map[string]any), sourcePath), nil
}

// Lint reports taxonomy-level findings on an accepted rule: a table type
// outside the Table hierarchy or a dimension field tag outside the Field
// hierarchy. These are advisory for stock taxonomies, since coercion
// accepts any tag.
func (c *Compiler) Lint(rule *ast.Rule) []string {
	var findings []string

	if !IsTableTag(c.hierarchy, rule.TableType) {
		findings = append(findings,
			fmt.Sprintf("table_type %q is not a known table type", rule.TableType))
	}

	for _, d := range rule.Dimensions {
		if !IsFieldTag(c.hierarchy, d.FieldType.Field) {
			findings = append(findings,
				fmt.Sprintf("dimension %q: field tag %q is not a known field type", d.Name, d.FieldType.Field))
		}
		if d.FieldType.IsCompound() && !IsTableTag(c.hierarchy, d.FieldType.Table) {
			findings = append(findings,
				fmt.Sprintf("dimension %q: table tag %q is not a known table type", d.Name, d.FieldType.Table))
		}
	}

	return findings
}
