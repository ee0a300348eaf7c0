package ast

import "strings"

// ExternalDimensionPrefix marks external analytics dimension identifiers
// (e.g. "ga:source"). Tags with this prefix pass through coercion unchanged.
const ExternalDimensionPrefix = "ga:"

// TypeNamespace is the namespace bare words are qualified into during
// coercion ("Category" becomes "type/Category").
const TypeNamespace = "type"

// TypeTag is a hierarchical type tag such as "type/Category" or
// "type/TransactionTable". External dimension identifiers ("ga:...") are
// also carried as TypeTags and treated as opaque.
type TypeTag string

// IsQualified returns true if the tag already carries a namespace.
func (t TypeTag) IsQualified() bool {
	return strings.Contains(string(t), "/")
}

// IsExternal returns true if the tag is an external analytics dimension
// identifier rather than a taxonomy tag.
func (t TypeTag) IsExternal() bool {
	return strings.HasPrefix(string(t), ExternalDimensionPrefix)
}

// Name returns the tag without its namespace ("type/Category" -> "Category").
func (t TypeTag) Name() string {
	if i := strings.LastIndex(string(t), "/"); i >= 0 {
		return string(t)[i+1:]
	}
	return string(t)
}

// QualifyTypeTag turns a bare word into a tag in the type namespace.
// Already-qualified tags and external dimension identifiers are returned
// unchanged. There is no error path: any string is acceptable input.
func QualifyTypeTag(s string) TypeTag {
	t := TypeTag(s)
	if t.IsQualified() || t.IsExternal() {
		return t
	}
	return TypeTag(TypeNamespace + "/" + s)
}

// FieldType describes the kind of column a dimension binds to. A field is
// either reached directly (Table is empty) or through a related table, in
// which case Table names the related table's type.
type FieldType struct {
	Table TypeTag // Zero when the field is reached directly
	Field TypeTag
}

// IsCompound returns true if the field is reached through a related table.
func (f FieldType) IsCompound() bool {
	return f.Table != ""
}

// String renders the field type in its compact document form.
func (f FieldType) String() string {
	if f.IsCompound() {
		return string(f.Table) + "." + string(f.Field)
	}
	return string(f.Field)
}
