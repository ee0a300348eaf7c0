package taxonomy

import (
	"sync"

	"datalens-hq/saturn/pkg/srl/ast"
)

// Root tags of the two type families the compiler classifies against.
const (
	TableRoot ast.TypeTag = "type/Table"
	FieldRoot ast.TypeTag = "type/Field"
)

// Hierarchy answers is-a questions over type tags. It is an injected
// capability: the surrounding system owns the taxonomy, the compiler only
// consults it.
type Hierarchy interface {
	// IsA reports whether tag is the ancestor itself or descends from it.
	IsA(tag, ancestor ast.TypeTag) bool
}

// Registry is a mutable Hierarchy built from explicit child->parent edges.
// IsA is reflexive and transitive.
type Registry struct {
	mu      sync.RWMutex
	parents map[ast.TypeTag][]ast.TypeTag
}

// NewRegistry creates an empty taxonomy registry.
func NewRegistry() *Registry {
	return &Registry{
		parents: make(map[ast.TypeTag][]ast.TypeTag),
	}
}

// Register records that child descends directly from parent.
func (r *Registry) Register(child, parent ast.TypeTag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parents[child] = append(r.parents[child], parent)
}

// IsA reports whether tag equals ancestor or transitively descends from it.
func (r *Registry) IsA(tag, ancestor ast.TypeTag) bool {
	if tag == ancestor {
		return true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[ast.TypeTag]bool)
	queue := []ast.TypeTag{tag}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true

		for _, parent := range r.parents[cur] {
			if parent == ancestor {
				return true
			}
			queue = append(queue, parent)
		}
	}
	return false
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the built-in hierarchy. It covers the table and field
// tags the stock rule documents use; deployments with their own taxonomy
// inject their own Hierarchy instead.
func Default() Hierarchy {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()

		tables := []ast.TypeTag{
			"type/GenericTable",
			"type/TransactionTable",
			"type/EventTable",
			"type/UserTable",
			"type/GoogleAnalyticsTable",
		}
		for _, t := range tables {
			defaultReg.Register(t, TableRoot)
		}

		fields := []ast.TypeTag{
			"type/Category",
			"type/Number",
			"type/Text",
			"type/Temporal",
			"type/Coordinate",
			"type/Boolean",
			"type/PK",
			"type/FK",
		}
		for _, f := range fields {
			defaultReg.Register(f, FieldRoot)
		}

		defaultReg.Register("type/DateTime", "type/Temporal")
		defaultReg.Register("type/Date", "type/Temporal")
		defaultReg.Register("type/Time", "type/Temporal")
		defaultReg.Register("type/Latitude", "type/Coordinate")
		defaultReg.Register("type/Longitude", "type/Coordinate")
		defaultReg.Register("type/Currency", "type/Number")
		defaultReg.Register("type/Quantity", "type/Number")
		defaultReg.Register("type/State", "type/Category")
		defaultReg.Register("type/Country", "type/Category")
	})
	return defaultReg
}
