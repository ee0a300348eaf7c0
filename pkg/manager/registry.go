package manager

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"datalens-hq/saturn/pkg/srl/ast"
	"datalens-hq/saturn/pkg/srl/taxonomy"
)

// RuleRegistry is a thread-safe in-memory store for accepted rules,
// keyed by rule name. It supports atomic replacement of the whole rule
// set for hot reloads, and taxonomy-aware candidate lookup.
type RuleRegistry struct {
	mu        sync.RWMutex
	rules     map[string]*ast.Rule
	hierarchy taxonomy.Hierarchy
	version   string
	loadTime  time.Time
}

// NewRuleRegistry creates a new empty rule registry. If hierarchy is
// nil, the built-in taxonomy is used.
func NewRuleRegistry(hierarchy taxonomy.Hierarchy) *RuleRegistry {
	if hierarchy == nil {
		hierarchy = taxonomy.Default()
	}
	return &RuleRegistry{
		rules:     make(map[string]*ast.Rule),
		hierarchy: hierarchy,
		loadTime:  time.Now(),
	}
}

// Register adds a rule to the registry. If a rule with the same name
// already exists, it is replaced.
func (r *RuleRegistry) Register(rule *ast.Rule) error {
	if rule == nil {
		return &RegistryError{Operation: "register", Message: "rule cannot be nil"}
	}

	name := RuleName(rule)
	if name == "" {
		return &RegistryError{Operation: "register", Message: "rule name cannot be empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules[name] = rule
	r.updateVersion()

	return nil
}

// Unregister removes a rule from the registry by name.
func (r *RuleRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[name]; !ok {
		return &RegistryError{RuleName: name, Operation: "unregister", Message: "rule not found"}
	}

	delete(r.rules, name)
	r.updateVersion()

	return nil
}

// Replace atomically replaces the entire rule set with a new set.
// This is used for atomic hot-reload operations.
func (r *RuleRegistry) Replace(rules []*ast.Rule) error {
	if rules == nil {
		return &RegistryError{Operation: "replace", Message: "rules cannot be nil"}
	}

	newRules := make(map[string]*ast.Rule, len(rules))
	for _, rule := range rules {
		if rule == nil {
			return &RegistryError{Operation: "replace", Message: "rule cannot be nil"}
		}
		name := RuleName(rule)
		if name == "" {
			return &RegistryError{Operation: "replace", Message: "rule name cannot be empty"}
		}
		newRules[name] = rule
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = newRules
	r.loadTime = time.Now()
	r.updateVersion()

	return nil
}

// Get retrieves a rule by name. Returns false if the rule is not found.
func (r *RuleRegistry) Get(name string) (*ast.Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[name]
	return rule, ok
}

// GetAll retrieves all rules in the registry. The returned slice is a
// copy and will not be modified by the registry.
func (r *RuleRegistry) GetAll() []*ast.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := make([]*ast.Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}

	return rules
}

// Candidates returns the rules applicable to the given table type,
// ordered by rule score descending and then by name. A rule applies
// when the requested table type is the rule's table type or one of its
// descendants in the taxonomy.
func (r *RuleRegistry) Candidates(tableType ast.TypeTag) []*ast.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type candidate struct {
		name string
		rule *ast.Rule
	}

	var matched []candidate
	for name, rule := range r.rules {
		if r.hierarchy.IsA(tableType, rule.TableType) {
			matched = append(matched, candidate{name: name, rule: rule})
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		si, sj := matched[i].rule.Score(), matched[j].rule.Score()
		if si != sj {
			return si > sj
		}
		return matched[i].name < matched[j].name
	})

	rules := make([]*ast.Rule, len(matched))
	for i, c := range matched {
		rules[i] = c.rule
	}
	return rules
}

// Count returns the number of rules in the registry.
func (r *RuleRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rules)
}

// Clear removes all rules from the registry.
func (r *RuleRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = make(map[string]*ast.Rule)
	r.updateVersion()
}

// Names returns a sorted list of all rule names in the registry.
func (r *RuleRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Version returns the current version of the registry. The version
// changes whenever rules are added, removed, or replaced.
func (r *RuleRegistry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// LoadTime returns the timestamp when rules were last loaded or updated.
func (r *RuleRegistry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadTime
}

// Metadata returns listing metadata for all rules, sorted by name.
func (r *RuleRegistry) Metadata() []RuleMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)

	metadata := make([]RuleMetadata, 0, len(names))
	for _, name := range names {
		rule := r.rules[name]
		metadata = append(metadata, RuleMetadata{
			Name:       name,
			Title:      rule.Title,
			TableType:  string(rule.TableType),
			SourceFile: rule.SourceFile,
			Score:      rule.Score(),
			CardCount:  len(rule.Cards),
		})
	}

	return metadata
}

// Stats returns statistics about the rules in the registry.
func (r *RuleRegistry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{
		RuleCount: len(r.rules),
		LoadTime:  r.loadTime,
		Version:   r.version,
	}

	for _, rule := range r.rules {
		stats.TotalCards += len(rule.Cards)
	}

	return stats
}

// updateVersion updates the registry version based on the current state.
// This should be called with the write lock held.
func (r *RuleRegistry) updateVersion() {
	h := sha256.New()

	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rule := r.rules[name]
		h.Write([]byte(name))
		h.Write([]byte(rule.TableType))
		h.Write([]byte(rule.SourceFile))
	}

	r.version = fmt.Sprintf("%x", h.Sum(nil))[:16]
}
