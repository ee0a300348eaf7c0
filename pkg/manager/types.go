package manager

import (
	"path/filepath"
	"strings"
	"time"

	"datalens-hq/saturn/pkg/srl/ast"
)

// LoaderConfig contains configuration for the rule loader.
type LoaderConfig struct {
	// MaxFileSize is the largest rule document the loader will read,
	// in bytes.
	MaxFileSize int64

	// AllowedExtensions lists the file extensions treated as rule
	// documents (e.g., ".yaml", ".yml").
	AllowedExtensions []string

	// SkipHidden controls whether hidden files and directories are
	// skipped during directory walks.
	SkipHidden bool

	// FollowSymlinks controls whether symbolic links are followed.
	FollowSymlinks bool

	// Workers is the number of documents compiled concurrently during
	// a directory load.
	Workers int
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxFileSize:       1048576, // 1MB
		AllowedExtensions: []string{".yaml", ".yml"},
		SkipHidden:        true,
		FollowSymlinks:    true,
		Workers:           4,
	}
}

// MatchesExtension reports whether the path carries one of the allowed
// rule file extensions.
func (c *LoaderConfig) MatchesExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range c.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// IsRuleFile reports whether a path names a rule document under this
// configuration. The loader and the file watcher share this predicate,
// so they can never disagree on which files carry rules.
func (c *LoaderConfig) IsRuleFile(path string) bool {
	if !c.MatchesExtension(path) {
		return false
	}
	if c.SkipHidden && strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return true
}

// RuleMetadata summarizes a registered rule for listings.
type RuleMetadata struct {
	Name       string
	Title      string
	TableType  string
	SourceFile string
	Score      int
	CardCount  int
}

// RegistryStats contains statistics about the rule registry.
type RegistryStats struct {
	RuleCount  int
	TotalCards int
	LoadTime   time.Time
	Version    string
}

// RuleName derives the registry name for a rule from its source file
// stem, falling back to the title when the rule has no source file.
func RuleName(rule *ast.Rule) string {
	if rule.SourceFile != "" {
		base := filepath.Base(rule.SourceFile)
		if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
			return stem
		}
	}
	return rule.Title
}
