package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"datalens-hq/saturn/pkg/manager"
	srlErrors "datalens-hq/saturn/pkg/srl/errors"
)

var validateFlags struct {
	file   string
	dir    string
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate rule documents",
	Long: `Validate rule documents for syntax, structural and reference errors.

The validate command compiles each document and performs full validation:
  - YAML syntax validation
  - Document shape validation (required keys, scalar constraints, scores)
  - Shorthand expansion (bare scalars, scalar-for-list promotion)
  - Cross-reference validation (card dimensions, metrics, filters, order_by)

Examples:
  # Validate a single file
  saturn validate --file rules/transactions.yaml

  # Validate a directory
  saturn validate --dir rules/

  # JSON output for CI/CD
  saturn validate --dir rules/ --format json`,
	RunE: validateRules,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.file, "file", "f", "", "rule file to validate")
	validateCmd.Flags().StringVarP(&validateFlags.dir, "dir", "d", "", "directory of rule files")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// ValidationResult represents the validation result for a single rule file.
type ValidationResult struct {
	File   string        `json:"file"`
	Valid  bool          `json:"valid"`
	Errors []IssueDetail `json:"errors,omitempty"`
}

// IssueDetail represents a single validation error.
type IssueDetail struct {
	Type       string `json:"type,omitempty"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func validateRules(cmd *cobra.Command, args []string) error {
	files, err := gatherRuleFiles(validateFlags.file, validateFlags.dir)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	loader := manager.NewRuleLoader(loaderConfigFrom(cfg), nil, logger, nil)

	results := make([]ValidationResult, 0, len(files))
	failed := 0
	for _, file := range files {
		result := validateRuleFile(loader, file)
		if !result.Valid {
			failed++
		}
		results = append(results, result)
	}

	if validateFlags.format == "json" {
		if err := outputJSON(results); err != nil {
			return err
		}
	} else {
		outputText(results)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(files))
	}
	return nil
}

func validateRuleFile(loader *manager.RuleLoader, path string) ValidationResult {
	result := ValidationResult{File: path, Valid: true}

	if _, err := loader.LoadFromFile(path); err != nil {
		result.Valid = false
		result.Errors = issueDetails(err)
	}

	return result
}

// issueDetails flattens a load failure into reportable issues.
func issueDetails(err error) []IssueDetail {
	var compileErr *manager.CompileError
	if errors.As(err, &compileErr) {
		err = compileErr.Cause
	}

	var list *srlErrors.ErrorList
	if errors.As(err, &list) {
		details := make([]IssueDetail, 0, len(list.Errors))
		for _, e := range list.Errors {
			details = append(details, issueFromError(e))
		}
		return details
	}

	var single *srlErrors.Error
	if errors.As(err, &single) {
		return []IssueDetail{issueFromError(single)}
	}

	return []IssueDetail{{Type: "io", Message: err.Error()}}
}

func issueFromError(e *srlErrors.Error) IssueDetail {
	return IssueDetail{
		Type:       string(e.Type),
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		Message:    e.Message,
		Suggestion: e.Suggestion,
	}
}

// gatherRuleFiles resolves the --file/--dir flags into a file list.
func gatherRuleFiles(file, dir string) ([]string, error) {
	if file == "" && dir == "" {
		return nil, fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if file != "" {
		files = append(files, file)
	}

	if dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return nil, fmt.Errorf("failed to list rule files: %w", err)
			}
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no rule files found")
	}

	return files, nil
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputText(results []ValidationResult) {
	for _, result := range results {
		if result.Valid {
			fmt.Printf("✓ %s\n", result.File)
			continue
		}

		fmt.Printf("✗ %s\n", result.File)
		for _, issue := range result.Errors {
			if issue.Line > 0 {
				fmt.Printf("  [%s] line %d: %s\n", issue.Type, issue.Line, issue.Message)
			} else {
				fmt.Printf("  [%s] %s\n", issue.Type, issue.Message)
			}
			if issue.Suggestion != "" {
				fmt.Printf("    suggestion: %s\n", issue.Suggestion)
			}
		}
	}
}
