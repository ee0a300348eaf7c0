package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"datalens-hq/saturn/pkg/manager"
	"datalens-hq/saturn/pkg/srl/compiler"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint rule documents for taxonomy problems",
	Long: `Lint rule documents beyond hard validation.

Lint compiles each document (rejecting anything validate would reject)
and then reports soft findings: field type tags outside the known
taxonomy, table types nobody has registered, and similar problems that
do not make a rule invalid but usually indicate a typo.

Examples:
  # Lint a single file
  saturn lint --file rules/transactions.yaml

  # Lint a directory, treating findings as errors
  saturn lint --dir rules/ --strict`,
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "rule file to lint")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of rule files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat findings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult represents the lint outcome for a single rule file.
type LintResult struct {
	File     string        `json:"file"`
	Valid    bool          `json:"valid"`
	Errors   []IssueDetail `json:"errors,omitempty"`
	Findings []string      `json:"findings,omitempty"`
}

func lintRules(cmd *cobra.Command, args []string) error {
	files, err := gatherRuleFiles(lintFlags.file, lintFlags.dir)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	comp := compiler.New(
		compiler.WithMaxFileSize(cfg.Rules.MaxFileSize),
		compiler.WithTableTypeFallback(compiler.TableTypeFromPath),
	)
	loader := manager.NewRuleLoader(loaderConfigFrom(cfg), comp, logger, nil)

	results := make([]LintResult, 0, len(files))
	failed, findings := 0, 0
	for _, file := range files {
		result := LintResult{File: file, Valid: true}

		rule, err := loader.LoadFromFile(file)
		if err != nil {
			result.Valid = false
			result.Errors = issueDetails(err)
			failed++
		} else {
			result.Findings = comp.Lint(rule)
			findings += len(result.Findings)
		}

		results = append(results, result)
	}

	if lintFlags.format == "json" {
		if err := outputJSON(results); err != nil {
			return err
		}
	} else {
		outputLintText(results)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(files))
	}
	if lintFlags.strict && findings > 0 {
		return fmt.Errorf("%d lint findings (strict mode)", findings)
	}
	return nil
}

func outputLintText(results []LintResult) {
	for _, result := range results {
		switch {
		case !result.Valid:
			fmt.Printf("✗ %s\n", result.File)
			for _, issue := range result.Errors {
				fmt.Printf("  [%s] %s\n", issue.Type, issue.Message)
			}
		case len(result.Findings) > 0:
			fmt.Printf("! %s\n", result.File)
			for _, finding := range result.Findings {
				fmt.Printf("  %s\n", finding)
			}
		default:
			fmt.Printf("✓ %s\n", result.File)
		}
	}
}
