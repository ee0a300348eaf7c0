package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"datalens-hq/saturn/pkg/manager"
	"datalens-hq/saturn/pkg/srl/compiler"
)

var listFlags struct {
	dir    string
	format string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rules in a directory",
	Long: `List the rules in a directory.

List loads every rule document under the directory, registers the ones
that compile, and prints a summary per rule: registry name, table type,
score and card count. Documents that fail to compile are reported on
stderr but do not abort the listing.

Examples:
  # List rules from the configured rules directory
  saturn list

  # List rules from an explicit directory as JSON
  saturn list --dir rules/ --format json`,
	RunE: listRules,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFlags.dir, "dir", "d", "", "directory of rule files (defaults to rules.dir from config)")
	listCmd.Flags().StringVar(&listFlags.format, "format", "text", "output format: text, json")
}

// RuleListing is the JSON shape of a single listed rule.
type RuleListing struct {
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	TableType string `json:"table_type"`
	Score     int    `json:"score"`
	CardCount int    `json:"card_count"`
	Source    string `json:"source,omitempty"`
}

func listRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	dir := listFlags.dir
	if dir == "" {
		dir = cfg.Rules.Dir
	}

	comp := compiler.New(
		compiler.WithMaxFileSize(cfg.Rules.MaxFileSize),
		compiler.WithTableTypeFallback(compiler.TableTypeFromPath),
	)
	loader := manager.NewRuleLoader(loaderConfigFrom(cfg), comp, logger, nil)

	rules, err := loader.LoadFromDirectory(dir)
	if err != nil {
		if rules == nil {
			return err
		}
		var errList *manager.ErrorList
		if errors.As(err, &errList) {
			for _, loadErr := range errList.Errors {
				fmt.Fprintf(os.Stderr, "skipped: %v\n", loadErr)
			}
		} else {
			fmt.Fprintf(os.Stderr, "skipped: %v\n", err)
		}
	}

	registry := manager.NewRuleRegistry(nil)
	if err := registry.Replace(rules); err != nil {
		return err
	}

	listings := make([]RuleListing, 0, registry.Count())
	for _, meta := range registry.Metadata() {
		listings = append(listings, RuleListing{
			Name:      meta.Name,
			Title:     meta.Title,
			TableType: meta.TableType,
			Score:     meta.Score,
			CardCount: meta.CardCount,
			Source:    meta.SourceFile,
		})
	}

	if listFlags.format == "json" {
		return outputJSON(listings)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTABLE TYPE\tSCORE\tCARDS")
	for _, listing := range listings {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", listing.Name, listing.TableType, listing.Score, listing.CardCount)
	}
	return w.Flush()
}
