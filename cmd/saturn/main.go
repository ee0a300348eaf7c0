// Saturn compiles loosely-structured YAML heuristic rules into canonical
// dashboard-generation rules.
//
// It discovers rule documents on disk, expands their shorthand forms,
// validates structure and cross-references, and serves the accepted rule
// set to embedding applications.
//
// Usage:
//
//	# Validate all rule documents in a directory
//	saturn validate --dir rules/
//
//	# Lint rules for taxonomy problems
//	saturn lint --file rules/transactions.yaml
//
//	# List accepted rules with table types and scores
//	saturn list --dir rules/
//
//	# Watch a directory and hot-reload on changes
//	saturn watch --dir rules/
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}
