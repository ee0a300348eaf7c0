package validator

import (
	"fmt"
	"sort"

	"datalens-hq/saturn/pkg/srl/ast"
	srlErrors "datalens-hq/saturn/pkg/srl/errors"
)

// ReferenceValidator checks whole-document referential integrity: every
// symbolic name used by a card, an order_by entry, or an expression's
// embedded dimension reference must resolve to an entry defined in the
// corresponding section. It operates on the canonical Rule and assumes
// shape validation has already succeeded.
//
// The validator holds no per-document state; one instance is safe for
// concurrent use from multiple goroutines.
type ReferenceValidator struct{}

// New creates a new reference validator.
func New() *ReferenceValidator {
	return &ReferenceValidator{}
}

// Validate checks all references in a rule. It returns an ErrorList of
// reference errors, or nil if the document is internally consistent.
// Integrity is document-wide: any unresolved name rejects the whole rule.
func (v *ReferenceValidator) Validate(rule *ast.Rule) error {
	errs := srlErrors.NewErrorList()

	dimensions := rule.DimensionNames()
	metrics := rule.MetricNames()
	filters := rule.FilterNames()

	for _, card := range rule.Cards {
		checkCardSection(errs, card, "dimensions", card.Dimensions, dimensions)
		checkCardSection(errs, card, "metrics", card.Metrics, metrics)
		checkCardSection(errs, card, "filters", card.Filters, filters)
		checkOrderBy(errs, card, dimensions, metrics)
	}

	// Dimension references nested inside metric and filter expressions
	// must resolve as well, regardless of nesting depth.
	for _, m := range rule.Metrics {
		checkExpression(errs, fmt.Sprintf("metric %q", m.Name), m.Expr, dimensions)
	}
	for _, f := range rule.Filters {
		checkExpression(errs, fmt.Sprintf("filter %q", f.Name), f.Expr, dimensions)
	}

	return errs.ToError()
}

// checkCardSection verifies that every name a card lists under one section
// key is defined in the rule's corresponding top-level section.
func checkCardSection(errs *srlErrors.ErrorList, card *ast.Card, section string, used []string, defined map[string]struct{}) {
	for _, name := range used {
		if _, ok := defined[name]; ok {
			continue
		}
		errs.Add(&srlErrors.Error{
			Type:       srlErrors.ErrorTypeReference,
			Message:    fmt.Sprintf("card %q references undefined %s entry %q", card.Name, section, name),
			Value:      name,
			Expected:   fmt.Sprintf("a name defined in the %s section", section),
			Suggestion: srlErrors.SuggestName(name, sortedNames(defined)),
		})
	}
}

// checkOrderBy verifies order_by keys against the union of the dimension
// and metric sections. A name defined in either section is acceptable; no
// precedence between the two is implied.
func checkOrderBy(errs *srlErrors.ErrorList, card *ast.Card, dimensions, metrics map[string]struct{}) {
	for _, o := range card.OrderBy {
		if _, ok := dimensions[o.Name]; ok {
			continue
		}
		if _, ok := metrics[o.Name]; ok {
			continue
		}
		union := make(map[string]struct{}, len(dimensions)+len(metrics))
		for name := range dimensions {
			union[name] = struct{}{}
		}
		for name := range metrics {
			union[name] = struct{}{}
		}
		errs.Add(&srlErrors.Error{
			Type:       srlErrors.ErrorTypeReference,
			Message:    fmt.Sprintf("card %q orders by undefined name %q", card.Name, o.Name),
			Value:      o.Name,
			Expected:   "a name defined in the dimensions or metrics section",
			Suggestion: srlErrors.SuggestName(o.Name, sortedNames(union)),
		})
	}
}

// checkExpression verifies every dimension reference embedded in an
// expression tree.
func checkExpression(errs *srlErrors.ErrorList, owner string, expr ast.Expression, dimensions map[string]struct{}) {
	for _, name := range expr.Dimensions() {
		if _, ok := dimensions[name]; ok {
			continue
		}
		errs.Add(&srlErrors.Error{
			Type:       srlErrors.ErrorTypeReference,
			Message:    fmt.Sprintf("%s references undefined dimension %q in its expression", owner, name),
			Value:      name,
			Expected:   "a name defined in the dimensions section",
			Suggestion: srlErrors.SuggestName(name, sortedNames(dimensions)),
		})
	}
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
