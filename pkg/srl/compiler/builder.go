package compiler

import (
	"datalens-hq/saturn/pkg/srl/ast"
)

// buildRule constructs the canonical Rule from a normalized document tree.
// The tree has already passed shape evaluation, so every assertion below
// is guaranteed by the document shape.
func buildRule(doc map[string]any, sourcePath string) *ast.Rule {
	rule := &ast.Rule{
		TableType:  doc["table_type"].(ast.TypeTag),
		Title:      doc["title"].(string),
		SourceFile: sourcePath,
		Location: ast.Location{
			File:   sourcePath,
			Line:   1,
			Column: 1,
		},
	}

	if desc, ok := doc["description"].(string); ok {
		rule.Description = desc
	}

	for _, e := range entries(doc["dimensions"]) {
		rule.Dimensions = append(rule.Dimensions, &ast.Dimension{
			Name:      e.name,
			FieldType: e.attrs["field_type"].(ast.FieldType),
			Score:     e.attrs["score"].(int),
		})
	}

	for _, e := range entries(doc["metrics"]) {
		rule.Metrics = append(rule.Metrics, &ast.Metric{
			Name:  e.name,
			Expr:  ast.Expression{Tree: e.attrs["metric"]},
			Score: e.attrs["score"].(int),
		})
	}

	for _, e := range entries(doc["filters"]) {
		rule.Filters = append(rule.Filters, &ast.Filter{
			Name:  e.name,
			Expr:  ast.Expression{Tree: e.attrs["filter"]},
			Score: e.attrs["score"].(int),
		})
	}

	for _, e := range entries(doc["cards"]) {
		rule.Cards = append(rule.Cards, buildCard(e.name, e.attrs))
	}

	return rule
}

func buildCard(name string, attrs map[string]any) *ast.Card {
	card := &ast.Card{
		Name:          name,
		Title:         attrs["title"].(string),
		Visualization: attrs["visualization"].(ast.Visualization),
		Score:         attrs["score"].(int),
	}

	if desc, ok := attrs["description"].(string); ok {
		card.Description = desc
	}
	if limit, ok := attrs["limit"].(int); ok {
		card.Limit = limit
	}

	card.Dimensions = stringList(attrs["dimensions"])
	card.Metrics = stringList(attrs["metrics"])
	card.Filters = stringList(attrs["filters"])

	if raw, ok := attrs["order_by"].([]any); ok {
		for _, elem := range raw {
			card.OrderBy = append(card.OrderBy, elem.(ast.OrderBy))
		}
	}

	return card
}

// sectionEntry is one normalized named entry of a section sequence.
type sectionEntry struct {
	name  string
	attrs map[string]any
}

// entries flattens a normalized section sequence into (identifier,
// attributes) pairs, preserving document order.
func entries(section any) []sectionEntry {
	seq, ok := section.([]any)
	if !ok {
		return nil
	}
	out := make([]sectionEntry, 0, len(seq))
	for _, elem := range seq {
		for name, attrs := range elem.(map[string]any) {
			out = append(out, sectionEntry{name: name, attrs: attrs.(map[string]any)})
		}
	}
	return out
}

func stringList(v any) []string {
	seq, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(seq))
	for _, elem := range seq {
		out = append(out, elem.(string))
	}
	return out
}
