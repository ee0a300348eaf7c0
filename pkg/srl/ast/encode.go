package ast

// Encode renders the rule back into the fully-expanded generic document
// form: every shorthand expanded, every default explicit. Compiling the
// encoded form again yields an identical rule, which is what makes the
// pipeline idempotent over canonical input.
func (r *Rule) Encode() map[string]any {
	doc := map[string]any{
		"table_type": string(r.TableType),
		"title":      r.Title,
		"dimensions": encodeDimensions(r.Dimensions),
		"cards":      encodeCards(r.Cards),
	}
	if r.Description != "" {
		doc["description"] = r.Description
	}
	if len(r.Metrics) > 0 {
		metrics := make([]any, 0, len(r.Metrics))
		for _, m := range r.Metrics {
			metrics = append(metrics, map[string]any{
				m.Name: map[string]any{"metric": m.Expr.Tree, "score": m.Score},
			})
		}
		doc["metrics"] = metrics
	}
	if len(r.Filters) > 0 {
		filters := make([]any, 0, len(r.Filters))
		for _, f := range r.Filters {
			filters = append(filters, map[string]any{
				f.Name: map[string]any{"filter": f.Expr.Tree, "score": f.Score},
			})
		}
		doc["filters"] = filters
	}
	return doc
}

func encodeDimensions(dims []*Dimension) []any {
	out := make([]any, 0, len(dims))
	for _, d := range dims {
		out = append(out, map[string]any{
			d.Name: map[string]any{
				"field_type": d.FieldType.String(),
				"score":      d.Score,
			},
		})
	}
	return out
}

func encodeCards(cards []*Card) []any {
	out := make([]any, 0, len(cards))
	for _, c := range cards {
		attrs := map[string]any{
			"title":         c.Title,
			"visualization": []any{c.Visualization.Kind, c.Visualization.Options},
			"score":         c.Score,
		}
		if c.Description != "" {
			attrs["description"] = c.Description
		}
		if len(c.Dimensions) > 0 {
			attrs["dimensions"] = toAnySlice(c.Dimensions)
		}
		if len(c.Metrics) > 0 {
			attrs["metrics"] = toAnySlice(c.Metrics)
		}
		if len(c.Filters) > 0 {
			attrs["filters"] = toAnySlice(c.Filters)
		}
		if c.Limit > 0 {
			attrs["limit"] = c.Limit
		}
		if len(c.OrderBy) > 0 {
			order := make([]any, 0, len(c.OrderBy))
			for _, o := range c.OrderBy {
				order = append(order, map[string]any{o.Name: string(o.Direction)})
			}
			attrs["order_by"] = order
		}
		out = append(out, map[string]any{c.Name: attrs})
	}
	return out
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
