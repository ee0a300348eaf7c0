package ast

// DefaultScore is the heuristic ranking weight assigned to entries that do
// not declare one.
const DefaultScore = 100

// Direction is an ordering direction for card order_by entries.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// Rule is one canonical heuristic document describing dashboard generation
// for a class of data tables. Rules are immutable after acceptance.
type Rule struct {
	// TableType is the class of table this rule applies to.
	TableType TypeTag

	// Title is the human-readable dashboard title.
	Title string

	// Description is an optional longer description.
	Description string

	// Dimensions, Metrics and Filters are the named building blocks cards
	// reference. Document order is preserved.
	Dimensions []*Dimension
	Metrics    []*Metric
	Filters    []*Filter

	// Cards are the dashboard widget specifications.
	Cards []*Card

	// SourceFile is the path of the document this rule was compiled from.
	SourceFile string

	// Location points at the document this rule came from.
	Location Location
}

// Dimension is a named binding of a display name to a field type.
type Dimension struct {
	Name      string
	FieldType FieldType
	Score     int
}

// Metric is a named aggregation expression.
type Metric struct {
	Name  string
	Expr  Expression
	Score int
}

// Filter is a named filter expression.
type Filter struct {
	Name  string
	Expr  Expression
	Score int
}

// OrderBy orders a card's result by a dimension or metric name.
type OrderBy struct {
	Name      string
	Direction Direction
}

// Visualization is a display kind with renderer options.
type Visualization struct {
	Kind    string
	Options map[string]any
}

// Card is one dashboard widget specification. It references dimensions,
// metrics and filters by name.
type Card struct {
	Name          string
	Title         string
	Description   string
	Visualization Visualization
	Score         int

	// Dimensions, Metrics and Filters name entries defined in the rule's
	// corresponding top-level sections.
	Dimensions []string
	Metrics    []string
	Filters    []string

	// Limit caps the number of result rows. Zero means unset.
	Limit int

	OrderBy []OrderBy
}

// DimensionNames returns the lookup set of defined dimension names.
// Duplicate names collapse; existence is what reference checking needs.
func (r *Rule) DimensionNames() map[string]struct{} {
	names := make(map[string]struct{}, len(r.Dimensions))
	for _, d := range r.Dimensions {
		names[d.Name] = struct{}{}
	}
	return names
}

// MetricNames returns the lookup set of defined metric names.
func (r *Rule) MetricNames() map[string]struct{} {
	names := make(map[string]struct{}, len(r.Metrics))
	for _, m := range r.Metrics {
		names[m.Name] = struct{}{}
	}
	return names
}

// FilterNames returns the lookup set of defined filter names.
func (r *Rule) FilterNames() map[string]struct{} {
	names := make(map[string]struct{}, len(r.Filters))
	for _, f := range r.Filters {
		names[f.Name] = struct{}{}
	}
	return names
}

// Score returns the rule's overall ranking weight: the highest score among
// its cards. The downstream generator uses it to pick between rules that
// match the same table type.
func (r *Rule) Score() int {
	best := 0
	for _, c := range r.Cards {
		if c.Score > best {
			best = c.Score
		}
	}
	return best
}
