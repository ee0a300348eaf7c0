package validator

import (
	"strings"
	"sync"
	"testing"

	"datalens-hq/saturn/pkg/srl/ast"
	srlErrors "datalens-hq/saturn/pkg/srl/errors"
)

func baseRule() *ast.Rule {
	return &ast.Rule{
		TableType: "type/TransactionTable",
		Title:     "Transactions",
		Dimensions: []*ast.Dimension{
			{Name: "Category", FieldType: ast.FieldType{Field: "type/Category"}, Score: 100},
			{Name: "When", FieldType: ast.FieldType{Field: "type/DateTime"}, Score: 100},
		},
		Metrics: []*ast.Metric{
			{Name: "Revenue", Expr: ast.Expression{Tree: []any{"sum", []any{"dimension", "Category"}}}, Score: 100},
		},
		Filters: []*ast.Filter{
			{Name: "Recent", Expr: ast.Expression{Tree: []any{"time-interval", -30, "day"}}, Score: 100},
		},
		Cards: []*ast.Card{
			{
				Name:          "Top",
				Title:         "Top categories",
				Visualization: ast.Visualization{Kind: "row", Options: map[string]any{}},
				Score:         100,
				Dimensions:    []string{"Category"},
				Metrics:       []string{"Revenue"},
				Filters:       []string{"Recent"},
				OrderBy:       []ast.OrderBy{{Name: "Revenue", Direction: ast.Descending}},
			},
		},
	}
}

func assertReferenceError(t *testing.T, err error, fragment string) {
	t.Helper()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	errList, ok := err.(*srlErrors.ErrorList)
	if !ok {
		t.Fatalf("expected ErrorList, got %T", err)
	}
	if !errList.HasErrorType(srlErrors.ErrorTypeReference) {
		t.Fatalf("expected reference error, got %v", errList)
	}
	if !strings.Contains(errList.Error(), fragment) {
		t.Errorf("error should mention %q: %v", fragment, errList)
	}
}

func TestValidateAcceptsConsistentRule(t *testing.T) {
	if err := New().Validate(baseRule()); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidateRejectsUndefinedCardReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ast.Rule)
		want   string
	}{
		{
			name:   "undefined dimension",
			mutate: func(r *ast.Rule) { r.Cards[0].Dimensions = []string{"Nope"} },
			want:   `undefined dimensions entry "Nope"`,
		},
		{
			name:   "undefined metric",
			mutate: func(r *ast.Rule) { r.Cards[0].Metrics = []string{"Profit"} },
			want:   `undefined metrics entry "Profit"`,
		},
		{
			name:   "undefined filter",
			mutate: func(r *ast.Rule) { r.Cards[0].Filters = []string{"Old"} },
			want:   `undefined filters entry "Old"`,
		},
		{
			name: "section membership is not interchangeable",
			// A metric name is not acceptable where a dimension is required.
			mutate: func(r *ast.Rule) { r.Cards[0].Dimensions = []string{"Revenue"} },
			want:   `undefined dimensions entry "Revenue"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := baseRule()
			tt.mutate(rule)
			assertReferenceError(t, New().Validate(rule), tt.want)
		})
	}
}

func TestValidateOrderByAcceptsDimensionsAndMetrics(t *testing.T) {
	rule := baseRule()
	rule.Cards[0].OrderBy = []ast.OrderBy{
		{Name: "When", Direction: ast.Ascending},    // dimension
		{Name: "Revenue", Direction: ast.Ascending}, // metric
	}
	if err := New().Validate(rule); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidateOrderByRejectsFiltersAndUnknowns(t *testing.T) {
	rule := baseRule()
	// Filters are not orderable even though "Recent" is defined.
	rule.Cards[0].OrderBy = []ast.OrderBy{{Name: "Recent", Direction: ast.Ascending}}
	assertReferenceError(t, New().Validate(rule), `orders by undefined name "Recent"`)
}

func TestValidateFindsNestedExpressionReferences(t *testing.T) {
	rule := baseRule()
	// Reference buried three levels deep inside other list structures.
	rule.Metrics = append(rule.Metrics, &ast.Metric{
		Name: "Weird",
		Expr: ast.Expression{
			Tree: []any{"+", []any{"*", []any{"dimension", "Ghost"}, 2}, 1},
		},
		Score: 100,
	})
	assertReferenceError(t, New().Validate(rule), `undefined dimension "Ghost"`)
}

func TestValidateFindsFilterExpressionReferences(t *testing.T) {
	rule := baseRule()
	rule.Filters[0].Expr = ast.Expression{Tree: []any{"=", []any{"dimension", "Missing"}, 1}}
	assertReferenceError(t, New().Validate(rule), `filter "Recent"`)
}

func TestValidateRejectionIsDocumentWide(t *testing.T) {
	rule := baseRule()
	rule.Cards = append(rule.Cards, &ast.Card{
		Name:       "Broken",
		Title:      "Broken",
		Score:      100,
		Dimensions: []string{"Nope"},
	})

	// One bad card rejects the whole document even though the first card
	// is fine.
	if err := New().Validate(rule); err == nil {
		t.Fatal("expected document-wide rejection")
	}
}

func TestValidateSuggestsCloseNames(t *testing.T) {
	rule := baseRule()
	rule.Cards[0].Dimensions = []string{"Categry"}

	err := New().Validate(rule)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Did you mean 'Category'?") {
		t.Errorf("expected a name suggestion, got: %v", err)
	}
}

func TestValidateConcurrentUse(t *testing.T) {
	// One validator instance shared across goroutines, each validating
	// its own broken document. Every call must report the rejection.
	v := New()

	const goroutines = 16
	const rounds = 25

	var wg sync.WaitGroup
	failures := make([]int, goroutines)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				rule := baseRule()
				rule.Cards[0].Dimensions = []string{"Ghost"}
				if err := v.Validate(rule); err == nil {
					failures[g]++
				}
				if err := v.Validate(baseRule()); err != nil {
					failures[g]++
				}
			}
		}(g)
	}
	wg.Wait()

	for g, n := range failures {
		if n != 0 {
			t.Errorf("goroutine %d: %d validations returned the wrong result", g, n)
		}
	}
}

func TestValidateAcceptsDuplicateDefinitions(t *testing.T) {
	rule := baseRule()
	// Duplicate section entries collapse to "defined"; existence, not
	// uniqueness, is what reference checking needs.
	rule.Dimensions = append(rule.Dimensions, &ast.Dimension{
		Name:      "Category",
		FieldType: ast.FieldType{Field: "type/Text"},
		Score:     50,
	})
	if err := New().Validate(rule); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
