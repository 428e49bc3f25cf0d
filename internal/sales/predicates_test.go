package sales

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicatesWhere_Empty(t *testing.T) {
	where, args := Predicates(nil).Where()
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildPredicates_OrderAndArgs(t *testing.T) {
	req := QueryRequest{
		Search:         "Neha",
		Regions:        []string{"North", "South"},
		Genders:        []string{"Female"},
		Categories:     []string{"Electronics"},
		PaymentMethods: []string{"UPI", "Cash"},
		Tags:           []string{"sale", "new"},
		MinAge:         intPtr(30),
		MaxAge:         intPtr(40),
		StartDate:      "2023-01-01",
		EndDate:        "2023-12-31",
	}

	preds := BuildPredicates(req)
	require.Len(t, preds, 10)

	where, args := preds.Where()
	wantWhere := strings.Join([]string{
		`(LOWER(customer_name) LIKE LOWER(?) ESCAPE '\' OR phone_number LIKE ? ESCAPE '\')`,
		`customer_region IN (?,?)`,
		`gender IN (?)`,
		`product_category IN (?)`,
		`payment_method IN (?,?)`,
		`(LOWER(tags) LIKE LOWER(?) ESCAPE '\' OR LOWER(tags) LIKE LOWER(?) ESCAPE '\')`,
		`age >= ?`,
		`age <= ?`,
		`date >= ?`,
		`date <= ?`,
	}, " AND ")
	assert.Equal(t, wantWhere, where)
	assert.Equal(t, []any{
		"%Neha%", "%Neha%",
		"North", "South",
		"Female",
		"Electronics",
		"UPI", "Cash",
		"%sale%", "%new%",
		30, 40,
		"2023-01-01", "2023-12-31",
	}, args)
	assert.Equal(t, strings.Count(where, "?"), len(args))
}

func TestBuildPredicates_ValuesNeverInClauseText(t *testing.T) {
	hostile := `x'; DROP TABLE sales; --`
	req := QueryRequest{
		Search:         hostile,
		Regions:        []string{hostile},
		Tags:           []string{hostile},
		StartDate:      hostile,
		PaymentMethods: []string{hostile},
	}

	where, args := BuildPredicates(req).Where()
	assert.NotContains(t, where, "DROP")
	assert.NotContains(t, where, "x'")
	assert.Equal(t, strings.Count(where, "?"), len(args))
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\%%`, containsPattern("50%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
	assert.Equal(t, `%c:\\d%`, containsPattern(`c:\d`))
	assert.Equal(t, `%o'brien;%`, containsPattern("o'brien;"))
}

func TestBuildPredicates_ZeroAgeIsAConstraint(t *testing.T) {
	preds := BuildPredicates(QueryRequest{MinAge: intPtr(0)})
	require.Len(t, preds, 1)
	assert.Equal(t, "age >= ?", preds[0].SQL)
	assert.Equal(t, []any{0}, preds[0].Args)
}
