package sales

import (
	"strings"
)

// Column names referenced by predicates. Clause text is only ever built from
// these literals; user values travel as bound arguments.
const (
	colCustomerName    = "customer_name"
	colPhoneNumber     = "phone_number"
	colGender          = "gender"
	colAge             = "age"
	colCustomerRegion  = "customer_region"
	colProductCategory = "product_category"
	colTags            = "tags"
	colDate            = "date"
	colPaymentMethod   = "payment_method"
	colID              = "id"
)

const likeEscape = ` ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Predicate is one boolean clause with its positional arguments.
type Predicate struct {
	SQL  string
	Args []any
}

// Predicates is an ordered conjunction of clauses.
type Predicates []Predicate

// Where joins the clauses with AND. An empty conjunction yields an empty string.
func (p Predicates) Where() (string, []any) {
	if len(p) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(p))
	args := make([]any, 0, len(p))
	for _, pred := range p {
		clauses = append(clauses, pred.SQL)
		args = append(args, pred.Args...)
	}
	return strings.Join(clauses, " AND "), args
}

// BuildPredicates translates the filter fields of req into clauses, in a fixed
// order: search, set membership, tags, age bounds, date bounds.
func BuildPredicates(req QueryRequest) Predicates {
	var preds Predicates

	// Case folding happens in the store on both sides so the pattern and the
	// column fold identically (SQLite's LOWER only folds ASCII).
	if req.Search != "" {
		term := containsPattern(req.Search)
		preds = append(preds, Predicate{
			SQL:  "(" + foldedLike(colCustomerName) + " OR " + colPhoneNumber + " LIKE ?" + likeEscape + ")",
			Args: []any{term, term},
		})
	}

	preds = appendIn(preds, colCustomerRegion, req.Regions)
	preds = appendIn(preds, colGender, req.Genders)
	preds = appendIn(preds, colProductCategory, req.Categories)
	preds = appendIn(preds, colPaymentMethod, req.PaymentMethods)

	if len(req.Tags) > 0 {
		clauses := make([]string, 0, len(req.Tags))
		args := make([]any, 0, len(req.Tags))
		for _, tag := range req.Tags {
			clauses = append(clauses, foldedLike(colTags))
			args = append(args, containsPattern(tag))
		}
		preds = append(preds, Predicate{SQL: "(" + strings.Join(clauses, " OR ") + ")", Args: args})
	}

	if req.MinAge != nil {
		preds = append(preds, Predicate{SQL: colAge + " >= ?", Args: []any{*req.MinAge}})
	}
	if req.MaxAge != nil {
		preds = append(preds, Predicate{SQL: colAge + " <= ?", Args: []any{*req.MaxAge}})
	}

	if req.StartDate != "" {
		preds = append(preds, Predicate{SQL: colDate + " >= ?", Args: []any{req.StartDate}})
	}
	if req.EndDate != "" {
		preds = append(preds, Predicate{SQL: colDate + " <= ?", Args: []any{req.EndDate}})
	}

	return preds
}

func appendIn(preds Predicates, column string, values []string) Predicates {
	if len(values) == 0 {
		return preds
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
	return append(preds, Predicate{SQL: column + " IN (" + placeholders + ")", Args: args})
}

func foldedLike(column string) string {
	return "LOWER(" + column + ") LIKE LOWER(?)" + likeEscape
}

// containsPattern wraps value for a substring LIKE match with its wildcards escaped.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}
