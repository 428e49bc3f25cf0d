package sales

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/salesdesk-backend/pkg/pagination"
	"github.com/samber/lo"
)

// SortColumn is one of the allow-listed columns a page may be ordered by.
type SortColumn string

const (
	SortByDate         SortColumn = "date"
	SortByQuantity     SortColumn = "quantity"
	SortByCustomerName SortColumn = "customer_name"
	SortByTotalAmount  SortColumn = "total_amount"
)

var sortColumns = []SortColumn{SortByDate, SortByQuantity, SortByCustomerName, SortByTotalAmount}

// SortOrder is the direction of the primary sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Query parameter names accepted by the list endpoint.
const (
	ParamPage          = "page"
	ParamLimit         = "limit"
	ParamSearch        = "search"
	ParamSortBy        = "sortBy"
	ParamSortOrder     = "sortOrder"
	ParamRegion        = "region"
	ParamGender        = "gender"
	ParamCategory      = "category"
	ParamPaymentMethod = "paymentMethod"
	ParamTags          = "tags"
	ParamMinAge        = "minAge"
	ParamMaxAge        = "maxAge"
	ParamStartDate     = "startDate"
	ParamEndDate       = "endDate"
)

// QueryRequest is the normalized form of one list request. Empty slices, nil
// pointers and empty strings all mean "no constraint".
type QueryRequest struct {
	Page      int
	Limit     int
	Search    string
	SortBy    SortColumn
	SortOrder SortOrder

	Regions        []string
	Genders        []string
	Categories     []string
	PaymentMethods []string
	Tags           []string

	MinAge *int
	MaxAge *int

	StartDate string
	EndDate   string
}

// Offset returns the number of rows skipped before the requested page.
func (q QueryRequest) Offset() int {
	return pagination.Params{Page: q.Page, Limit: q.Limit}.Offset()
}

// Descending reports whether rows are returned in descending order.
func (q QueryRequest) Descending() bool {
	return q.SortOrder != SortAsc
}

// NormalizeQuery coerces raw query parameters into a QueryRequest. Bad values
// fall back to defaults instead of being rejected.
func NormalizeQuery(values url.Values) QueryRequest {
	return QueryRequest{
		Page:           pagination.NormalizePage(parseInt(values.Get(ParamPage), pagination.DefaultPage)),
		Limit:          pagination.NormalizeLimit(parseInt(values.Get(ParamLimit), pagination.DefaultLimit)),
		Search:         strings.TrimSpace(values.Get(ParamSearch)),
		SortBy:         normalizeSortColumn(values.Get(ParamSortBy)),
		SortOrder:      normalizeSortOrder(values.Get(ParamSortOrder)),
		Regions:        splitList(values.Get(ParamRegion)),
		Genders:        splitList(values.Get(ParamGender)),
		Categories:     splitList(values.Get(ParamCategory)),
		PaymentMethods: splitList(values.Get(ParamPaymentMethod)),
		Tags:           splitList(values.Get(ParamTags)),
		MinAge:         parseAge(values.Get(ParamMinAge)),
		MaxAge:         parseAge(values.Get(ParamMaxAge)),
		StartDate:      strings.TrimSpace(values.Get(ParamStartDate)),
		EndDate:        strings.TrimSpace(values.Get(ParamEndDate)),
	}
}

func normalizeSortColumn(raw string) SortColumn {
	candidate := SortColumn(strings.TrimSpace(raw))
	if isSortColumn(candidate) {
		return candidate
	}
	return SortByDate
}

func normalizeSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func parseAge(raw string) *int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

// splitList splits a comma-separated value, trimming tokens and dropping empty ones.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	tokens := lo.Map(strings.Split(raw, ","), func(token string, _ int) string {
		return strings.TrimSpace(token)
	})
	tokens = lo.Uniq(lo.Compact(tokens))
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
