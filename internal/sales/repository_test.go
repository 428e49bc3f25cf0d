package sales

import (
	"context"
	"net/url"
	"testing"

	"github.com/angelmondragon/salesdesk-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idsOf(page *SalesPage) []int64 {
	ids := make([]int64, 0, len(page.Data))
	for _, row := range page.Data {
		ids = append(ids, row.ID)
	}
	return ids
}

func TestListSales_CategoryPagination(t *testing.T) {
	db := openTestDB(t)
	rows := make([]models.Sale, 0, 25)
	for i := 0; i < 25; i++ {
		row := testSale(i)
		if i%5 < 2 {
			row.ProductCategory = "Electronics"
		}
		rows = append(rows, row)
	}
	mustSeed(t, db, rows)
	svc := newTestService(t, db)

	page, err := svc.ListSales(context.Background(), NormalizeQuery(url.Values{
		"category": {"Electronics"},
		"page":     {"1"},
		"limit":    {"5"},
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(10), page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Equal(t, 5, page.Meta.Limit)
	assert.Len(t, page.Data, 5)
	for _, row := range page.Data {
		assert.Equal(t, "Electronics", row.ProductCategory)
	}

	second, err := svc.ListSales(context.Background(), NormalizeQuery(url.Values{
		"category": {"Electronics"},
		"page":     {"2"},
		"limit":    {"5"},
	}))
	require.NoError(t, err)
	assert.Len(t, second.Data, 5)
	assert.NotContains(t, idsOf(second), idsOf(page)[0])

	beyond, err := svc.ListSales(context.Background(), NormalizeQuery(url.Values{
		"category": {"Electronics"},
		"page":     {"3"},
		"limit":    {"5"},
	}))
	require.NoError(t, err)
	assert.Empty(t, beyond.Data)
	assert.NotNil(t, beyond.Data)
	assert.Equal(t, int64(10), beyond.Meta.Total)
}

func TestListSales_AgeRange(t *testing.T) {
	db := openTestDB(t)
	var rows []models.Sale
	for i, age := range []int{20, 35, 45, 38} {
		row := testSale(i)
		row.Age = age
		rows = append(rows, row)
	}
	mustSeed(t, db, rows)

	page, err := newTestService(t, db).ListSales(context.Background(), NormalizeQuery(url.Values{
		"minAge": {"30"},
		"maxAge": {"40"},
	}))
	require.NoError(t, err)

	ages := make([]int, 0, len(page.Data))
	for _, row := range page.Data {
		ages = append(ages, row.Age)
	}
	assert.ElementsMatch(t, []int{35, 38}, ages)
	assert.Equal(t, int64(2), page.Meta.Total)
}

func TestListSales_TagsMatchAnySubstring(t *testing.T) {
	db := openTestDB(t)
	var rows []models.Sale
	for i, tags := range []string{"summer sale", "newline", "clearance"} {
		row := testSale(i)
		row.Tags = tags
		rows = append(rows, row)
	}
	mustSeed(t, db, rows)

	page, err := newTestService(t, db).ListSales(context.Background(), NormalizeQuery(url.Values{
		"tags": {"sale,new"},
	}))
	require.NoError(t, err)

	got := make([]string, 0, len(page.Data))
	for _, row := range page.Data {
		got = append(got, row.Tags)
	}
	assert.ElementsMatch(t, []string{"summer sale", "newline"}, got)
}

func TestListSales_SortByTotalAmountAsc(t *testing.T) {
	db := openTestDB(t)
	var rows []models.Sale
	for i, total := range []float64{500, 120.5, 999.99, 120.5, 10, 300} {
		row := testSale(i)
		row.TotalAmount = total
		rows = append(rows, row)
	}
	mustSeed(t, db, rows)

	page, err := newTestService(t, db).ListSales(context.Background(), NormalizeQuery(url.Values{
		"sortBy":    {"total_amount"},
		"sortOrder": {"asc"},
	}))
	require.NoError(t, err)
	require.Len(t, page.Data, 6)
	for i := 1; i < len(page.Data); i++ {
		prev, cur := page.Data[i-1], page.Data[i]
		assert.LessOrEqual(t, prev.TotalAmount, cur.TotalAmount)
		if prev.TotalAmount == cur.TotalAmount {
			assert.Less(t, prev.ID, cur.ID, "ties break on id in the sort direction")
		}
	}
}

func TestListSales_DefaultSortIsDateDesc(t *testing.T) {
	db := openTestDB(t)
	var rows []models.Sale
	for i, date := range []string{"2023-02-10", "2021-12-01", "2023-11-30", "2022-06-15"} {
		row := testSale(i)
		row.Date = date
		rows = append(rows, row)
	}
	mustSeed(t, db, rows)

	page, err := newTestService(t, db).ListSales(context.Background(), NormalizeQuery(url.Values{}))
	require.NoError(t, err)

	dates := make([]string, 0, len(page.Data))
	for _, row := range page.Data {
		dates = append(dates, row.Date)
	}
	assert.Equal(t, []string{"2023-11-30", "2023-02-10", "2022-06-15", "2021-12-01"}, dates)
}

func TestListSales_ZeroLimitUsesDefault(t *testing.T) {
	db := openTestDB(t)
	rows := make([]models.Sale, 0, 15)
	for i := 0; i < 15; i++ {
		rows = append(rows, testSale(i))
	}
	mustSeed(t, db, rows)

	page, err := newTestService(t, db).ListSales(context.Background(), NormalizeQuery(url.Values{"limit": {"0"}}))
	require.NoError(t, err)
	assert.Equal(t, 10, page.Meta.Limit)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, 2, page.Meta.TotalPages)
}

func TestListSales_UnknownSortByMatchesDate(t *testing.T) {
	db := openTestDB(t)
	var rows []models.Sale
	for i, date := range []string{"2023-03-01", "2023-01-01", "2023-03-01", "2022-07-04", "2023-02-14"} {
		row := testSale(i)
		row.Date = date
		rows = append(rows, row)
	}
	mustSeed(t, db, rows)
	svc := newTestService(t, db)

	byDate, err := svc.ListSales(context.Background(), NormalizeQuery(url.Values{"sortBy": {"date"}}))
	require.NoError(t, err)

	for _, hostile := range []string{"DROP TABLE sales", "id; DELETE FROM sales", "age"} {
		got, err := svc.ListSales(context.Background(), NormalizeQuery(url.Values{"sortBy": {hostile}}))
		require.NoError(t, err)
		assert.Equal(t, byDate, got, hostile)
	}

	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestListSales_SearchIsLiteral(t *testing.T) {
	db := openTestDB(t)
	var rows []models.Sale
	for i, name := range []string{"50% Off Traders", "50 Percent Club", "O'Brien; Ltd", "Neha_Shah", "NehaXShah"} {
		row := testSale(i)
		row.CustomerName = name
		rows = append(rows, row)
	}
	mustSeed(t, db, rows)
	svc := newTestService(t, db)

	cases := map[string][]string{
		"50%":      {"50% Off Traders"},
		"o'brien;": {"O'Brien; Ltd"},
		"neha_":    {"Neha_Shah"},
		"NEHA":     {"Neha_Shah", "NehaXShah"},
		"%":        {"50% Off Traders"},
	}
	for term, want := range cases {
		page, err := svc.ListSales(context.Background(), NormalizeQuery(url.Values{"search": {term}}))
		require.NoError(t, err, term)
		got := make([]string, 0, len(page.Data))
		for _, row := range page.Data {
			got = append(got, row.CustomerName)
		}
		assert.ElementsMatch(t, want, got, term)
	}
}

func TestListSales_SearchMatchesPhone(t *testing.T) {
	db := openTestDB(t)
	a := testSale(1)
	a.PhoneNumber = "9123456789"
	b := testSale(2)
	b.PhoneNumber = "9988776655"
	mustSeed(t, db, []models.Sale{a, b})

	page, err := newTestService(t, db).ListSales(context.Background(), NormalizeQuery(url.Values{"search": {"34567"}}))
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "9123456789", page.Data[0].PhoneNumber)
}

func TestListSales_EmptyStore(t *testing.T) {
	page, err := newTestService(t, openTestDB(t)).ListSales(context.Background(), NormalizeQuery(url.Values{}))
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Meta.Total)
	assert.Equal(t, 0, page.Meta.TotalPages)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}

func TestListFilterOptions(t *testing.T) {
	db := openTestDB(t)
	var rows []models.Sale
	specs := []struct{ region, category, method, gender string }{
		{"West", "Electronics", "UPI", "Male"},
		{"North", "Beauty", "Cash", "Female"},
		{"West", "Clothing", "Credit Card", "Male"},
		{"", "Beauty", "", "Female"},
		{"East", "Electronics", "UPI", ""},
	}
	for i, s := range specs {
		row := testSale(i)
		row.CustomerRegion = s.region
		row.ProductCategory = s.category
		row.PaymentMethod = s.method
		row.Gender = s.gender
		rows = append(rows, row)
	}
	mustSeed(t, db, rows)
	svc := newTestService(t, db)

	opts, err := svc.ListFilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"East", "North", "West"}, opts.Regions)
	assert.Equal(t, []string{"Beauty", "Clothing", "Electronics"}, opts.Categories)
	assert.Equal(t, []string{"Cash", "Credit Card", "UPI"}, opts.Methods)
	assert.Equal(t, []string{"Female", "Male"}, opts.Genders)

	_, err = svc.ListSales(context.Background(), NormalizeQuery(url.Values{"region": {"East"}, "gender": {"Male"}}))
	require.NoError(t, err)

	again, err := svc.ListFilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, opts, again)
}

func TestListFilterOptions_EmptyStoreReturnsEmptyLists(t *testing.T) {
	opts, err := newTestService(t, openTestDB(t)).ListFilterOptions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, opts.Regions)
	assert.Empty(t, opts.Regions)
	assert.NotNil(t, opts.Genders)
}

func TestRepositoryDistinctRejectsUnknownColumn(t *testing.T) {
	_, err := NewRepository(openTestDB(t)).Distinct(context.Background(), "customer_name; DROP TABLE sales")
	require.Error(t, err)
}

func TestListSales_HugePageIsEmpty(t *testing.T) {
	db := openTestDB(t)
	rows := make([]models.Sale, 0, 15)
	for i := 0; i < 15; i++ {
		rows = append(rows, testSale(i))
	}
	mustSeed(t, db, rows)

	page, err := newTestService(t, db).ListSales(context.Background(), NormalizeQuery(url.Values{
		"page": {"1000000000000000000"},
	}))
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
	assert.Equal(t, PaginationMeta{Total: 15, Page: 1000000000000000000, Limit: 10, TotalPages: 2}, page.Meta)
}

func TestListSales_NonASCIIExactCase(t *testing.T) {
	db := openTestDB(t)
	a := testSale(1)
	a.Tags = "Été,promo"
	a.CustomerName = "Zoë Ångström"
	b := testSale(2)
	b.Tags = "winter"
	b.CustomerName = "Ravi Kumar"
	mustSeed(t, db, []models.Sale{a, b})
	svc := newTestService(t, db)

	byTag, err := svc.ListSales(context.Background(), NormalizeQuery(url.Values{"tags": {"Été"}}))
	require.NoError(t, err)
	require.Len(t, byTag.Data, 1)
	assert.Equal(t, "Été,promo", byTag.Data[0].Tags)

	bySearch, err := svc.ListSales(context.Background(), NormalizeQuery(url.Values{"search": {"Ångström"}}))
	require.NoError(t, err)
	require.Len(t, bySearch.Data, 1)
	assert.Equal(t, "Zoë Ångström", bySearch.Data[0].CustomerName)

	asciiFold, err := svc.ListSales(context.Background(), NormalizeQuery(url.Values{"search": {"ZOë"}}))
	require.NoError(t, err)
	assert.Len(t, asciiFold.Data, 1)
}
