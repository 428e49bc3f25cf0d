package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/angelmondragon/salesdesk-backend/pkg/db/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Dataset column headers.
const (
	HeaderCustomerID         = "Customer ID"
	HeaderCustomerName       = "Customer Name"
	HeaderPhoneNumber        = "Phone Number"
	HeaderGender             = "Gender"
	HeaderAge                = "Age"
	HeaderCustomerRegion     = "Customer Region"
	HeaderCustomerType       = "Customer Type"
	HeaderProductID          = "Product ID"
	HeaderProductName        = "Product Name"
	HeaderBrand              = "Brand"
	HeaderProductCategory    = "Product Category"
	HeaderTags               = "Tags"
	HeaderQuantity           = "Quantity"
	HeaderPricePerUnit       = "Price per Unit"
	HeaderDiscountPercentage = "Discount Percentage"
	HeaderTotalAmount        = "Total Amount"
	HeaderFinalAmount        = "Final Amount"
	HeaderDate               = "Date"
	HeaderPaymentMethod      = "Payment Method"
	HeaderOrderStatus        = "Order Status"
	HeaderDeliveryType       = "Delivery Type"
	HeaderStoreID            = "Store ID"
	HeaderStoreLocation      = "Store Location"
	HeaderSalespersonID      = "Salesperson ID"
	HeaderEmployeeName       = "Employee Name"
)

// Headers lists every column the importer reads, in dataset order.
var Headers = []string{
	HeaderCustomerID, HeaderCustomerName, HeaderPhoneNumber, HeaderGender, HeaderAge,
	HeaderCustomerRegion, HeaderCustomerType, HeaderProductID, HeaderProductName, HeaderBrand,
	HeaderProductCategory, HeaderTags, HeaderQuantity, HeaderPricePerUnit, HeaderDiscountPercentage,
	HeaderTotalAmount, HeaderFinalAmount, HeaderDate, HeaderPaymentMethod, HeaderOrderStatus,
	HeaderDeliveryType, HeaderStoreID, HeaderStoreLocation, HeaderSalespersonID, HeaderEmployeeName,
}

var validate = validator.New()

// row is one CSV record after type coercion, before it becomes a models.Sale.
type row struct {
	CustomerName       string  `validate:"required"`
	Age                int     `validate:"gte=0"`
	Quantity           int     `validate:"gt=0"`
	PricePerUnit       float64 `validate:"gte=0"`
	DiscountPercentage float64 `validate:"gte=0,lte=100"`
	TotalAmount        float64 `validate:"gte=0"`
	FinalAmount        float64 `validate:"gte=0"`
	Date               string  `validate:"required"`
}

// RowError describes why a record was skipped.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ParseResult carries the accepted rows and the records that were rejected.
type ParseResult struct {
	Rows    []models.Sale
	Read    int
	Skipped []RowError
}

// Parse reads at most maxRows data records from r. Records that cannot be
// coerced or fail validation are skipped; a malformed header is an error.
func Parse(r io.Reader, maxRows int) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	for maxRows <= 0 || result.Read < maxRows {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Read++
				result.Skipped = append(result.Skipped, RowError{Line: parseErr.Line, Err: err})
				continue
			}
			return nil, fmt.Errorf("read record: %w", err)
		}
		result.Read++
		line, _ := reader.FieldPos(0)

		sale, err := toSale(index, record)
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Err: err})
			continue
		}
		result.Rows = append(result.Rows, sale)
	}
	return result, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}
	var missing []string
	for _, h := range Headers {
		if _, ok := index[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("dataset is missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func toSale(index map[string]int, record []string) (models.Sale, error) {
	get := func(h string) string {
		i := index[h]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	age, err := strconv.Atoi(get(HeaderAge))
	if err != nil {
		return models.Sale{}, fmt.Errorf("age: %w", err)
	}
	quantity, err := strconv.Atoi(get(HeaderQuantity))
	if err != nil {
		return models.Sale{}, fmt.Errorf("quantity: %w", err)
	}

	amounts := make(map[string]float64, 4)
	for _, h := range []string{HeaderPricePerUnit, HeaderDiscountPercentage, HeaderTotalAmount, HeaderFinalAmount} {
		value, err := parseAmount(get(h))
		if err != nil {
			return models.Sale{}, fmt.Errorf("%s: %w", strings.ToLower(h), err)
		}
		amounts[h] = value
	}

	candidate := row{
		CustomerName:       get(HeaderCustomerName),
		Age:                age,
		Quantity:           quantity,
		PricePerUnit:       amounts[HeaderPricePerUnit],
		DiscountPercentage: amounts[HeaderDiscountPercentage],
		TotalAmount:        amounts[HeaderTotalAmount],
		FinalAmount:        amounts[HeaderFinalAmount],
		Date:               get(HeaderDate),
	}
	if err := validate.Struct(candidate); err != nil {
		return models.Sale{}, err
	}

	return models.Sale{
		CustomerID:         get(HeaderCustomerID),
		CustomerName:       candidate.CustomerName,
		PhoneNumber:        get(HeaderPhoneNumber),
		Gender:             get(HeaderGender),
		Age:                candidate.Age,
		CustomerRegion:     get(HeaderCustomerRegion),
		CustomerType:       get(HeaderCustomerType),
		ProductID:          get(HeaderProductID),
		ProductName:        get(HeaderProductName),
		Brand:              get(HeaderBrand),
		ProductCategory:    get(HeaderProductCategory),
		Tags:               get(HeaderTags),
		Quantity:           candidate.Quantity,
		PricePerUnit:       candidate.PricePerUnit,
		DiscountPercentage: candidate.DiscountPercentage,
		TotalAmount:        candidate.TotalAmount,
		FinalAmount:        candidate.FinalAmount,
		Date:               candidate.Date,
		PaymentMethod:      get(HeaderPaymentMethod),
		OrderStatus:        get(HeaderOrderStatus),
		DeliveryType:       get(HeaderDeliveryType),
		StoreID:            get(HeaderStoreID),
		StoreLocation:      get(HeaderStoreLocation),
		SalespersonID:      get(HeaderSalespersonID),
		EmployeeName:       get(HeaderEmployeeName),
	}, nil
}

// parseAmount reads a decimal value rounded to cents; blank means zero.
func parseAmount(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	return d.Round(2).InexactFloat64(), nil
}
