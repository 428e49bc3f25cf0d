package sales

import "github.com/angelmondragon/salesdesk-backend/pkg/db/models"

// SaleDTO is the API representation of one sales row; JSON names mirror the columns.
type SaleDTO struct {
	ID                 int64   `json:"id"`
	CustomerID         string  `json:"customer_id"`
	CustomerName       string  `json:"customer_name"`
	PhoneNumber        string  `json:"phone_number"`
	Gender             string  `json:"gender"`
	Age                int     `json:"age"`
	CustomerRegion     string  `json:"customer_region"`
	CustomerType       string  `json:"customer_type"`
	ProductID          string  `json:"product_id"`
	ProductName        string  `json:"product_name"`
	Brand              string  `json:"brand"`
	ProductCategory    string  `json:"product_category"`
	Tags               string  `json:"tags"`
	Quantity           int     `json:"quantity"`
	PricePerUnit       float64 `json:"price_per_unit"`
	DiscountPercentage float64 `json:"discount_percentage"`
	TotalAmount        float64 `json:"total_amount"`
	FinalAmount        float64 `json:"final_amount"`
	Date               string  `json:"date"`
	PaymentMethod      string  `json:"payment_method"`
	OrderStatus        string  `json:"order_status"`
	DeliveryType       string  `json:"delivery_type"`
	StoreID            string  `json:"store_id"`
	StoreLocation      string  `json:"store_location"`
	SalespersonID      string  `json:"salesperson_id"`
	EmployeeName       string  `json:"employee_name"`
}

// PaginationMeta describes the window returned alongside a page of rows.
type PaginationMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// SalesPage is one page of rows plus the metadata computed from the same predicates.
type SalesPage struct {
	Data []SaleDTO      `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// FilterOptions lists the distinct values available for the categorical filters.
type FilterOptions struct {
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
	Methods    []string `json:"methods"`
	Genders    []string `json:"genders"`
}

// SaleDTOFromModel maps a stored row to its API shape.
func SaleDTOFromModel(m models.Sale) SaleDTO {
	return SaleDTO{
		ID:                 m.ID,
		CustomerID:         m.CustomerID,
		CustomerName:       m.CustomerName,
		PhoneNumber:        m.PhoneNumber,
		Gender:             m.Gender,
		Age:                m.Age,
		CustomerRegion:     m.CustomerRegion,
		CustomerType:       m.CustomerType,
		ProductID:          m.ProductID,
		ProductName:        m.ProductName,
		Brand:              m.Brand,
		ProductCategory:    m.ProductCategory,
		Tags:               m.Tags,
		Quantity:           m.Quantity,
		PricePerUnit:       m.PricePerUnit,
		DiscountPercentage: m.DiscountPercentage,
		TotalAmount:        m.TotalAmount,
		FinalAmount:        m.FinalAmount,
		Date:               m.Date,
		PaymentMethod:      m.PaymentMethod,
		OrderStatus:        m.OrderStatus,
		DeliveryType:       m.DeliveryType,
		StoreID:            m.StoreID,
		StoreLocation:      m.StoreLocation,
		SalespersonID:      m.SalespersonID,
		EmployeeName:       m.EmployeeName,
	}
}
