package models

// Sale is one retail transaction row. Rows are written once by the importer and
// are read-only afterwards.
type Sale struct {
	ID                 int64   `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerID         string  `gorm:"column:customer_id"`
	CustomerName       string  `gorm:"column:customer_name;index:idx_customer_name"`
	PhoneNumber        string  `gorm:"column:phone_number;index:idx_phone_number"`
	Gender             string  `gorm:"column:gender;index:idx_gender"`
	Age                int     `gorm:"column:age;index:idx_age"`
	CustomerRegion     string  `gorm:"column:customer_region;index:idx_customer_region"`
	CustomerType       string  `gorm:"column:customer_type"`
	ProductID          string  `gorm:"column:product_id"`
	ProductName        string  `gorm:"column:product_name"`
	Brand              string  `gorm:"column:brand"`
	ProductCategory    string  `gorm:"column:product_category;index:idx_product_category"`
	Tags               string  `gorm:"column:tags"`
	Quantity           int     `gorm:"column:quantity;index:idx_quantity"`
	PricePerUnit       float64 `gorm:"column:price_per_unit"`
	DiscountPercentage float64 `gorm:"column:discount_percentage"`
	TotalAmount        float64 `gorm:"column:total_amount;index:idx_total_amount"`
	FinalAmount        float64 `gorm:"column:final_amount"`
	Date               string  `gorm:"column:date;index:idx_date"`
	PaymentMethod      string  `gorm:"column:payment_method;index:idx_payment_method"`
	OrderStatus        string  `gorm:"column:order_status"`
	DeliveryType       string  `gorm:"column:delivery_type"`
	StoreID            string  `gorm:"column:store_id"`
	StoreLocation      string  `gorm:"column:store_location"`
	SalespersonID      string  `gorm:"column:salesperson_id"`
	EmployeeName       string  `gorm:"column:employee_name"`
}

func (Sale) TableName() string {
	return "sales"
}
