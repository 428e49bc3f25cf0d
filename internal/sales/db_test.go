package sales

import (
	"fmt"
	"testing"

	"github.com/angelmondragon/salesdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(&models.Sale{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func mustSeed(t *testing.T, db *gorm.DB, rows []models.Sale) []models.Sale {
	t.Helper()
	if len(rows) == 0 {
		return rows
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed sales: %v", err)
	}
	return rows
}

// testSale returns a complete row; callers override the fields under test.
func testSale(n int) models.Sale {
	return models.Sale{
		CustomerID:         fmt.Sprintf("CUST-%04d", n),
		CustomerName:       fmt.Sprintf("Customer %02d", n),
		PhoneNumber:        fmt.Sprintf("98765%05d", n),
		Gender:             "Female",
		Age:                30,
		CustomerRegion:     "North",
		CustomerType:       "Regular",
		ProductID:          fmt.Sprintf("PROD-%04d", n),
		ProductName:        "Widget",
		Brand:              "Acme",
		ProductCategory:    "Clothing",
		Tags:               "casual",
		Quantity:           1,
		PricePerUnit:       100,
		DiscountPercentage: 0,
		TotalAmount:        100,
		FinalAmount:        100,
		Date:               "2023-01-01",
		PaymentMethod:      "Cash",
		OrderStatus:        "Completed",
		DeliveryType:       "Standard",
		StoreID:            "ST001",
		StoreLocation:      "Mumbai",
		SalespersonID:      "EMP001",
		EmployeeName:       "Harsh Agarwal",
	}
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func intPtr(v int) *int {
	return &v
}
