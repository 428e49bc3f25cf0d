package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/salesdesk-backend/pkg/db"
	"github.com/angelmondragon/salesdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type csvRow struct {
	name     string
	age      string
	quantity string
	total    string
	date     string
	region   string
}

func validRow(n int) csvRow {
	return csvRow{
		name:     fmt.Sprintf("Customer %d", n),
		age:      "34",
		quantity: "2",
		total:    "1999.995",
		date:     "2023-04-12",
		region:   "North",
	}
}

func (r csvRow) line() string {
	fields := []string{
		"CUST-001", r.name, "9876543210", "Female", r.age, r.region, "Loyal",
		"PROD-9", "Smartphone", "Acme", "Electronics", `"tech,new"`,
		r.quantity, "999.9975", "10", r.total, "1799.99",
		r.date, "UPI", "Completed", "Home Delivery",
		"ST001", "Mumbai", "EMP007", "Harsh Agarwal",
	}
	return strings.Join(fields, ",")
}

func csvContent(rows ...csvRow) string {
	var b strings.Builder
	b.WriteString(strings.Join(Headers, ","))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(r.line())
		b.WriteString("\n")
	}
	return b.String()
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func newTestClient(t *testing.T) *db.Client {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := conn.AutoMigrate(&models.Sale{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db.NewWithConn(conn)
}
