package migrate_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/salesdesk-backend/pkg/config"
	"github.com/angelmondragon/salesdesk-backend/pkg/migrate"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSalesMigrationContainsSchema(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverPostgres} {
		matches, err := filepath.Glob(filepath.Join("migrations", driver, "*_create_sales_table.sql"))
		require.NoError(t, err)
		require.Len(t, matches, 1, driver)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		content := string(data)

		checks := []string{
			"CREATE TABLE IF NOT EXISTS sales",
			"CREATE INDEX IF NOT EXISTS idx_customer_name",
			"CREATE INDEX IF NOT EXISTS idx_phone_number",
			"CREATE INDEX IF NOT EXISTS idx_customer_region",
			"CREATE INDEX IF NOT EXISTS idx_product_category",
			"CREATE INDEX IF NOT EXISTS idx_date",
			"CREATE INDEX IF NOT EXISTS idx_payment_method",
			"DROP TABLE IF EXISTS sales",
		}
		for _, sub := range checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", driver, sub)
			}
		}
	}
}

func TestValidateTree(t *testing.T) {
	require.NoError(t, migrate.ValidateTree("migrations"))
}

func TestValidateTree_DetectsVersionDrift(t *testing.T) {
	root := t.TempDir()
	body := "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sqlite"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "postgres"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sqlite", "20250101000000_a.sql"), []byte(body), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "postgres", "20250101000001_a.sql"), []byte(body), 0o644))

	err := migrate.ValidateTree(root)
	require.Error(t, err)
	require.Contains(t, err.Error(), "differ")
}

func TestValidateDir_RejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_sales.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	err := migrate.ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid migration filename")
}

func TestCreateSQLMigration(t *testing.T) {
	root := t.TempDir()
	paths, err := migrate.CreateSQLMigration(root, "Add Store Index!")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		require.True(t, strings.HasSuffix(p, "_add_store_index.sql"), p)
	}
	require.Equal(t, filepath.Base(paths[0]), filepath.Base(paths[1]))
	require.NoError(t, migrate.ValidateTree(root))

	_, err = migrate.CreateSQLMigration(root, "!!!")
	require.Error(t, err)
}

func TestRun_UpAndDownOnSQLite(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	require.NoError(t, migrate.Run(ctx, db, config.DriverSQLite, "up"))

	_, err := db.ExecContext(ctx, `INSERT INTO sales (customer_name, quantity, date) VALUES (?, ?, ?)`, "Neha Shah", 2, "2023-03-01")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO sales (customer_name, quantity) VALUES (?, ?)`, "Bad Row", 0)
	require.Error(t, err, "quantity check constraint should reject zero")

	var idx int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_total_amount'`).Scan(&idx))
	require.Equal(t, 1, idx)

	require.NoError(t, migrate.MigrateToVersion(ctx, db, config.DriverSQLite, "20250601120000"))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_total_amount'`).Scan(&idx))
	require.Equal(t, 0, idx)

	require.NoError(t, migrate.Run(ctx, db, config.DriverSQLite, "reset"))
	var tables int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sales'`).Scan(&tables))
	require.Equal(t, 0, tables)
}

func TestMigrateToVersion_RejectsBadVersion(t *testing.T) {
	err := migrate.MigrateToVersion(context.Background(), openSQLite(t), config.DriverSQLite, "latest")
	require.Error(t, err)
}
