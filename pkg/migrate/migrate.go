package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"

	"github.com/angelmondragon/salesdesk-backend/pkg/config"
	"github.com/pressly/goose/v3"
)

// DefaultDir is the on-disk location of the SQL migrations, used by create/validate.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*/*.sql
var embedded embed.FS

// EmbeddedDir returns the embedded migration directory for the given driver.
func EmbeddedDir(driver string) string {
	return path.Join("migrations", dialectDir(driver))
}

// DiskDir returns the on-disk migration directory for the given driver under root.
func DiskDir(root, driver string) string {
	if root == "" {
		root = DefaultDir
	}
	return path.Join(root, dialectDir(driver))
}

// Run executes a goose command against the migrations embedded in the binary.
func Run(ctx context.Context, db *sql.DB, driver string, command string, args ...string) error {
	return run(ctx, db, embedded, driver, EmbeddedDir(driver), command, args...)
}

// RunDir executes a goose command against migrations read from dir on disk.
func RunDir(ctx context.Context, db *sql.DB, driver, dir string, command string, args ...string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return run(ctx, db, nil, driver, dir, command, args...)
}

func run(ctx context.Context, db *sql.DB, fsys fs.FS, driver, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}

	if err := prepare(fsys, driver); err != nil {
		return err
	}
	defer goose.SetBaseFS(nil)

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	if err := prepare(embedded, driver); err != nil {
		return err
	}
	defer goose.SetBaseFS(nil)
	dir := EmbeddedDir(driver)

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil

	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil

	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}

func prepare(fsys fs.FS, driver string) error {
	goose.SetBaseFS(fsys)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(gooseDialect(driver)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

func gooseDialect(driver string) string {
	if dialectDir(driver) == config.DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

func dialectDir(driver string) string {
	cfg := config.DBConfig{Driver: driver}
	return cfg.NormalizedDriver()
}
