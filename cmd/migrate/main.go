package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/salesdesk-backend/pkg/config"
	"github.com/angelmondragon/salesdesk-backend/pkg/db"
	"github.com/angelmondragon/salesdesk-backend/pkg/instance"
	"github.com/angelmondragon/salesdesk-backend/pkg/logger"
	"github.com/angelmondragon/salesdesk-backend/pkg/migrate"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", "", "migration root on disk (default: embedded set; create/validate use "+migrate.DefaultDir+")")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.FromApp("migrate", instance.GetID(), cfg.App)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"cmd":    opts.cmd,
		"dir":    opts.dir,
		"driver": cfg.DB.NormalizedDriver(),
	})

	if err := run(ctx, cfg, logg, opts); err != nil {
		logg.Error(ctx, "migrate "+opts.cmd+" failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts options) (err error) {
	root := opts.dir
	if root == "" {
		root = migrate.DefaultDir
	}

	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name for create")
		}
		paths, err := migrate.CreateSQLMigration(root, opts.name)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println("created migration:", p)
		}
		return nil
	case "validate":
		if err := migrate.ValidateTree(root); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	case "up", "down", "status", "version":
	default:
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	driver := dbClient.Dialect()

	if opts.cmd == "version" {
		if opts.version == "" {
			return errors.New("missing -version for version command")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, driver, opts.version)
	}
	return runCommand(ctx, sqlDB, driver, opts.dir, opts.cmd)
}

func runCommand(ctx context.Context, sqlDB *sql.DB, driver, dir, command string) error {
	if dir == "" {
		return migrate.Run(ctx, sqlDB, driver, command)
	}
	return migrate.RunDir(ctx, sqlDB, driver, migrate.DiskDir(dir, driver), command)
}
