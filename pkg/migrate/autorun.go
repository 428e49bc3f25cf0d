package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/salesdesk-backend/pkg/config"
	"github.com/angelmondragon/salesdesk-backend/pkg/db"
	"github.com/angelmondragon/salesdesk-backend/pkg/logger"
	"github.com/pressly/goose/v3"
)

// MaybeRun brings the sales schema up to the embedded head before the API or
// importer touches it. It is a no-op when SALES_AUTO_MIGRATE is off.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.DB.AutoMigrate {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	driver := client.Dialect()
	ctx = logg.WithFields(ctx, map[string]any{"dir": EmbeddedDir(driver), "driver": driver})
	started := time.Now()

	if err := Run(ctx, sqlDB, driver, "up"); err != nil {
		return fmt.Errorf("applying sales schema: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"schema_version": version,
		"duration_ms":    time.Since(started).Milliseconds(),
	}), "sales schema ready")
	return nil
}
