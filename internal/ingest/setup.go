package ingest

import (
	"context"

	"github.com/angelmondragon/salesdesk-backend/pkg/config"
	"github.com/angelmondragon/salesdesk-backend/pkg/db"
	"github.com/angelmondragon/salesdesk-backend/pkg/logger"
	"github.com/angelmondragon/salesdesk-backend/pkg/metrics"
	"github.com/angelmondragon/salesdesk-backend/pkg/redis"
)

// FromConfig builds an importer from the service configuration. The Redis
// lock is only attached when redisClient is non-nil.
func FromConfig(ctx context.Context, cfg *config.Config, client *db.Client, redisClient *redis.Client, logg *logger.Logger, m *metrics.JobMetrics) (*Importer, error) {
	source, err := NewSource(ctx, cfg.Ingest, cfg.S3)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithLogger(logg), WithMetrics(m)}
	if redisClient != nil {
		lock, err := NewRedisLock(redisClient, redisClient.LockKey(LockName), cfg.Ingest.LockTTL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLock(lock))
	}

	return NewImporter(client, source, cfg.Ingest, opts...)
}
