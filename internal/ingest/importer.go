package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/angelmondragon/salesdesk-backend/pkg/config"
	"github.com/angelmondragon/salesdesk-backend/pkg/db"
	"github.com/angelmondragon/salesdesk-backend/pkg/db/models"
	"github.com/angelmondragon/salesdesk-backend/pkg/logger"
	"github.com/angelmondragon/salesdesk-backend/pkg/metrics"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// JobName labels import metrics and log entries.
const JobName = "sales-import"

// LockName is the Redis lock scope guarding imports.
const LockName = "ingest"

// Outcome reports why a run ended.
type Outcome string

const (
	OutcomeImported         Outcome = "imported"
	OutcomeAlreadyPopulated Outcome = "already_populated"
	OutcomeLocked           Outcome = "locked"
)

// Result summarises one import run.
type Result struct {
	Outcome  Outcome
	Read     int
	Imported int
	Skipped  int
}

// Importer loads the dataset into an empty sales table.
type Importer struct {
	db      *db.Client
	source  Source
	cfg     config.IngestConfig
	lock    Lock
	logg    *logger.Logger
	metrics *metrics.JobMetrics
}

// Option customises an Importer.
type Option func(*Importer)

// WithLock guards runs with lock.
func WithLock(lock Lock) Option {
	return func(i *Importer) { i.lock = lock }
}

// WithLogger attaches a logger.
func WithLogger(logg *logger.Logger) Option {
	return func(i *Importer) { i.logg = logg }
}

// WithMetrics records job metrics.
func WithMetrics(m *metrics.JobMetrics) Option {
	return func(i *Importer) { i.metrics = m }
}

// NewImporter wires an importer for the given store and source.
func NewImporter(client *db.Client, source Source, cfg config.IngestConfig, opts ...Option) (*Importer, error) {
	if client == nil {
		return nil, errors.New("db client is required")
	}
	if source == nil {
		return nil, errors.New("ingest source is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	imp := &Importer{db: client, source: source, cfg: cfg}
	for _, opt := range opts {
		opt(imp)
	}
	return imp, nil
}

// Run imports the dataset unless the table already has rows or another
// instance holds the lock. All rows land in a single transaction.
func (i *Importer) Run(ctx context.Context) (res *Result, err error) {
	started := time.Now()
	if i.logg != nil {
		ctx = i.logg.WithFields(i.logg.WithComponent(ctx, "ingest"), map[string]any{
			"job":    JobName,
			"source": i.source.String(),
		})
	}
	defer func() {
		i.metrics.ObserveDuration(JobName, time.Since(started))
		if err != nil {
			i.metrics.IncFailure(JobName)
			return
		}
		i.metrics.IncSuccess(JobName)
	}()

	populated, err := i.populated(ctx)
	if err != nil {
		return nil, err
	}
	if populated {
		i.info(ctx, "sales table already populated; skipping import")
		return &Result{Outcome: OutcomeAlreadyPopulated}, nil
	}

	if i.lock != nil {
		acquired, lockErr := i.lock.Acquire(ctx)
		if lockErr != nil {
			return nil, fmt.Errorf("acquire import lock: %w", lockErr)
		}
		if !acquired {
			i.info(ctx, "import lock held by another instance; skipping import")
			return &Result{Outcome: OutcomeLocked}, nil
		}
		defer func() {
			err = multierr.Append(err, i.lock.Release(context.WithoutCancel(ctx)))
		}()

		// another instance may have finished between the first check and the lock
		populated, err = i.populated(ctx)
		if err != nil {
			return nil, err
		}
		if populated {
			i.info(ctx, "sales table populated while waiting for lock; skipping import")
			return &Result{Outcome: OutcomeAlreadyPopulated}, nil
		}
	}

	return i.load(ctx)
}

func (i *Importer) load(ctx context.Context) (*Result, error) {
	path, err := Materialize(ctx, i.source, i.cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	parsed, err := Parse(f, i.cfg.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(parsed.Skipped) > 0 && i.logg != nil {
		i.logg.Warn(i.logg.WithFields(ctx, map[string]any{
			"skipped":     len(parsed.Skipped),
			"first_error": parsed.Skipped[0].Error(),
		}), "dataset rows rejected")
	}

	i.info(ctx, "inserting dataset rows", map[string]any{"rows": len(parsed.Rows)})
	err = i.db.WithTx(ctx, func(tx *gorm.DB) error {
		if len(parsed.Rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(parsed.Rows, i.cfg.BatchSize).Error
	})
	if err != nil {
		return nil, fmt.Errorf("insert dataset: %w", err)
	}

	i.metrics.AddRows(JobName, "imported", len(parsed.Rows))
	i.metrics.AddRows(JobName, "skipped", len(parsed.Skipped))

	res := &Result{
		Outcome:  OutcomeImported,
		Read:     parsed.Read,
		Imported: len(parsed.Rows),
		Skipped:  len(parsed.Skipped),
	}
	i.info(ctx, "import complete", map[string]any{"imported": res.Imported, "skipped": res.Skipped})
	return res, nil
}

func (i *Importer) populated(ctx context.Context) (bool, error) {
	var count int64
	if err := i.db.DB().WithContext(ctx).Model(&models.Sale{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count sales: %w", err)
	}
	return count > 0, nil
}

func (i *Importer) info(ctx context.Context, msg string, fields ...map[string]any) {
	if i.logg == nil {
		return
	}
	for _, f := range fields {
		ctx = i.logg.WithFields(ctx, f)
	}
	i.logg.Info(ctx, msg)
}
