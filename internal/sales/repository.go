package sales

import (
	"context"
	"fmt"
	"sort"

	"github.com/angelmondragon/salesdesk-backend/pkg/db/models"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the read surface the service needs from the row store.
type Store interface {
	Count(ctx context.Context, preds Predicates) (int64, error)
	Find(ctx context.Context, preds Predicates, window Window) ([]models.Sale, error)
	Distinct(ctx context.Context, column string) ([]string, error)
}

// Window is the ordered slice of rows a page query returns.
type Window struct {
	SortBy     SortColumn
	Descending bool
	Limit      int
	Offset     int
}

// Repository runs sales reads through GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) filtered(ctx context.Context, preds Predicates) *gorm.DB {
	qb := r.db.WithContext(ctx).Model(&models.Sale{})
	if where, args := preds.Where(); where != "" {
		qb = qb.Where(where, args...)
	}
	return qb
}

// Count returns how many rows satisfy preds.
func (r *Repository) Count(ctx context.Context, preds Predicates) (int64, error) {
	var total int64
	if err := r.filtered(ctx, preds).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Find returns the rows satisfying preds inside window. Rows sharing a sort
// value are ordered by id in the same direction so pages never overlap.
func (r *Repository) Find(ctx context.Context, preds Predicates, window Window) ([]models.Sale, error) {
	sortBy := window.SortBy
	if !isSortColumn(sortBy) {
		sortBy = SortByDate
	}

	var rows []models.Sale
	err := r.filtered(ctx, preds).
		Order(clause.OrderByColumn{Column: clause.Column{Name: string(sortBy)}, Desc: window.Descending}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: colID}, Desc: window.Descending}).
		Limit(window.Limit).
		Offset(window.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Distinct returns the distinct values of column in byte order. NULL and empty
// values are left out, so rows with a blank category never show up as a
// selectable filter option.
func (r *Repository) Distinct(ctx context.Context, column string) ([]string, error) {
	if !isFilterOptionColumn(column) {
		return nil, fmt.Errorf("column %q is not a filter option", column)
	}

	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where(column + " IS NOT NULL AND " + column + " <> ''").
		Order(column).
		Distinct().
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	// collation differs between dialects
	sort.Strings(values)
	return values, nil
}

// LoadFilterOptions fetches the four option lists concurrently.
func LoadFilterOptions(ctx context.Context, store Store) (FilterOptions, error) {
	var opts FilterOptions
	g, gctx := errgroup.WithContext(ctx)

	targets := []struct {
		column string
		dest   *[]string
	}{
		{colCustomerRegion, &opts.Regions},
		{colProductCategory, &opts.Categories},
		{colPaymentMethod, &opts.Methods},
		{colGender, &opts.Genders},
	}
	for _, target := range targets {
		target := target
		g.Go(func() error {
			values, err := store.Distinct(gctx, target.column)
			if err != nil {
				return fmt.Errorf("distinct %s: %w", target.column, err)
			}
			if values == nil {
				values = []string{}
			}
			*target.dest = values
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return FilterOptions{}, err
	}
	return opts, nil
}

func isSortColumn(col SortColumn) bool {
	return lo.Contains(sortColumns, col)
}

func isFilterOptionColumn(column string) bool {
	switch column {
	case colCustomerRegion, colProductCategory, colPaymentMethod, colGender:
		return true
	default:
		return false
	}
}
