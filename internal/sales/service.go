package sales

import (
	"context"
	"time"

	pkgerrors "github.com/angelmondragon/salesdesk-backend/pkg/errors"
	"github.com/angelmondragon/salesdesk-backend/pkg/logger"
	"github.com/angelmondragon/salesdesk-backend/pkg/metrics"
	"github.com/angelmondragon/salesdesk-backend/pkg/pagination"
)

const (
	opListSales     = "list_sales"
	opFilterOptions = "filter_options"
)

// Service exposes the read operations behind the sales endpoints.
type Service interface {
	ListSales(ctx context.Context, req QueryRequest) (*SalesPage, error)
	ListFilterOptions(ctx context.Context) (*FilterOptions, error)
}

type service struct {
	store   Store
	logg    *logger.Logger
	metrics *metrics.QueryMetrics
}

// NewService wires the sales service. logg and m may be nil.
func NewService(store Store, logg *logger.Logger, m *metrics.QueryMetrics) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sales store is required")
	}
	return &service{store: store, logg: logg, metrics: m}, nil
}

// ListSales counts and fetches rows using one predicate set so meta always
// describes the returned window.
func (s *service) ListSales(ctx context.Context, req QueryRequest) (*SalesPage, error) {
	started := time.Now()
	page, err := s.listSales(ctx, req)
	rows := 0
	if page != nil {
		rows = len(page.Data)
	}
	s.metrics.Observe(opListSales, time.Since(started), rows, err)
	return page, err
}

func (s *service) listSales(ctx context.Context, req QueryRequest) (*SalesPage, error) {
	req.Page = pagination.NormalizePage(req.Page)
	req.Limit = pagination.NormalizeLimit(req.Limit)
	if !isSortColumn(req.SortBy) {
		req.SortBy = SortByDate
	}

	preds := BuildPredicates(req)

	total, err := s.store.Count(ctx, preds)
	if err != nil {
		return nil, s.internal(ctx, err, "count sales")
	}

	data := []SaleDTO{}
	if pagination.InRange(req.Page, req.Limit, total) {
		rows, err := s.store.Find(ctx, preds, Window{
			SortBy:     req.SortBy,
			Descending: req.Descending(),
			Limit:      req.Limit,
			Offset:     req.Offset(),
		})
		if err != nil {
			return nil, s.internal(ctx, err, "list sales")
		}
		data = make([]SaleDTO, 0, len(rows))
		for _, row := range rows {
			data = append(data, SaleDTOFromModel(row))
		}
	}

	return &SalesPage{
		Data: data,
		Meta: PaginationMeta{
			Total:      total,
			Page:       req.Page,
			Limit:      req.Limit,
			TotalPages: pagination.TotalPages(total, req.Limit),
		},
	}, nil
}

// ListFilterOptions returns the distinct categorical values across the whole dataset.
func (s *service) ListFilterOptions(ctx context.Context) (*FilterOptions, error) {
	started := time.Now()
	opts, err := LoadFilterOptions(ctx, s.store)
	if err != nil {
		s.metrics.Observe(opFilterOptions, time.Since(started), 0, err)
		return nil, s.internal(ctx, err, "load filter options")
	}
	total := len(opts.Regions) + len(opts.Categories) + len(opts.Methods) + len(opts.Genders)
	s.metrics.Observe(opFilterOptions, time.Since(started), total, nil)
	return &opts, nil
}

func (s *service) internal(ctx context.Context, err error, msg string) error {
	if s.logg != nil {
		ctx = s.logg.WithComponent(ctx, "sales")
		s.logg.Debug(s.logg.WithError(ctx, err), msg+" failed")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
