package controllers

import (
	"net/http"

	"github.com/angelmondragon/salesdesk-backend/api/responses"
	"github.com/angelmondragon/salesdesk-backend/internal/sales"
	pkgerrors "github.com/angelmondragon/salesdesk-backend/pkg/errors"
	"github.com/angelmondragon/salesdesk-backend/pkg/logger"
)

// ListSales handles GET /api/sales. Query parameters are normalized, never
// rejected, so the only failure path is the store.
func ListSales(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		req := sales.NormalizeQuery(r.URL.Query())
		page, err := svc.ListSales(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WritePage(w, page.Data, page.Meta)
	}
}

// SalesFilterOptions handles GET /api/sales/meta.
func SalesFilterOptions(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		opts, err := svc.ListFilterOptions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, opts)
	}
}
