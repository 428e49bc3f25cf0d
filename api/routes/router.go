package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/angelmondragon/salesdesk-backend/api/controllers"
	"github.com/angelmondragon/salesdesk-backend/api/middleware"
	"github.com/angelmondragon/salesdesk-backend/api/responses"
	"github.com/angelmondragon/salesdesk-backend/internal/sales"
	"github.com/angelmondragon/salesdesk-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/salesdesk-backend/pkg/errors"
	"github.com/angelmondragon/salesdesk-backend/pkg/logger"
	"github.com/angelmondragon/salesdesk-backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers. DB, Redis
// and RateLimiter may be nil; Metrics is mounted only when set.
type Dependencies struct {
	Started     time.Time
	DB          controllers.Pinger
	Redis       controllers.Pinger
	RateLimiter redis.RateLimiter
	Sales       sales.Service
	Metrics     http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		chimw.CleanPath,
		middleware.CORS(cfg.HTTP.CORSAllowedOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.HealthLive(cfg, deps.Started))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessChecks(deps)))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
		if deps.RateLimiter != nil {
			policy := middleware.NewRateLimitPolicy("api", cfg.RateLimit.Window, cfg.RateLimit.Requests).
				WithTrustedProxies(cfg.RateLimit.TrustedProxies)
			r.Use(middleware.RateLimit(policy, deps.RateLimiter, logg))
		}

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(deps.Sales, logg))
			r.Get("/meta", controllers.SalesFilterOptions(deps.Sales, logg))
		})
	})

	return r
}

func readinessChecks(deps Dependencies) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if deps.DB != nil {
		checks["db"] = deps.DB
	}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	return checks
}
