package app

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/herbstock/herbstock/internal/auth"
	"github.com/herbstock/herbstock/internal/drugs"
	"github.com/herbstock/herbstock/internal/export"
	"github.com/herbstock/herbstock/internal/ledger"
	"github.com/herbstock/herbstock/internal/observability"
	"github.com/herbstock/herbstock/internal/platform/httpx"
	"github.com/herbstock/herbstock/internal/pricing"
	"github.com/herbstock/herbstock/internal/shared"
	"github.com/herbstock/herbstock/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler    *auth.Handler
	LedgerHandler  *ledger.Handler
	PricingHandler *pricing.Handler
	DrugsHandler   *drugs.Handler
	ExportHandler  *export.Handler
	JobHandler     *jobs.Handler

	Pool    *pgxpool.Pool
	Audit   *shared.AuditLogger
	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Herbstock defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if params.Pool != nil {
			if err := params.Pool.Ping(req.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body = map[string]string{"status": "degraded"}
			}
		}
		httpx.JSON(w, status, body)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Get("/csrf", func(w http.ResponseWriter, req *http.Request) {
		sess := shared.SessionFromContext(req.Context())
		if sess == nil {
			httpx.Error(w, http.StatusInternalServerError, "session unavailable")
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{
			"token": params.CSRFManager.Issue(sess.ID),
		})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Route("/ledger", params.LedgerHandler.MountRoutes)
		r.Route("/pricing", params.PricingHandler.MountRoutes)
		r.Route("/drugs", params.DrugsHandler.MountRoutes)
		r.Route("/export", params.ExportHandler.MountRoutes)

		if params.Audit != nil {
			r.Get("/audit", func(w http.ResponseWriter, req *http.Request) {
				userID := shared.UserIDFromContext(req.Context())
				limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
				entries, err := params.Audit.List(req.Context(), userID, limit)
				if err != nil {
					httpx.Internal(w, params.Logger, "list audit entries failed", err)
					return
				}
				httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
			})
		}

		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
