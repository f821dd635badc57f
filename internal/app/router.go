package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/ecologic-brindes/ecologic-backend/internal/auth"
	"github.com/ecologic-brindes/ecologic-backend/internal/catalog"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/proposals"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/quotes"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	AuthMiddleware   auth.Middleware
	CatalogHandler   *catalog.Handler
	QuotesHandler    *quotes.Handler
	ProposalsHandler *proposals.Handler
}

// NewRouter constructs the chi.Router for the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Public storefront surface.
		params.AuthHandler.MountRoutes(r)
		params.CatalogHandler.MountRoutes(r)
		r.Group(func(r chi.Router) {
			// Submissions are the abuse magnet; rate them tighter.
			r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			params.QuotesHandler.MountPublicRoutes(r)
		})

		// Consultant back-office.
		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireConsultant)
			params.QuotesHandler.MountRoutes(r)
			params.ProposalsHandler.MountRoutes(r)
		})
	})

	return r
}
