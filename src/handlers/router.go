package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/username/ustax/src/security"
)

type RouterOptions struct {
	AuthRequired   bool
	AllowedOrigins []string
	Limiter        *rate.Limiter // nil disables rate limiting
	MaxBodyBytes   int64
}

// NewRouter mounts the tax API. Every /api route goes through Authenticate.
func NewRouter(h *TaxHandler, auth *security.AuthService, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(opts.AllowedOrigins))
	if opts.Limiter != nil {
		r.Use(RateLimit(opts.Limiter))
	}

	r.Get("/healthz", h.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(auth, opts.AuthRequired))
		r.Use(LimitBody(opts.MaxBodyBytes))
		r.Use(RequireJSON)

		r.Get("/years", h.HandleListYears)
		r.Route("/years/{year}", func(r chi.Router) {
			r.Get("/jurisdictions", h.HandleListJurisdictions)
			r.Post("/federal", h.HandleComputeFederal)
			r.Post("/jurisdictions/{code}", h.HandleComputeJurisdiction)
			r.Post("/compare", h.HandleCompare)
		})

		r.Get("/snapshots", h.HandleListSnapshots)
		r.Post("/snapshots", h.HandleSaveSnapshot)
		r.Get("/snapshots/{id}", h.HandleGetSnapshot)
		r.Delete("/snapshots/{id}", h.HandleDeleteSnapshot)
	})

	return r
}
