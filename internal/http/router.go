package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts every route on a chi router
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.Identity)
	r.Use(h.InterceptClear)

	// Routes
	r.Get("/health", h.HandleHealth)
	r.Get("/api/search", h.HandleSearchAPI)
	r.Post("/api/intercept", h.HandleIntercept)
	r.Get("/search", h.HandleSearchPage)
	if h.opts.SearchPage != "search" {
		r.Get("/"+h.opts.SearchPage, h.HandleSearchPage)
	}
	r.Get("/*", h.HandlePage)

	return r
}
