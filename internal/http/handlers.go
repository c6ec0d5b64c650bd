package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/clearcmd"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/filter"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/db"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/search"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/state"
)

// Options configure the site handlers
type Options struct {
	// SiteDir is the built HTML site served under /
	SiteDir string

	// SearchPage is the site-relative path of the search page
	SearchPage string

	// FileSuffix is appended to document names in result links
	FileSuffix string

	// SessionTTL bounds session-scoped state
	SessionTTL time.Duration
}

// Handler contains HTTP handlers for the API
type Handler struct {
	store   db.Store
	engines *search.Holder
	service *filter.Service
	clear   *clearcmd.Router
	opts    Options
	logger  zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(store db.Store, engines *search.Holder, service *filter.Service, opts Options, logger zerolog.Logger) *Handler {
	if opts.SearchPage == "" {
		opts.SearchPage = "search.html"
	}
	if opts.FileSuffix == "" {
		opts.FileSuffix = ".html"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = state.DefaultSessionTTL
	}
	return &Handler{
		store:   store,
		engines: engines,
		service: service,
		clear:   clearcmd.NewRouter(logger),
		opts:    opts,
		logger:  logger,
	}
}

// Helper functions used across all handlers

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeHTML writes a rendered page
func writeHTML(w http.ResponseWriter, status int, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}
