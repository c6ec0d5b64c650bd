// Package httpapi provides the HTTP handlers and data transfer objects that
// serve a Sphinx site with phrase search and highlighting.
package httpapi

import (
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/clearcmd"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/phrase"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string `json:"status"`
	EngineReady bool   `json:"engine_ready"`
	DocCount    int    `json:"doc_count"`
}

// SearchResult represents a single filtered search result
type SearchResult struct {
	DocName     string  `json:"doc_name"`
	Title       string  `json:"title"`
	Anchor      string  `json:"anchor,omitempty"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score"`
	URL         string  `json:"url"`
}

// SearchResponse represents search results
type SearchResponse struct {
	Query          string         `json:"query"`
	Mode           phrase.Mode    `json:"mode"`
	Phrases        []string       `json:"phrases,omitempty"`
	Clear          bool           `json:"clear,omitempty"`
	Fallback       bool           `json:"fallback,omitempty"`
	HighlightTerms []string       `json:"highlight_terms"`
	Results        []SearchResult `json:"results"`
	Count          int            `json:"count"`
}

// InterceptRequest reports a search submission caught by a client widget
type InterceptRequest struct {
	Query   string `json:"query"`
	Trigger string `json:"trigger"` // submit, enter or load
	URL     string `json:"url"`     // page the submission came from
}

// InterceptResponse tells the widget what to do
type InterceptResponse struct {
	clearcmd.Outcome
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
