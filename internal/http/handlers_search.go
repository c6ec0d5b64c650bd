package httpapi

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/clearcmd"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/highlight"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/phrase"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/search"
)

// searchRun collects what the engine handed to the display callback
type searchRun struct {
	class   phrase.Classification
	results []search.Result
	terms   search.TermSet
}

func (h *Handler) runSearch(ctx context.Context, r *http.Request, raw string) (searchRun, error) {
	var run searchRun
	display := func(results []search.Result, _ int, highlightTerms, _ search.TermSet) {
		run.results = results
		run.terms = highlightTerms
	}

	c, err := h.service.Query(ctx, h.sessionFrom(r), raw, display)
	run.class = c
	return run, err
}

func (h *Handler) resultURL(res search.Result) string {
	return "/" + res.DocName + h.opts.FileSuffix + res.Anchor
}

// HandleSearchAPI runs a phrase-filtered search and returns JSON
func (h *Handler) HandleSearchAPI(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if !values.Has(highlight.QueryField) {
		writeError(w, http.StatusBadRequest, "query is required", "MISSING_QUERY")
		return
	}
	query := values.Get(highlight.QueryField)

	run, err := h.runSearch(r.Context(), r, query)
	if err != nil {
		h.searchFailed(w, r, err)
		return
	}

	results := make([]SearchResult, len(run.results))
	for i, res := range run.results {
		results[i] = SearchResult{
			DocName:     res.DocName,
			Title:       res.Title,
			Anchor:      res.Anchor,
			Description: res.Description,
			Score:       res.Score,
			URL:         h.resultURL(res),
		}
	}

	h.logger.Info().
		Str("query", query).
		Stringer("mode", run.class.Mode).
		Int("results", len(results)).
		Msg("search completed")

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:          query,
		Mode:           run.class.Mode,
		Phrases:        run.class.Phrases,
		Clear:          run.class.Clear,
		Fallback:       run.class.Fallback,
		HighlightTerms: run.terms.Sorted(),
		Results:        results,
		Count:          len(results),
	})
}

// HandleSearchPage renders the search results page
func (h *Handler) HandleSearchPage(w http.ResponseWriter, r *http.Request) {
	st := h.sessionFrom(r)
	h.countPage(r, st)

	values := r.URL.Query()
	query := values.Get(highlight.QueryField)
	out, err := h.clear.Route(r.Context(), st, clearcmd.TriggerPageLoad, query, r.URL.RequestURI())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to handle clear command")
	}
	if out.RedirectTo != "" {
		http.Redirect(w, r, out.RedirectTo, http.StatusSeeOther)
		return
	}

	// an empty query still runs, so a stored phrase filter is dropped
	data := searchPageData{Query: query}
	if values.Has(highlight.QueryField) {
		run, err := h.runSearch(r.Context(), r, query)
		if err != nil {
			h.searchFailed(w, r, err)
			return
		}
		data.Ran = true
		data.Clear = run.class.Clear
		for _, res := range run.results {
			data.Results = append(data.Results, searchPageResult{
				Title:       res.Title,
				URL:         h.resultURL(res),
				Description: res.Description,
			})
		}
		data.terms = run.terms.Sorted()
	}
	if data.Clear {
		data.Query = ""
	}

	page, err := h.renderSearchPage(data)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to render search page")
		writeError(w, http.StatusInternalServerError, "failed to render search page", "RENDER_FAILED")
		return
	}
	writeHTML(w, http.StatusOK, page)
}

func (h *Handler) searchFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		return
	}
	h.logger.Warn().Err(err).Msg("search failed")
	writeError(w, http.StatusServiceUnavailable, "search engine unavailable", "ENGINE_UNAVAILABLE")
}

type searchPageResult struct {
	Title       string
	URL         string
	Description string
}

type searchPageData struct {
	Query   string
	Ran     bool
	Clear   bool
	Results []searchPageResult

	terms []string
}

var searchPageTmpl = template.Must(template.New("search").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Search</title></head>
<body>
<div role="main">
<h1>Search</h1>
<form action="" method="get">
<input type="text" name="q" value="{{.Query}}">
<input type="submit" value="search">
</form>
<div id="search-results">
{{- if .Ran}}
<h2>Search Results</h2>
{{- if .Results}}
<p class="search-summary">Search finished, found {{len .Results}} page(s) matching the search query.</p>
<ul class="search">
{{- range .Results}}
<li><a href="{{.URL}}">{{.Title}}</a>{{if .Description}}<p class="context">{{.Description}}</p>{{end}}</li>
{{- end}}
</ul>
{{- else if not .Clear}}
<p class="search-summary">Your search did not match any documents.</p>
{{- end}}
{{- end}}
</div>
</div>
</body>
</html>
`))

// renderSearchPage renders the results and marks the highlight terms in
// the result list only
func (h *Handler) renderSearchPage(data searchPageData) (string, error) {
	var buf bytes.Buffer
	if err := searchPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	root, err := highlight.Parse(&buf)
	if err != nil {
		return "", err
	}
	if len(data.terms) > 0 {
		if list := goquery.NewDocumentFromNode(root).Find("ul.search"); list.Length() > 0 {
			highlight.Apply(list.Get(0), data.terms)
		}
	}
	highlight.NewInstrumenter().Scan(root)

	page, err := highlight.Render(root)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(page), nil
}
