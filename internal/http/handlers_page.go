package httpapi

import (
	"bytes"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/clearcmd"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/filter"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/highlight"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/phrase"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/state"
)

// HandlePage serves a site file. HTML pages are highlighted with the
// visitor's stored phrases and their search forms are instrumented
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	name, ok := h.resolve(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if !isHTML(name) {
		http.ServeFile(w, r, name)
		return
	}

	src, err := os.ReadFile(name)
	if err != nil {
		h.logger.Error().Err(err).Str("file", name).Msg("failed to read page")
		http.NotFound(w, r)
		return
	}

	// fetches from the phrase filter read the page as built
	if r.Header.Get(filter.FetchHeader) != "" {
		writeHTML(w, http.StatusOK, string(src))
		return
	}

	st := h.sessionFrom(r)
	h.countPage(r, st)

	current := r.URL.RequestURI()
	query := r.URL.Query().Get(highlight.QueryField)
	out, err := h.clear.Route(r.Context(), st, clearcmd.TriggerPageLoad, query, current)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to handle clear command")
	}
	if out.RedirectTo != "" {
		http.Redirect(w, r, out.RedirectTo, http.StatusSeeOther)
		return
	}

	// a cleared page is never a page to come back to
	strip := phrase.IsClearCommand(query)
	if !strip && !h.isSearchPage(r.URL.Path) {
		if err := st.SetPreviousPage(r.Context(), current); err != nil {
			h.logger.Error().Err(err).Msg("failed to record previous page")
		}
	}

	page, err := h.renderPage(r, st, src, strip)
	if err != nil {
		h.logger.Error().Err(err).Str("file", name).Msg("failed to render page, serving as built")
		writeHTML(w, http.StatusOK, string(src))
		return
	}
	writeHTML(w, http.StatusOK, page)
}

func (h *Handler) renderPage(r *http.Request, st *state.Session, src []byte, strip bool) (string, error) {
	root, err := highlight.Parse(bytes.NewReader(src))
	if err != nil {
		return "", err
	}

	if strip {
		highlight.Strip(root)
		highlight.ClearInputs(root)
	} else {
		phrases, ok, err := st.Phrases(r.Context())
		switch {
		case err != nil:
			h.logger.Debug().Err(err).Msg("ignoring stored phrases")
		case ok:
			n := highlight.Apply(root, phrases)
			h.logger.Debug().Strs("phrases", phrases).Int("marked", n).Str("url", r.URL.Path).Msg("page highlighted")
		}
	}

	highlight.NewInstrumenter().Scan(root)
	return highlight.Render(root)
}

func (h *Handler) countPage(r *http.Request, st *state.Session) {
	n, err := st.IncrementPageCount(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to count page")
		return
	}
	h.logger.Debug().Int("page_count", n).Str("url", r.URL.Path).Msg("page loaded")
}

func (h *Handler) isSearchPage(urlPath string) bool {
	p := strings.TrimPrefix(urlPath, "/")
	return p == h.opts.SearchPage || p == "search"
}

// resolve maps a URL path to a file under the site directory
func (h *Handler) resolve(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	name := filepath.Join(h.opts.SiteDir, filepath.FromSlash(clean))

	info, err := os.Stat(name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		name = filepath.Join(name, "index.html")
		if info, err = os.Stat(name); err != nil || info.IsDir() {
			return "", false
		}
	}
	return name, true
}

func isHTML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm"
}
