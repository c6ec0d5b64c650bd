package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/clearcmd"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/highlight"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/phrase"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/state"
)

// Identity cookies. The visitor cookie outlives the browser session; the
// session cookie does not
const (
	VisitorCookie = "phrase_visitor"
	SessionCookie = "phrase_session"

	visitorMaxAge = 365 * 24 * time.Hour
)

type sessionKey struct{}

// Identity attaches the visitor's state session to the request context,
// issuing identity cookies on first contact
func (h *Handler) Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitor := h.identify(w, r, VisitorCookie, visitorMaxAge)
		session := h.identify(w, r, SessionCookie, 0)

		st := state.NewSession(h.store, visitor, session, h.opts.SessionTTL)
		ctx := context.WithValue(r.Context(), sessionKey{}, st)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) identify(w http.ResponseWriter, r *http.Request, name string, maxAge time.Duration) string {
	if c, err := r.Cookie(name); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// sessionFrom returns the state session attached by Identity
func (h *Handler) sessionFrom(r *http.Request) *state.Session {
	if st, ok := r.Context().Value(sessionKey{}).(*state.Session); ok {
		return st
	}
	return state.NewSession(h.store, uuid.NewString(), uuid.NewString(), h.opts.SessionTTL)
}

// InterceptClear catches the clear command submitted from an instrumented
// search form before it navigates anywhere. The visitor is sent back to
// the page the form was on, which then renders without markers
func (h *Handler) InterceptClear(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		field := r.FormValue(highlight.TriggerField)
		query := r.FormValue(highlight.QueryField)
		if field == "" || !phrase.IsClearCommand(query) {
			next.ServeHTTP(w, r)
			return
		}

		trigger, err := clearcmd.ParseTrigger(field)
		if err != nil || trigger == clearcmd.TriggerPageLoad {
			next.ServeHTTP(w, r)
			return
		}

		back := localReferer(r)
		out, err := h.clear.Route(r.Context(), h.sessionFrom(r), trigger, query, back)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to handle clear command")
			writeError(w, http.StatusInternalServerError, "failed to clear highlight state", "STATE_ERROR")
			return
		}

		if !out.CancelNavigation {
			next.ServeHTTP(w, r)
			return
		}
		if back == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
	})
}

// localReferer returns the referring page as a same-origin request URI
func localReferer(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if u.Host != "" && u.Host != r.Host {
		return ""
	}
	return u.RequestURI()
}
