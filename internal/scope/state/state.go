// Package state gives typed access to the persisted highlight state of one
// visitor and one browser session.
//
// Durable keys live as long as the visitor cookie and mirror the search
// widget's localStorage keys. Session keys expire with the session cookie.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/db"
)

// Durable keys
const (
	KeyPhrases          = "sphinx_highlight_phrases"
	KeyHighlightTerms   = "sphinx_highlight_terms"
	KeyAltHighlightTerm = "_sphinx_highlight_terms"
)

// Session keys
const (
	KeyPageCount      = "phrase_page_count"
	KeyPreviousPage   = "phrase_previous_page"
	KeyHandledLocally = "phrase_clear_handled_locally"
)

// DefaultSessionTTL bounds how long session keys are kept without activity
const DefaultSessionTTL = 24 * time.Hour

// Session addresses the state of one visitor in one browser session
type Session struct {
	store      db.Store
	visitorID  string
	sessionID  string
	sessionTTL time.Duration
}

// NewSession binds a store to a visitor and a session id
func NewSession(store db.Store, visitorID, sessionID string, sessionTTL time.Duration) *Session {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Session{
		store:      store,
		visitorID:  visitorID,
		sessionID:  sessionID,
		sessionTTL: sessionTTL,
	}
}

func (s *Session) durable(key string) string {
	return "durable/" + s.visitorID + "/" + key
}

func (s *Session) session(key string) string {
	return "session/" + s.sessionID + "/" + key
}

// Phrases returns the persisted phrase list. ok is false when no phrase
// filter is active. A stored value that fails to parse is reported as an
// error so that callers can log it and carry on without highlighting
func (s *Session) Phrases(ctx context.Context) (phrases []string, ok bool, err error) {
	raw, ok, err := s.store.Get(ctx, s.durable(KeyPhrases))
	if err != nil || !ok {
		return nil, false, err
	}
	if err := json.Unmarshal([]byte(raw), &phrases); err != nil {
		return nil, false, fmt.Errorf("malformed %s: %w", KeyPhrases, err)
	}
	return phrases, true, nil
}

// SetPhrases persists the phrase list and clears the legacy term keys so no
// other highlighter re-triggers. An empty list removes the phrase key
func (s *Session) SetPhrases(ctx context.Context, phrases []string) error {
	if len(phrases) == 0 {
		return s.ClearPhrases(ctx)
	}
	data, err := json.Marshal(phrases)
	if err != nil {
		return fmt.Errorf("failed to encode phrases: %w", err)
	}
	if err := s.store.Set(ctx, s.durable(KeyPhrases), string(data), 0); err != nil {
		return err
	}
	return s.store.Delete(ctx, s.durable(KeyHighlightTerms), s.durable(KeyAltHighlightTerm))
}

// ClearPhrases removes only the phrase key
func (s *Session) ClearPhrases(ctx context.Context) error {
	return s.store.Delete(ctx, s.durable(KeyPhrases))
}

// Purge removes the phrase key and both legacy term keys in one operation
func (s *Session) Purge(ctx context.Context) error {
	return s.store.Delete(ctx,
		s.durable(KeyPhrases),
		s.durable(KeyHighlightTerms),
		s.durable(KeyAltHighlightTerm),
	)
}

// IncrementPageCount bumps the diagnostic page-visit counter
func (s *Session) IncrementPageCount(ctx context.Context) (int, error) {
	raw, _, err := s.store.Get(ctx, s.session(KeyPageCount))
	if err != nil {
		return 0, err
	}
	n, _ := strconv.Atoi(raw)
	n++
	if err := s.store.Set(ctx, s.session(KeyPageCount), strconv.Itoa(n), s.sessionTTL); err != nil {
		return 0, err
	}
	return n, nil
}

// PreviousPage returns the last recorded non-search page URL
func (s *Session) PreviousPage(ctx context.Context) (string, bool, error) {
	return s.store.Get(ctx, s.session(KeyPreviousPage))
}

// SetPreviousPage records the URL a later clear command may redirect to
func (s *Session) SetPreviousPage(ctx context.Context, url string) error {
	return s.store.Set(ctx, s.session(KeyPreviousPage), url, s.sessionTTL)
}

// MarkHandledLocally records that a clear command was already handled by an
// interceptor for the coming navigation
func (s *Session) MarkHandledLocally(ctx context.Context) error {
	return s.store.Set(ctx, s.session(KeyHandledLocally), "true", s.sessionTTL)
}

// ConsumeHandledLocally reports and removes the handled-locally flag
func (s *Session) ConsumeHandledLocally(ctx context.Context) (bool, error) {
	_, ok, err := s.store.Get(ctx, s.session(KeyHandledLocally))
	if err != nil || !ok {
		return false, err
	}
	if err := s.store.Delete(ctx, s.session(KeyHandledLocally)); err != nil {
		return false, err
	}
	return true, nil
}
