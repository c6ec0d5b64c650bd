// Package clearcmd decides what happens when the reserved clear query
// arrives through a page load, a form submission or an Enter key press.
package clearcmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/phrase"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/state"
)

// ErrUnknownTrigger is returned for a trigger outside the known set
var ErrUnknownTrigger = errors.New("unknown clear trigger")

// Trigger is how a query reached the router
type Trigger int

const (
	TriggerPageLoad Trigger = iota
	TriggerFormSubmit
	TriggerEnterKey
)

func (t Trigger) String() string {
	switch t {
	case TriggerPageLoad:
		return "page_load"
	case TriggerFormSubmit:
		return "form_submit"
	case TriggerEnterKey:
		return "enter_key"
	default:
		return fmt.Sprintf("trigger(%d)", int(t))
	}
}

// ParseTrigger maps the trigger field value sent by instrumented forms
func ParseTrigger(v string) (Trigger, error) {
	switch v {
	case "submit":
		return TriggerFormSubmit, nil
	case "enter":
		return TriggerEnterKey, nil
	case "", "load":
		return TriggerPageLoad, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTrigger, v)
	}
}

// State is where the router ended up
type State int

const (
	StateIdle State = iota
	StateClearDetected
	StateHandledLocally
	StateRedirectPending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateClearDetected:
		return "clear_detected"
	case StateHandledLocally:
		return "handled_locally"
	case StateRedirectPending:
		return "redirect_pending"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name
func (s *State) UnmarshalText(b []byte) error {
	for c := StateIdle; c <= StateRedirectPending; c++ {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// Outcome tells the caller what to do with the request
type Outcome struct {
	State State `json:"state"`

	// CancelNavigation stops the default navigation to the search page
	CancelNavigation bool `json:"cancel_navigation"`

	// ClearInput empties the search input
	ClearInput bool `json:"clear_input"`

	// StripMarkers removes highlight markers from the current page
	StripMarkers bool `json:"strip_markers"`

	// RedirectTo is set when the caller should navigate there
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Router runs the clear state machine against one visitor's state
type Router struct {
	logger zerolog.Logger
}

// NewRouter creates a router
func NewRouter(logger zerolog.Logger) *Router {
	return &Router{logger: logger}
}

// Route handles query arriving through trigger while currentURL is shown.
// Page loads of other queries only drop the handled flag; other triggers
// leave state untouched
func (r *Router) Route(ctx context.Context, st *state.Session, trigger Trigger, query, currentURL string) (Outcome, error) {
	if trigger < TriggerPageLoad || trigger > TriggerEnterKey {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownTrigger, trigger)
	}
	if !phrase.IsClearCommand(query) {
		if trigger == TriggerPageLoad {
			return r.settle(ctx, st)
		}
		return Outcome{State: StateIdle}, nil
	}

	if trigger != TriggerPageLoad {
		return r.intercept(ctx, st, trigger)
	}
	return r.pageLoad(ctx, st, currentURL)
}

// settle drops a handled flag left by an intercepted clear whose
// navigation has already ended
func (r *Router) settle(ctx context.Context, st *state.Session) (Outcome, error) {
	handled, err := st.ConsumeHandledLocally(ctx)
	if err != nil {
		return Outcome{State: StateIdle}, fmt.Errorf("failed to drop handled flag: %w", err)
	}
	if handled {
		r.logger.Debug().Msg("stale clear handled flag dropped")
	}
	return Outcome{State: StateIdle}, nil
}

func (r *Router) intercept(ctx context.Context, st *state.Session, trigger Trigger) (Outcome, error) {
	if err := st.Purge(ctx); err != nil {
		return Outcome{}, fmt.Errorf("failed to purge state: %w", err)
	}
	if err := st.MarkHandledLocally(ctx); err != nil {
		return Outcome{}, fmt.Errorf("failed to mark clear as handled: %w", err)
	}

	r.logger.Debug().Stringer("trigger", trigger).Msg("clear command handled locally")
	return Outcome{
		State:            StateHandledLocally,
		CancelNavigation: true,
		ClearInput:       true,
		StripMarkers:     true,
	}, nil
}

func (r *Router) pageLoad(ctx context.Context, st *state.Session, currentURL string) (Outcome, error) {
	handled, err := st.ConsumeHandledLocally(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read handled flag: %w", err)
	}
	if err := st.Purge(ctx); err != nil {
		return Outcome{}, fmt.Errorf("failed to purge state: %w", err)
	}

	if handled {
		r.logger.Debug().Msg("clear command already handled")
		return Outcome{State: StateHandledLocally, StripMarkers: true}, nil
	}

	previous, ok, err := st.PreviousPage(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read previous page: %w", err)
	}
	if ok && previous != "" && previous != currentURL {
		r.logger.Debug().Str("url", previous).Msg("clear command redirecting to previous page")
		return Outcome{State: StateRedirectPending, StripMarkers: true, RedirectTo: previous}, nil
	}

	return Outcome{State: StateClearDetected, StripMarkers: true}, nil
}
