package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/phrase"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/search"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/state"
)

// Service wraps the engine's query entry point with phrase filtering
type Service struct {
	engines      *search.Holder
	fetcher      Fetcher
	opts         Options
	pollInterval time.Duration
	logger       zerolog.Logger
}

// NewService creates a phrase search service
func NewService(engines *search.Holder, fetcher Fetcher, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		engines:      engines,
		fetcher:      fetcher,
		opts:         opts,
		pollInterval: search.DefaultPollInterval,
		logger:       logger,
	}
}

// Query classifies raw and hands the results to display.
//
// The clear command purges stored state and displays nothing. A query
// without phrases drops the stored list and runs the engine unmodified.
// Any other query is filtered by its phrases, which are then stored for
// the destination page
func (s *Service) Query(ctx context.Context, st *state.Session, raw string, display search.Display) (phrase.Classification, error) {
	c := phrase.Classify(raw)

	if c.Clear {
		if err := st.Purge(ctx); err != nil {
			s.logger.Error().Err(err).Msg("failed to purge highlight state")
		}
		display([]search.Result{}, 0, search.TermSet{}, search.TermSet{})
		return c, nil
	}

	engine, err := s.engines.Await(ctx, s.pollInterval)
	if err != nil {
		return c, fmt.Errorf("search engine unavailable: %w", err)
	}

	if c.Fallback {
		if err := st.ClearPhrases(ctx); err != nil {
			s.logger.Error().Err(err).Msg("failed to clear stored phrases")
		}
		results, q := search.Run(engine, raw)
		display(results, len(results), search.NewTermSet(q.HighlightTerms...), search.NewTermSet(q.ObjectTerms...))
		return c, nil
	}

	candidates, _ := search.Run(engine, raw)
	f := New(s.fetcher, engine.HTMLToText, s.opts, s.logger)
	filtered, err := f.Apply(ctx, candidates, c.Phrases, c.Mode)
	if err != nil {
		return c, err
	}

	if err := st.SetPhrases(ctx, c.Phrases); err != nil {
		s.logger.Error().Err(err).Msg("failed to store phrases")
	}

	s.logger.Debug().
		Str("query", raw).
		Stringer("mode", c.Mode).
		Strs("phrases", c.Phrases).
		Int("candidates", len(candidates)).
		Int("results", len(filtered)).
		Msg("phrase filter completed")

	terms := search.TermSet(phrase.Set(c.Phrases))
	display(filtered, len(filtered), terms, terms)
	return c, nil
}
