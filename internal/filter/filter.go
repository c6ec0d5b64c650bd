// Package filter narrows the underlying engine's results to the documents
// whose rendered text satisfies the phrase predicate, and persists the
// phrase list for highlighting on the destination page.
package filter

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/phrase"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/search"
)

// TextExtractor turns a rendered page into its visible text
type TextExtractor func(html string) (string, error)

// Options locate document content
type Options struct {
	// ContentRoot is prefixed to every document name
	ContentRoot string

	// FileSuffix is appended to every document name
	FileSuffix string
}

// Filter checks candidate documents one at a time
type Filter struct {
	fetcher Fetcher
	extract TextExtractor
	opts    Options
	logger  zerolog.Logger
}

// New creates a filter
func New(fetcher Fetcher, extract TextExtractor, opts Options, logger zerolog.Logger) *Filter {
	if opts.ContentRoot != "" && !strings.HasSuffix(opts.ContentRoot, "/") {
		opts.ContentRoot += "/"
	}
	return &Filter{
		fetcher: fetcher,
		extract: extract,
		opts:    opts,
		logger:  logger,
	}
}

// URL resolves the content URL of a result
func (f *Filter) URL(r search.Result) string {
	return f.opts.ContentRoot + r.DocName + f.opts.FileSuffix
}

// Apply keeps, in order, the results whose text matches the phrases.
//
// Fetches run sequentially. A document whose fetch or text extraction fails
// is kept: the filter fails open, so such documents appear in the filtered
// results unchecked. A cancelled context abandons the loop
func (f *Filter) Apply(ctx context.Context, results []search.Result, phrases []string, mode phrase.Mode) ([]search.Result, error) {
	filtered := make([]search.Result, 0, len(results))

	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		url := f.URL(r)
		text, err := f.text(ctx, url)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			f.logger.Warn().Err(err).Str("doc", r.DocName).Str("url", url).Msg("keeping unchecked document")
			filtered = append(filtered, r)
			continue
		}

		if phrase.Match(text, phrases, mode) {
			filtered = append(filtered, r)
		}
	}

	return filtered, nil
}

func (f *Filter) text(ctx context.Context, url string) (string, error) {
	html, err := f.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	text, err := f.extract(html)
	if err != nil {
		return "", err
	}
	return strings.ToLower(text), nil
}
