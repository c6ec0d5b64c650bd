// Package search provides the underlying full-text search engine over a
// built Sphinx HTML site.
//
// The engine mirrors the collaborator surface the phrase filter wraps:
// query parsing, search execution, HTML-to-text extraction and a results
// rendering callback. Ranking lives here and nowhere else.
package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Engine represents a search backend
type Engine interface {
	// ParseQuery splits a raw query into search, excluded, highlight and
	// object terms
	ParseQuery(query string) Query

	// PerformSearch returns ranked candidates for a parsed query
	PerformSearch(q Query) []Result

	// HTMLToText extracts the visible text of a rendered page
	HTMLToText(html string) (string, error)
}

// TermSet is a set of lowercase terms handed to the results renderer
type TermSet map[string]struct{}

// NewTermSet builds a set from terms
func NewTermSet(terms ...string) TermSet {
	set := make(TermSet, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

// Sorted returns the terms in lexical order
func (s TermSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Display is the results rendering callback. It receives the results to
// show, their count and the terms to highlight in the list
type Display func(results []Result, count int, highlightTerms, objectTerms TermSet)

// Query is a parsed query
type Query struct {
	Raw            string
	SearchTerms    []string
	ExcludedTerms  []string
	HighlightTerms []string
	ObjectTerms    []string
}

// Result kinds
const (
	KindText  = "text"
	KindTitle = "title"
)

// Result is one candidate document reference
type Result struct {
	DocName     string  `json:"doc_name"`
	Title       string  `json:"title"`
	Anchor      string  `json:"anchor,omitempty"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score"`
	Filename    string  `json:"filename"`
	Kind        string  `json:"kind"`
}

// Document is a page added to the index
type Document struct {
	DocName  string
	Filename string
	Title    string
	Text     string
	Sections []Section
}

// Section is a titled, anchored part of a document
type Section struct {
	Anchor string
	Title  string
}

// Scores follow Sphinx's defaults for title and body term hits
const (
	scoreTitle   = 15
	scoreTerm    = 5
	scoreSection = 15
	summaryWidth = 240
)

type indexedDoc struct {
	Document
	lowerText  string
	textTerms  map[string]int
	titleTerms map[string]struct{}
}

// Index is an in-memory search implementation
type Index struct {
	docs []indexedDoc
}

// NewIndex creates a new empty index
func NewIndex() *Index {
	return &Index{}
}

// Add adds a document to the index
func (e *Index) Add(doc Document) {
	d := indexedDoc{
		Document:   doc,
		lowerText:  strings.ToLower(doc.Text),
		textTerms:  make(map[string]int),
		titleTerms: make(map[string]struct{}),
	}
	for _, term := range splitQuery(d.lowerText) {
		d.textTerms[term]++
	}
	for _, term := range splitQuery(strings.ToLower(doc.Title)) {
		d.titleTerms[term] = struct{}{}
	}
	e.docs = append(e.docs, d)
}

// Count returns the number of indexed documents
func (e *Index) Count() int {
	return len(e.docs)
}

// DocNames returns the indexed document names in insertion order
func (e *Index) DocNames() []string {
	names := make([]string, len(e.docs))
	for i, d := range e.docs {
		names[i] = d.DocName
	}
	return names
}

// ParseQuery splits the query the way Sphinx does: words are split on
// non-word characters and lowercased, stopwords and bare numbers are
// dropped, and words prefixed with "-" are excluded
func (e *Index) ParseQuery(query string) Query {
	q := Query{Raw: query}
	seen := make(map[string]bool)

	for _, field := range strings.Fields(query) {
		excluded := strings.HasPrefix(field, "-")
		for _, term := range splitQuery(strings.ToLower(field)) {
			if isStopword(term) || isNumber(term) || seen[term] {
				continue
			}
			seen[term] = true
			if excluded {
				q.ExcludedTerms = append(q.ExcludedTerms, term)
				continue
			}
			q.SearchTerms = append(q.SearchTerms, term)
			q.HighlightTerms = append(q.HighlightTerms, term)
		}
		object := strings.ToLower(strings.Trim(field, `"',`))
		if object != "" && !excluded {
			q.ObjectTerms = append(q.ObjectTerms, object)
		}
	}

	return q
}

// PerformSearch returns every document matching at least one search term
// and no excluded term, plus every section whose title holds all search
// terms, ordered by descending score then title
func (e *Index) PerformSearch(q Query) []Result {
	if len(q.SearchTerms) == 0 {
		return nil
	}

	var results []Result
	for i := range e.docs {
		d := &e.docs[i]
		if d.hasAny(q.ExcludedTerms) {
			continue
		}

		var score float64
		for _, term := range q.SearchTerms {
			if _, ok := d.titleTerms[term]; ok {
				score += scoreTitle
			}
			if _, ok := d.textTerms[term]; ok {
				score += scoreTerm
			}
		}
		if score > 0 {
			results = append(results, Result{
				DocName:     d.DocName,
				Title:       d.Title,
				Description: summary(d.Text, d.lowerText, q.SearchTerms),
				Score:       score,
				Filename:    d.Filename,
				Kind:        KindText,
			})
		}

		for _, s := range d.Sections {
			if s.Anchor == "" || !containsAll(strings.ToLower(s.Title), q.SearchTerms) {
				continue
			}
			results = append(results, Result{
				DocName:  d.DocName,
				Title:    s.Title,
				Anchor:   "#" + s.Anchor,
				Score:    scoreSection,
				Filename: d.Filename,
				Kind:     KindTitle,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Title < results[j].Title
	})

	return results
}

// Run is the engine's default query handling: parse then search
func Run(e Engine, query string) ([]Result, Query) {
	q := e.ParseQuery(query)
	return e.PerformSearch(q), q
}

func (d *indexedDoc) hasAny(terms []string) bool {
	for _, term := range terms {
		if _, ok := d.textTerms[term]; ok {
			return true
		}
		if _, ok := d.titleTerms[term]; ok {
			return true
		}
	}
	return false
}

func containsAll(s string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}

// summary cuts a window of text around the first search term hit
func summary(text, lowerText string, terms []string) string {
	start := -1
	for _, t := range terms {
		if i := strings.Index(lowerText, t); i >= 0 && (start < 0 || i < start) {
			start = i
		}
	}
	if start < 0 || len(lowerText) != len(text) {
		start = 0
	}

	from := max(start-summaryWidth/2, 0)
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	runes := []rune(text[from:])
	if len(runes) > summaryWidth {
		runes = runes[:summaryWidth]
	}
	out := strings.Join(strings.Fields(string(runes)), " ")
	if from > 0 {
		out = "..." + out
	}
	return out
}

func splitQuery(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
