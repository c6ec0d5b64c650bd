// Package phrase classifies raw search queries into match modes and phrase
// lists, and evaluates the phrase predicate against extracted page text.
package phrase

import (
	"fmt"
	"strings"
)

// Mode selects how the phrase list is matched against a document
type Mode int

const (
	// ModeOr keeps a document when any phrase occurs in it
	ModeOr Mode = iota
	// ModeAnd keeps a document only when every phrase occurs in it
	ModeAnd
)

// String returns the lowercase mode name
func (m Mode) String() string {
	if m == ModeAnd {
		return "and"
	}
	return "or"
}

// MarshalText encodes the mode as its name so it reads well in JSON
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "and":
		*m = ModeAnd
	case "or":
		*m = ModeOr
	default:
		return fmt.Errorf("unknown mode %q", b)
	}
	return nil
}

// Classification is the outcome of classifying one raw query
type Classification struct {
	Mode    Mode
	Phrases []string

	// Clear is set for the reserved empty-quote query. Phrases is nil
	Clear bool

	// Fallback is set when the query produced no phrases. The caller must
	// drop any stored phrase list and run the engine's default query
	Fallback bool
}

// IsClearCommand reports whether q is the reserved clear command: an empty
// pair of double or single quotes, with nothing around it
func IsClearCommand(q string) bool {
	return q == `""` || q == `''`
}

// Classify splits a raw query into phrases and picks the match mode.
//
// A comma-separated query yields one AND phrase per non-empty segment, a
// query containing a quote character yields a single AND phrase, and any
// other query yields one OR phrase per whitespace-separated word
func Classify(raw string) Classification {
	if IsClearCommand(raw) {
		return Classification{Clear: true}
	}

	var c Classification
	switch {
	case strings.Contains(raw, ","):
		c.Mode = ModeAnd
		for _, segment := range strings.Split(raw, ",") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			segment = strings.ToLower(stripQuote(segment))
			if segment == "" {
				continue
			}
			c.Phrases = append(c.Phrases, segment)
		}
	case strings.ContainsAny(raw, quoteChars):
		c.Mode = ModeAnd
		cleaned := strings.ToLower(strings.TrimSpace(stripQuote(raw)))
		if cleaned != "" {
			c.Phrases = []string{cleaned}
		}
	default:
		c.Mode = ModeOr
		for _, word := range strings.Fields(raw) {
			c.Phrases = append(c.Phrases, strings.ToLower(word))
		}
	}

	if len(c.Phrases) == 0 {
		c.Phrases = nil
		c.Fallback = true
	}
	return c
}

const quoteChars = `"'`

// stripQuote removes at most one leading and one trailing quote character
func stripQuote(s string) string {
	if s != "" && strings.ContainsRune(quoteChars, rune(s[0])) {
		s = s[1:]
	}
	if s != "" && strings.ContainsRune(quoteChars, rune(s[len(s)-1])) {
		s = s[:len(s)-1]
	}
	return s
}
