package phrase

import "strings"

// Match evaluates the phrase predicate against lowercased document text.
// An empty phrase list never matches
func Match(text string, phrases []string, mode Mode) bool {
	if len(phrases) == 0 {
		return false
	}
	if mode == ModeOr {
		for _, p := range phrases {
			if strings.Contains(text, p) {
				return true
			}
		}
		return false
	}
	for _, p := range phrases {
		if !strings.Contains(text, p) {
			return false
		}
	}
	return true
}

// Set returns the phrases as a lookup set, used to highlight the results
// list itself
func Set(phrases []string) map[string]struct{} {
	set := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		set[p] = struct{}{}
	}
	return set
}
