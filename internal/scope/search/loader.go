package search

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes lists site paths that are never indexed
var DefaultExcludes = []string{
	"_static/**",
	"_sources/**",
	"_images/**",
	"_modules/**",
	"search.*",
	"genindex.*",
	"py-modindex.*",
}

// LoadDir indexes every page with the given suffix under fsys. Pages that
// match an exclude pattern or have no content region are skipped
func LoadDir(fsys fs.FS, suffix string, excludes []string) (*Index, error) {
	if suffix == "" {
		suffix = ".html"
	}
	if excludes == nil {
		excludes = DefaultExcludes
	}

	matches, err := doublestar.Glob(fsys, "**/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to list site pages: %w", err)
	}
	sort.Strings(matches)

	index := NewIndex()
	for _, path := range matches {
		if excluded(path, excludes) {
			continue
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		doc, err := ExtractDocument(strings.TrimSuffix(path, suffix), path, data)
		if err != nil {
			continue
		}
		index.Add(doc)
	}

	return index, nil
}

func excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
