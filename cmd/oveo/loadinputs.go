package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
)

// expandPathOrGlob returns [pattern] unchanged if it names a literal file
// that exists, else expands it as a doublestar glob against the current
// directory — the same literal-path-or-glob tolerance the teacher's
// catalog file discovery gives its config paths.
func expandPathOrGlob(pattern string) ([]string, error) {
	if _, err := os.Stat(pattern); err == nil {
		return []string{pattern}, nil
	}
	matches, err := doublestar.Glob(os.DirFS("."), pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	return matches, nil
}

// loadExternsData resolves every --externs path (each a literal path or a
// glob) and merges the resulting JSON documents into one, so a host
// configuration naming several extern files behaves like ImportExterns
// called once against their union. A module specifier declared identically
// in two files is fine; declared differently is a conflict the host should
// see immediately rather than have silently resolved by file order.
func loadExternsData(patterns []string) ([]byte, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	merged := make(map[string]json.RawMessage)
	for _, pattern := range patterns {
		paths, err := expandPathOrGlob(pattern)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("externs: no file matches %q", pattern)
		}
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("externs: read %q: %w", p, err)
			}
			var doc map[string]json.RawMessage
			if err := json.Unmarshal(data, &doc); err != nil {
				return nil, fmt.Errorf("externs: %q: invalid JSON: %w", p, err)
			}
			for specifier, raw := range doc {
				if existing, ok := merged[specifier]; ok && string(existing) != string(raw) {
					return nil, fmt.Errorf("externs: conflicting descriptor for module %q between input files", specifier)
				}
				merged[specifier] = raw
			}
		}
	}
	return json.Marshal(merged)
}

// loadPropmapData reads the property-map file at path, if any. A missing
// path is not an error — callers treat it as "start with an empty map,"
// matching a first build with no persisted map yet.
func loadPropmapData(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("propmap: read %q: %w", path, err)
	}
	return data, nil
}
