// Package propmap implements the persisted property-rename map: a
// line-oriented `key=value` INI format, parsed into an ordered original→
// renamed mapping, plus the short-name allocator the rename pass uses to
// mint fresh renamed values.
package propmap

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// FormatError is PropertyMapFormatError: malformed INI or a duplicate key.
// Parse returns this without mutating any existing PropertyMap.
type FormatError struct {
	Line   int
	Detail string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("propmap: line %d: %s", e.Line, e.Detail)
	}
	return fmt.Sprintf("propmap: %s", e.Detail)
}

// PropertyMap is the loaded map plus allocator and dirty-flag state
// described in §3/§4.7. The zero value is not usable; construct with New
// or Parse.
type PropertyMap struct {
	entries map[string]string // original -> renamed
	values  map[string]string // renamed -> original, for collision checks
	dirty   bool
	alloc   *Allocator
}

// New returns an empty property map with a fresh allocator.
func New() *PropertyMap {
	return &PropertyMap{
		entries: make(map[string]string),
		values:  make(map[string]string),
		alloc:   NewAllocator(),
	}
}

// Parse reads the `key=value` INI format: comment lines start with `#` or
// `;`, blank lines are ignored, surrounding whitespace is trimmed. A
// duplicate original key, or a renamed value reused across different keys,
// is a FormatError and Parse returns before any entry is committed.
func Parse(data []byte) (*PropertyMap, error) {
	pm := New()

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return nil, &FormatError{Line: lineNo, Detail: fmt.Sprintf("missing '=' in %q", line)}
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if key == "" {
			return nil, &FormatError{Line: lineNo, Detail: "empty key"}
		}

		if _, exists := pm.entries[key]; exists {
			return nil, &FormatError{Line: lineNo, Detail: fmt.Sprintf("duplicate key %q", key)}
		}
		// §9 Open Question (b): refuse the collision at import time rather
		// than silently shadowing a prior entry's renamed value.
		if owner, exists := pm.values[value]; exists {
			return nil, &FormatError{Line: lineNo, Detail: fmt.Sprintf("renamed value %q already used by key %q", value, owner)}
		}

		pm.entries[key] = value
		pm.values[value] = key
	}
	if err := scanner.Err(); err != nil {
		return nil, &FormatError{Detail: err.Error()}
	}

	pm.alloc = NewAllocatorSeeded(pm.values)
	return pm, nil
}

// Lookup returns the renamed value for an original name, if the map
// contains it.
func (pm *PropertyMap) Lookup(original string) (string, bool) {
	v, ok := pm.entries[original]
	return v, ok
}

// Allocate mints a fresh renamed name for original via the allocator, records
// it in the map, and sets the dirty flag. Returns the existing entry instead
// if original is already mapped (idempotent — supports invariant 6,
// confluence of repeated rename runs).
func (pm *PropertyMap) Allocate(original string) string {
	if existing, ok := pm.entries[original]; ok {
		return existing
	}
	renamed := pm.alloc.Next(pm.values)
	pm.entries[original] = renamed
	pm.values[renamed] = original
	pm.dirty = true
	return renamed
}

// Dirty reports whether any entry was added since the last import or update.
func (pm *PropertyMap) Dirty() bool { return pm.dirty }

// Update returns the serialized map if and only if the dirty flag is set,
// clearing it; otherwise returns nil with ok=false — the engine-API
// updatePropertyMap contract (invariant 8).
func (pm *PropertyMap) Update() (data []byte, ok bool) {
	if !pm.dirty {
		return nil, false
	}
	pm.dirty = false
	return pm.Export(), true
}

// Export serializes unconditionally: entries sorted by key, one per line,
// `key=value`, LF line endings, trailing newline.
func (pm *PropertyMap) Export() []byte {
	keys := make([]string, 0, len(pm.entries))
	for k := range pm.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b bytes.Buffer
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(pm.entries[k])
		b.WriteByte('\n')
	}
	return b.Bytes()
}
