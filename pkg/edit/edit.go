// Package edit applies non-overlapping byte-range replacements to a source
// buffer, and emits a minimal V3 source map describing the result.
//
// Every pass produces a list of Edits against the original parse's byte
// offsets rather than mutating the parse tree — tree-sitter trees are
// read-only. Applying the edits in one pass over the original buffer is
// the only place source text is actually rewritten.
package edit

import (
	"fmt"
	"sort"
	"strings"
)

// Edit replaces source[Start:End] with Replacement. Start and End are
// byte offsets into the original source buffer; both are inclusive-exclusive
// ([Start, End)), matching tree-sitter's StartByte/EndByte convention.
type Edit struct {
	Start       uint32
	End         uint32
	Replacement string

	// Name, if non-empty, is the identifier this edit introduces or
	// references, recorded for source-map "names" emission.
	Name string
}

// Overlaps reports whether e and other touch the same byte range.
func (e Edit) Overlaps(other Edit) bool {
	return e.Start < other.End && other.Start < e.End
}

// Apply sorts edits by start offset, verifies none overlap, and returns the
// source with every edit spliced in. Edits that insert at the same point
// (Start == End, a pure insertion) are applied in the order given.
func Apply(source []byte, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return string(source), nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.End > cur.Start {
			return "", fmt.Errorf("edit: overlapping edits [%d,%d) and [%d,%d)", prev.Start, prev.End, cur.Start, cur.End)
		}
	}

	var b strings.Builder
	b.Grow(len(source))
	var cursor uint32
	for _, e := range sorted {
		if e.Start < cursor {
			return "", fmt.Errorf("edit: edit start %d precedes cursor %d", e.Start, cursor)
		}
		b.Write(source[cursor:e.Start])
		b.WriteString(e.Replacement)
		cursor = e.End
	}
	if int(cursor) < len(source) {
		b.Write(source[cursor:])
	}
	return b.String(), nil
}

// NonOverlapping reports whether the given edits are pairwise non-overlapping.
// Useful for passes that want to validate their own output before handing it
// to a later pass in the same pipeline run.
func NonOverlapping(edits []Edit) bool {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].End > sorted[i].Start {
			return false
		}
	}
	return true
}
