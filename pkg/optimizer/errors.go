package optimizer

import "fmt"

// Location is a 1-indexed source position, used in diagnostics so a host can
// point an editor at the offending span.
type Location struct {
	Line   int
	Column int
}

// ParseError wraps a tree-sitter parse failure (HasError()/IsError() on the
// resulting tree) into the engine's error-kind contract: the source under
// transform or render is syntactically invalid and no pass ran.
type ParseError struct {
	Detail   string
	Location Location
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("optimizer: parse error at %d:%d: %s", e.Location.Line, e.Location.Column, e.Detail)
}

// InvariantViolation reports an internal consistency failure a pass detected
// in its own output — e.g. two edits from the same pass run overlapping, or
// a dedupe class whose computed lowest-common-ancestor scope doesn't
// actually dominate every occurrence. These indicate an engine bug, not a
// malformed input, and are surfaced with full context rather than quietly
// downgraded to a warning.
type InvariantViolation struct {
	Pass   string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("optimizer: invariant violation in %s pass: %s", e.Pass, e.Detail)
}

// PassWarning is a non-fatal, best-effort-contract diagnostic: a pass opted not
// to rewrite a particular site (a hoist candidate failed the conditional
// gate, a dedupe class had no common scope to lift into) but otherwise
// completed normally. Collected across every
// pass a Transform/RenderChunk call runs and returned alongside the result.
type PassWarning struct {
	Pass     string
	Message  string
	Location Location
}

// Warnings is what Transform and RenderChunk return alongside a Result: one
// entry per site a pass declined to rewrite.
type Warnings []PassWarning
