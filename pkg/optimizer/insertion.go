package optimizer

import ts "github.com/tree-sitter/go-tree-sitter"

// insertionPoint returns the byte offset within body (a program or
// statement_block node) where a lifted `const` declaration can be spliced
// in: after any leading import statements and any leading directive
// prologue ("use strict";), before the first real statement. An empty body
// inserts just before its closing brace (or at its end, for a program,
// which has none).
func insertionPoint(body *ts.Node) uint32 {
	count := body.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := body.NamedChild(i)
		if child.Kind() == "import_statement" {
			continue
		}
		if isDirectivePrologue(child) {
			continue
		}
		return child.StartByte()
	}
	if body.Kind() == "statement_block" {
		// Insert just before the closing brace.
		end := body.EndByte()
		if end > 0 {
			return end - 1
		}
		return end
	}
	return body.EndByte()
}

func isDirectivePrologue(stmt *ts.Node) bool {
	if stmt.Kind() != "expression_statement" {
		return false
	}
	if stmt.NamedChildCount() != 1 {
		return false
	}
	return stmt.NamedChild(0).Kind() == "string"
}
