package ast

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// FreeIdentifier is one free identifier reference inside an expression: the
// reference node itself and the binding it resolves to (Bound=false means it
// resolves to no in-file declaration — a global).
type FreeIdentifier struct {
	Ref     *ts.Node
	Binding int
	Bound   bool
}

// FreeIdentifiers computes §3's free-identifier set for expr: every
// identifier reference within expr, resolved from its own position, whose
// resolved declaration (if any) lies outside expr's own byte range — i.e.
// not bound by a declaration introduced inside expr itself.
func (st *SymbolTable) FreeIdentifiers(expr *ts.Node) []FreeIdentifier {
	var out []FreeIdentifier
	seen := make(map[string]bool)
	collectIdentifierRefs(expr, func(ref *ts.Node) {
		bidx, ok := st.Resolve(ref)
		if ok {
			decl := st.Bindings[bidx].Node
			if decl != nil && NodeWithinScope(decl, expr) {
				return // bound inside expr, not free
			}
		}
		key := ref.Utf8Text(st.source)
		dedupeKey := key
		if ok {
			dedupeKey = key + "#" + itoa(bidx)
		}
		if seen[dedupeKey] {
			return
		}
		seen[dedupeKey] = true
		out = append(out, FreeIdentifier{Ref: ref, Binding: bidx, Bound: ok})
	})
	return out
}

// collectIdentifierRefs walks expr and invokes fn for every identifier node
// used in a value position (not a property key, not a binding pattern's own
// declared name — those aren't references).
func collectIdentifierRefs(node *ts.Node, fn func(*ts.Node)) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier":
		if !isNonReferencePosition(node) {
			fn(node)
		}
	case "member_expression":
		// Only the object side is a reference; `.property` is a property
		// name, not a variable reference.
		collectIdentifierRefs(node.ChildByFieldName("object"), fn)
		return
	case "variable_declarator":
		// The declared name is a binding, not a reference; its initializer is.
		collectIdentifierRefs(node.ChildByFieldName("value"), fn)
		return
	case "property_identifier", "shorthand_property_identifier_pattern":
		return
	}

	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		collectIdentifierRefs(node.Child(i), fn)
	}
}

// isNonReferencePosition filters out identifiers that are themselves
// binding-pattern names (parameters, declarator names) rather than uses —
// those are picked up by scope.go's binder, never by free-variable
// computation.
func isNonReferencePosition(node *ts.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case "variable_declarator":
		return parent.ChildByFieldName("name") == node
	case "required_parameter", "optional_parameter", "assignment_pattern":
		return parent.ChildByFieldName("pattern") == node || parent.ChildByFieldName("left") == node
	case "import_specifier", "namespace_import":
		return true
	case "catch_clause":
		return parent.ChildByFieldName("parameter") == node
	}
	return false
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
