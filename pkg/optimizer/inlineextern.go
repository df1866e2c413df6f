package optimizer

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/oveo-dev/oveo/pkg/ast"
	"github.com/oveo-dev/oveo/pkg/edit"
	"github.com/oveo-dev/oveo/pkg/extern"
	"github.com/oveo-dev/oveo/pkg/intrinsic"
)

// runInlineExtern implements §4.3: every read of an identifier bound to an
// extern const export is replaced by a reconstructed literal of that
// export's value. It runs before the hoist pass, since an inlined object or
// array literal can itself become a hoist candidate.
//
// Import statements whose every locally-bound name was fully inlined are
// pruned entirely. A clause that mixes inlined and non-inlined names keeps
// only the specifiers still in use, so `import { A, B } from "m"` with just
// A inlined becomes `import { B } from "m"`.
func (o *Optimizer) runInlineExtern(root *ts.Node, source []byte, st *ast.SymbolTable, table intrinsic.ImportTable, resolver *intrinsic.Resolver) ([]edit.Edit, []PassWarning) {
	var edits []edit.Edit
	var warnings []PassWarning

	// bindingOf maps an import's binding index to the rendered literal it
	// inlines to, for every name that resolves to a const export.
	bindingOf := make(map[int]string)
	inlinedNames := make(map[string]bool)
	for name, ref := range table {
		bidx, ok := st.ResolveFromScope(0, name)
		if !ok {
			continue
		}
		d, isConst := resolver.ResolveConstRead(ref)
		if !isConst {
			continue
		}
		literal, err := extern.RenderLiteral(d.Value)
		if err != nil {
			warnings = append(warnings, PassWarning{Pass: "inline-extern", Message: "const export " + name + ": " + err.Error()})
			continue
		}
		bindingOf[bidx] = literal
		inlinedNames[name] = true
	}

	if len(bindingOf) == 0 {
		return nil, warnings
	}

	walkAll(root, func(n *ts.Node) {
		if n.Kind() != "identifier" || isImportDeclarationIdentifier(n) {
			return
		}
		bidx, ok := st.Resolve(n)
		if !ok {
			return
		}
		literal, ok := bindingOf[bidx]
		if !ok {
			return
		}
		edits = append(edits, edit.Edit{Start: n.StartByte(), End: n.EndByte(), Replacement: literal})
	})

	walkAll(root, func(n *ts.Node) {
		if n.Kind() != "import_statement" {
			return
		}
		sourceNode := n.ChildByFieldName("source")
		if sourceNode == nil {
			return
		}
		parts := importClauseParts(n, source)
		if len(parts) == 0 {
			return
		}

		var kept []importClausePart
		removedAny := false
		for _, p := range parts {
			if inlinedNames[p.name] {
				removedAny = true
				continue
			}
			kept = append(kept, p)
		}
		if !removedAny {
			return
		}
		if len(kept) == 0 {
			edits = append(edits, edit.Edit{Start: n.StartByte(), End: n.EndByte(), Replacement: ""})
			return
		}

		suffix := string(source[sourceNode.EndByte():n.EndByte()])
		replacement := "import " + renderImportClause(kept) + " from " + sourceNode.Utf8Text(source) + suffix
		edits = append(edits, edit.Edit{Start: n.StartByte(), End: n.EndByte(), Replacement: replacement})
	})

	return edits, warnings
}

func isImportDeclarationIdentifier(n *ts.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "import_specifier", "namespace_import", "import_clause", "import_statement":
			return true
		}
	}
	return false
}

// importClausePart is one locally-bound name introduced by an import
// clause — a default binding, a namespace binding, or a single named
// specifier — along with the verbatim source text that binds it, so a
// surviving subset of parts can be spliced back into a reconstructed clause.
type importClausePart struct {
	name string
	kind string // "default", "namespace", or "named"
	text string
}

// importClauseParts collects every locally-bound name a single import
// statement introduces (default, namespace, and named imports, honoring
// aliases), paired with the source text of the binding it came from.
func importClauseParts(stmt *ts.Node, source []byte) []importClausePart {
	var parts []importClausePart
	var walk func(*ts.Node)
	walk = func(n *ts.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "identifier":
			parts = append(parts, importClausePart{name: n.Utf8Text(source), kind: "default", text: n.Utf8Text(source)})
		case "namespace_import":
			if ident := firstIdentifierDescendant(n); ident != nil {
				parts = append(parts, importClausePart{name: ident.Utf8Text(source), kind: "namespace", text: n.Utf8Text(source)})
			}
		case "named_imports":
			count := n.NamedChildCount()
			for i := uint(0); i < count; i++ {
				walk(n.NamedChild(i))
			}
		case "import_specifier":
			name := n.ChildByFieldName("name")
			alias := n.ChildByFieldName("alias")
			if name == nil {
				return
			}
			local := name
			if alias != nil {
				local = alias
			}
			parts = append(parts, importClausePart{name: local.Utf8Text(source), kind: "named", text: n.Utf8Text(source)})
		case "import_clause":
			count := n.NamedChildCount()
			for i := uint(0); i < count; i++ {
				walk(n.NamedChild(i))
			}
		}
	}
	count := stmt.NamedChildCount()
	for i := uint(0); i < count; i++ {
		walk(stmt.NamedChild(i))
	}
	return parts
}

func firstIdentifierDescendant(n *ts.Node) *ts.Node {
	if n.Kind() == "identifier" {
		return n
	}
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		if found := firstIdentifierDescendant(n.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

// renderImportClause rebuilds an import clause's source text from the
// surviving parts, preserving default/namespace order ahead of a braced
// named-imports group and each named specifier's original rename clause.
func renderImportClause(parts []importClausePart) string {
	var head []string
	var named []string
	for _, p := range parts {
		if p.kind == "named" {
			named = append(named, p.text)
			continue
		}
		head = append(head, p.text)
	}
	if len(named) > 0 {
		head = append(head, "{ "+strings.Join(named, ", ")+" }")
	}
	return strings.Join(head, ", ")
}
