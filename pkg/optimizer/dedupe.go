package optimizer

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/oveo-dev/oveo/pkg/ast"
	"github.com/oveo-dev/oveo/pkg/edit"
	"github.com/oveo-dev/oveo/pkg/intrinsic"
)

// runDedupe implements §4.4's chunk-phase pass over dedupe() intrinsic
// calls. The dedupe() wrapper is always stripped — even a class of size one
// simply unwraps to its inner argument, matching the disabled-pipeline
// round-trip invariant.
//
// Only explicit dedupe() call sites are considered here. §4.4 also
// describes treating every expression a hoist pass already materialized as
// an implicit dedupe candidate across the whole chunk; that cross-module
// extension isn't implemented — see DESIGN.md.
func (o *Optimizer) runDedupe(root *ts.Node, source []byte, st *ast.SymbolTable, table intrinsic.ImportTable, resolver *intrinsic.Resolver, enabled bool) ([]edit.Edit, []PassWarning) {
	var edits []edit.Edit
	var warnings []PassWarning

	type occurrence struct {
		call  *ts.Node
		expr  *ts.Node
		scope int
	}
	classes := make(map[string][]occurrence)
	var order []string

	walkAll(root, func(call *ts.Node) {
		if call.Kind() != "call_expression" {
			return
		}
		ann, ok := resolver.ResolveCall(call, source, table)
		if !ok || ann.Kind != intrinsic.KindIntrinsicDedupe {
			return
		}
		args := callArgs(call)
		if len(args) != 1 {
			return
		}
		expr := args[0]
		if !enabled {
			edits = append(edits, stripWrapper(call, expr)...)
			return
		}

		scopeIdx, ok := st.EnclosingScope(call)
		if !ok {
			return
		}
		fp := o.fingerprint(expr, st, source)
		if _, seen := classes[fp]; !seen {
			order = append(order, fp)
		}
		classes[fp] = append(classes[fp], occurrence{call: call, expr: expr, scope: scopeIdx})
	})

	if !enabled {
		return edits, warnings
	}

	for _, fp := range order {
		occs := classes[fp]
		if len(occs) == 1 {
			single := occs[0]
			edits = append(edits, stripWrapper(single.call, single.expr)...)
			continue
		}

		scopes := make([]int, len(occs))
		for i, o := range occs {
			scopes[i] = o.scope
		}
		lca, ok := st.LCA(scopes)
		if !ok {
			warnings = append(warnings, PassWarning{Pass: "dedupe", Message: "could not compute a common scope for a dedupe class, left inline"})
			for _, occ := range occs {
				edits = append(edits, stripWrapper(occ.call, occ.expr)...)
			}
			continue
		}
		o.dedupeCounter++
		name := fmt.Sprintf("_DEDUPE_%d", o.dedupeCounter)
		body := st.Scopes[lca].Body
		pos := insertionPoint(body)
		edits = append(edits, edit.Edit{Start: pos, End: pos, Replacement: "const " + name + " = " + occs[0].expr.Utf8Text(source) + "; ", Name: name})
		for _, occ := range occs {
			edits = append(edits, edit.Edit{Start: occ.call.StartByte(), End: occ.call.EndByte(), Replacement: name})
		}
	}

	return edits, warnings
}
