package optimizer

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/oveo-dev/oveo/pkg/ast"
	"github.com/oveo-dev/oveo/pkg/edit"
	"github.com/oveo-dev/oveo/pkg/intrinsic"
)

// hoistableKinds is §4.2's type gate: only these node kinds are ever
// candidates, everything else (a bare identifier, a binary expression, a
// conditional expression) passes through untouched.
var hoistableKinds = map[string]bool{
	"arrow_function":            true,
	"function_expression":       true,
	"call_expression":           true,
	"new_expression":            true,
	"object":                    true,
	"array":                     true,
	"tagged_template_expression": true,
}

// runHoistAndScope implements the module-phase pass over hoist() and
// scope() intrinsic calls and extern-function hoist/scope argument flags.
//
// scope() calls are always stripped to their inner argument: the call is an
// identity function at runtime, existing only to mark its argument's own
// function scope as a hoist scope for reachability purposes, and that
// marking happens here regardless of whether the hoist option is enabled.
//
// hoist() calls and extern hoist-flagged arguments are lifted when enabled
// and the candidate clears every gate; otherwise hoist() calls strip to
// their inner argument (matching the disabled-pipeline round-trip
// invariant) and extern call arguments are left untouched (the call itself
// is a real function invocation, not an identity wrapper).
func (o *Optimizer) runHoistAndScope(root *ts.Node, source []byte, st *ast.SymbolTable, table intrinsic.ImportTable, resolver *intrinsic.Resolver, hoistEnabled bool) ([]edit.Edit, []PassWarning) {
	var edits []edit.Edit
	var warnings []PassWarning

	// Pass 1: mark scope()-flagged function arguments as hoist scopes before
	// any reachability analysis below depends on it.
	walkAll(root, func(n *ts.Node) {
		if n.Kind() != "call_expression" {
			return
		}
		ann, ok := resolver.ResolveCall(n, source, table)
		if !ok {
			return
		}
		markScopeFlaggedArgs(n, ann, st)
	})

	type pending struct {
		target int
		fp     string
	}
	names := make(map[pending]string)

	freshName := func(targetScope int, fp string) (string, bool) {
		key := pending{target: targetScope, fp: fp}
		if existing, ok := names[key]; ok {
			return existing, false
		}
		o.hoistCounter++
		name := fmt.Sprintf("_HOIST_%d", o.hoistCounter)
		names[key] = name
		return name, true
	}

	insertDecl := func(targetScope int, name, exprText string) edit.Edit {
		body := st.Scopes[targetScope].Body
		pos := insertionPoint(body)
		return edit.Edit{Start: pos, End: pos, Replacement: "const " + name + " = " + exprText + "; ", Name: name}
	}

	walkAll(root, func(call *ts.Node) {
		if call.Kind() != "call_expression" {
			return
		}
		ann, ok := resolver.ResolveCall(call, source, table)
		if !ok {
			return
		}

		switch ann.Kind {
		case intrinsic.KindIntrinsicScope:
			args := callArgs(call)
			if len(args) != 1 {
				return
			}
			edits = append(edits, stripWrapper(call, args[0])...)

		case intrinsic.KindIntrinsicHoist:
			args := callArgs(call)
			if len(args) != 1 {
				return
			}
			argNode := args[0]
			if !hoistEnabled {
				edits = append(edits, stripWrapper(call, argNode)...)
				return
			}
			targetScope, ok := o.attemptHoist(argNode, st, source)
			if !ok {
				warnings = append(warnings, PassWarning{Pass: "hoist", Message: "hoist() candidate failed the hoist gates, left inline"})
				edits = append(edits, stripWrapper(call, argNode)...)
				return
			}
			fp := o.fingerprint(argNode, st, source)
			name, fresh := freshName(targetScope, fp)
			if fresh {
				edits = append(edits, insertDecl(targetScope, name, argNode.Utf8Text(source)))
			}
			edits = append(edits, edit.Edit{Start: call.StartByte(), End: call.EndByte(), Replacement: name})

		case intrinsic.KindExternFunction:
			if !hoistEnabled {
				return
			}
			args := callArgs(call)
			for i, argNode := range args {
				if !ann.ArgFlagsFor(i).Hoist {
					continue
				}
				targetScope, ok := o.attemptHoist(argNode, st, source)
				if !ok {
					warnings = append(warnings, PassWarning{Pass: "hoist", Message: "extern hoist-flagged argument failed the hoist gates, left inline"})
					continue
				}
				fp := o.fingerprint(argNode, st, source)
				name, fresh := freshName(targetScope, fp)
				if fresh {
					edits = append(edits, insertDecl(targetScope, name, argNode.Utf8Text(source)))
				}
				edits = append(edits, edit.Edit{Start: argNode.StartByte(), End: argNode.EndByte(), Replacement: name})
			}
		}
	})

	return edits, warnings
}

func markScopeFlaggedArgs(call *ts.Node, ann intrinsic.CallAnnotation, st *ast.SymbolTable) {
	args := callArgs(call)
	for i, argNode := range args {
		if !ann.ArgFlagsFor(i).Scope {
			continue
		}
		switch argNode.Kind() {
		case "arrow_function", "function_expression":
			if idx, ok := st.ScopeForNode(argNode); ok {
				st.Scopes[idx].IsHoistScope = true
			}
		}
	}
}

// attemptHoist runs §4.2's type/parenthesization/conditional/reachability
// gates for candidate expr and returns the chosen target scope.
func (o *Optimizer) attemptHoist(expr *ts.Node, st *ast.SymbolTable, source []byte) (int, bool) {
	if expr.Kind() == "parenthesized_expression" {
		return 0, false // explicit parens opt the candidate out of hoisting
	}
	if !hoistableKinds[expr.Kind()] {
		return 0, false
	}

	// The narrow "own enclosing function acting as innermost hoist scope"
	// relaxation described alongside the conditional gate is deliberately
	// not implemented — see DESIGN.md. The gate always applies here, which
	// is the conservative direction to simplify in: it can leave a
	// theoretically-safe candidate uninlined, never hoist an unsafe one.
	free := st.FreeIdentifiers(expr)
	chain := st.HoistScopeChain(expr)
	for _, candidate := range chain {
		if !reachableFromScope(free, candidate, st, source) {
			continue
		}
		if !conditionalGateBlocks(expr, st.Scopes[candidate].Node, source) {
			return candidate, true
		}
	}
	return 0, false
}

func reachableFromScope(free []ast.FreeIdentifier, candidate int, st *ast.SymbolTable, source []byte) bool {
	for _, fi := range free {
		if !fi.Bound {
			continue // unbound names resolve identically from anywhere
		}
		resolved, ok := st.ResolveFromScope(candidate, fi.Ref.Utf8Text(source))
		if !ok || resolved != fi.Binding {
			return false
		}
	}
	return true
}

// conditionalGateBlocks walks from expr up to (excluding) targetNode and
// reports whether the path crosses a conditional construct: a ternary, an
// if/switch branch, or the right-hand side of a short-circuiting `&&` /
// `||` / `??`. Crossing one means the expression isn't guaranteed to run
// unconditionally, so lifting it to targetNode would change evaluation
// count/order and is blocked.
func conditionalGateBlocks(expr *ts.Node, targetNode *ts.Node, source []byte) bool {
	for n := expr.Parent(); n != nil && !sameNode(n, targetNode); n = n.Parent() {
		switch n.Kind() {
		case "ternary_expression", "if_statement", "switch_case", "switch_default":
			return true
		}
		if p := n.Parent(); p != nil && p.Kind() == "binary_expression" {
			op := p.ChildByFieldName("operator")
			right := p.ChildByFieldName("right")
			if op != nil && right != nil && sameNode(right, n) {
				switch op.Utf8Text(source) {
				case "&&", "||", "??":
					return true
				}
			}
		}
	}
	return false
}
