package optimizer

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/oveo-dev/oveo/pkg/ast"
	"github.com/oveo-dev/oveo/pkg/edit"
)

// globalNode is one entry in a built-in global table: a top-level name (or
// a property reached by a chain from one) and the set of its own properties
// the table additionally knows about. A nil children map means the table
// doesn't model anything deeper — the covered chain simply stops there.
type globalNode struct {
	children map[string]*globalNode
}

func leaf() *globalNode { return &globalNode{} }

func node(children map[string]*globalNode) *globalNode { return &globalNode{children: children} }

// builtinGlobalTables are the "js" and "web" tables §4.5 refers to: a
// representative, not exhaustive, slice of each environment's well-known
// globals and their statically-known members.
var builtinGlobalTables = map[string]map[string]*globalNode{
	"js": {
		"Array":      node(map[string]*globalNode{"isArray": leaf(), "from": leaf(), "of": leaf()}),
		"Object":     node(map[string]*globalNode{"keys": leaf(), "values": leaf(), "entries": leaf(), "assign": leaf(), "freeze": leaf(), "fromEntries": leaf()}),
		"Math":       node(map[string]*globalNode{"max": leaf(), "min": leaf(), "floor": leaf(), "ceil": leaf(), "round": leaf(), "random": leaf(), "abs": leaf(), "pow": leaf(), "sqrt": leaf()}),
		"JSON":       node(map[string]*globalNode{"parse": leaf(), "stringify": leaf()}),
		"Number":     node(map[string]*globalNode{"isInteger": leaf(), "isFinite": leaf(), "parseFloat": leaf(), "parseInt": leaf()}),
		"String":     node(map[string]*globalNode{"fromCharCode": leaf()}),
		"Reflect":    node(map[string]*globalNode{"ownKeys": leaf(), "has": leaf(), "get": leaf(), "set": leaf()}),
		"Symbol":     node(map[string]*globalNode{"iterator": leaf(), "for": leaf()}),
		"Promise":    node(map[string]*globalNode{"resolve": leaf(), "reject": leaf(), "all": leaf(), "race": leaf(), "allSettled": leaf()}),
		"Boolean":    leaf(),
		"RegExp":     leaf(),
		"Map":        leaf(),
		"Set":        leaf(),
		"WeakMap":    leaf(),
		"WeakSet":    leaf(),
		"Date":       node(map[string]*globalNode{"now": leaf()}),
	},
	"web": {
		"console":          node(map[string]*globalNode{"log": leaf(), "warn": leaf(), "error": leaf(), "debug": leaf(), "info": leaf()}),
		"document":         node(map[string]*globalNode{"getElementById": leaf(), "querySelector": leaf(), "querySelectorAll": leaf(), "createElement": leaf()}),
		"window":           node(map[string]*globalNode{"location": leaf(), "fetch": leaf(), "localStorage": leaf(), "sessionStorage": leaf()}),
		"navigator":        node(map[string]*globalNode{"userAgent": leaf(), "clipboard": leaf()}),
		"localStorage":     node(map[string]*globalNode{"getItem": leaf(), "setItem": leaf(), "removeItem": leaf()}),
		"sessionStorage":   node(map[string]*globalNode{"getItem": leaf(), "setItem": leaf(), "removeItem": leaf()}),
		"fetch":            leaf(),
		"URL":              leaf(),
		"URLSearchParams":  leaf(),
		"Headers":          leaf(),
	},
}

func mergedGlobalTable(include []string) map[string]*globalNode {
	merged := make(map[string]*globalNode)
	for _, tableName := range include {
		table, ok := builtinGlobalTables[tableName]
		if !ok {
			continue
		}
		for name, n := range table {
			merged[name] = n
		}
	}
	return merged
}

// runGlobals implements §4.5's global-reference-lifting pass: a chain of
// member accesses fully covered by the table (Array.isArray, window.
// location) is rewritten into chained `const _GLOBAL_n` declarations at
// program scope, with deeper chains reusing an already-lifted prefix.
func (o *Optimizer) runGlobals(root *ts.Node, source []byte, st *ast.SymbolTable) ([]edit.Edit, []PassWarning) {
	table := mergedGlobalTable(o.opts.Globals.Include)
	if len(table) == 0 {
		return nil, nil
	}

	written := writtenGlobalNames(root, source, st)

	aliases := make(map[string]string) // dotted chain prefix -> _GLOBAL_n name
	var edits []edit.Edit
	var warnings []PassWarning

	ensureAlias := func(chainKey, exprText string) string {
		if existing, ok := aliases[chainKey]; ok {
			return existing
		}
		o.globalCounter++
		name := fmt.Sprintf("_GLOBAL_%d", o.globalCounter)
		aliases[chainKey] = name
		programScope := 0
		body := st.Scopes[programScope].Body
		pos := insertionPoint(body)
		edits = append(edits, edit.Edit{Start: pos, End: pos, Replacement: "const " + name + " = " + exprText + "; ", Name: name})
		return name
	}

	walkAll(root, func(n *ts.Node) {
		if n.Kind() != "identifier" {
			return
		}
		name := n.Utf8Text(source)
		entry, ok := table[name]
		if !ok || written[name] {
			return
		}
		if _, bound := st.Resolve(n); bound {
			return // shadowed by an in-file declaration at this occurrence
		}
		if isPropertyOrBindingPosition(n) {
			return
		}

		// Walk the chain one property at a time, aliasing every matched
		// prefix along the way: the root name gets its own alias first
		// (reused by every sibling property), then each deeper prefix
		// chains off the previous level's alias rather than the raw
		// source text, so `Array.isArray` and `Array.from` both reuse
		// `_GLOBAL_1 = Array` instead of re-emitting `Array` verbatim.
		chainKey := name
		covered := n
		current := entry
		alias := ensureAlias(chainKey, name)
		for current.children != nil {
			parent := covered.Parent()
			if parent == nil || parent.Kind() != "member_expression" {
				break
			}
			if parent.ChildByFieldName("object") == nil || parent.ChildByFieldName("object").StartByte() != covered.StartByte() {
				break
			}
			prop := parent.ChildByFieldName("property")
			if prop == nil || prop.Kind() != "property_identifier" {
				break
			}
			next, ok := current.children[prop.Utf8Text(source)]
			if !ok {
				break
			}
			propName := prop.Utf8Text(source)
			chainKey = chainKey + "." + propName
			alias = ensureAlias(chainKey, alias+"."+propName)
			covered = parent
			current = next
		}

		edits = append(edits, edit.Edit{Start: n.StartByte(), End: covered.EndByte(), Replacement: alias})
	})

	return edits, warnings
}

func isPropertyOrBindingPosition(n *ts.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	if parent.Kind() == "member_expression" && parent.ChildByFieldName("property") != nil && parent.ChildByFieldName("property").StartByte() == n.StartByte() {
		return true
	}
	return false
}

// writtenGlobalNames finds every bare name in the chunk assigned to
// directly — `console = x` or `console += x` — so the pass can exclude
// that name everywhere rather than rewrite some occurrences and silently
// leave a stale alias diverge from a later write.
func writtenGlobalNames(root *ts.Node, source []byte, st *ast.SymbolTable) map[string]bool {
	written := make(map[string]bool)
	walkAll(root, func(n *ts.Node) {
		if n.Kind() != "assignment_expression" {
			return
		}
		left := n.ChildByFieldName("left")
		if left == nil || left.Kind() != "identifier" {
			return
		}
		if _, bound := st.Resolve(left); bound {
			return
		}
		written[left.Utf8Text(source)] = true
	})
	return written
}

// runSingletons implements §4.4's tail rule grouped with globals in the
// pass inventory: every `new TextEncoder()` / `new TextDecoder()` call
// anywhere in the chunk, regardless of scope, is unified into one shared
// constant per class, declared at program scope.
func (o *Optimizer) runSingletons(root *ts.Node, source []byte, st *ast.SymbolTable) ([]edit.Edit, []PassWarning) {
	classes := map[string][]*ts.Node{"TextEncoder": nil, "TextDecoder": nil}

	walkAll(root, func(n *ts.Node) {
		if n.Kind() != "new_expression" {
			return
		}
		ctor := n.ChildByFieldName("constructor")
		if ctor == nil || ctor.Kind() != "identifier" {
			return
		}
		name := ctor.Utf8Text(source)
		if _, ok := classes[name]; !ok {
			return
		}
		if _, bound := st.Resolve(ctor); bound {
			return // shadowed by a local declaration, not the global constructor
		}
		args := n.ChildByFieldName("arguments")
		if args != nil && args.NamedChildCount() > 0 {
			return // only the zero-argument form is a safe singleton
		}
		classes[name] = append(classes[name], n)
	})

	var edits []edit.Edit
	for _, name := range []string{"TextEncoder", "TextDecoder"} {
		occs := classes[name]
		if len(occs) == 0 {
			continue
		}
		o.singletonCounter++
		alias := fmt.Sprintf("_SINGLETON_%d", o.singletonCounter)
		programScope := 0
		body := st.Scopes[programScope].Body
		pos := insertionPoint(body)
		edits = append(edits, edit.Edit{Start: pos, End: pos, Replacement: "const " + alias + " = new " + name + "(); ", Name: alias})
		for _, occ := range occs {
			edits = append(edits, edit.Edit{Start: occ.StartByte(), End: occ.EndByte(), Replacement: alias})
		}
	}
	return edits, nil
}
