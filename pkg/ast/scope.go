// Package ast builds the scope/symbol model the passes reason over: a
// lexical scope tree and a binding table, both represented as dense,
// index-addressed slices rather than a pointer graph threaded through the
// tree-sitter tree. Cross-references between AST nodes, scopes, and
// bindings are plain integer indices into these slices, so comparing two
// identifier references for "same declaration" is an integer comparison,
// not a pointer walk — this is what makes dedupe fingerprinting on resolved
// identifiers cheap.
//
// The tree-sitter parse tree itself is never mutated; this package only
// reads it to build the side tables.
package ast

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// ScopeKind classifies a lexical scope.
type ScopeKind int

const (
	ScopeProgram ScopeKind = iota
	ScopeFunction
	ScopeBlock
	ScopeCatch
)

// Scope is one lexical scope. Body, when non-nil, is the statement-block-like
// node whose direct children are the ordered statement list a lifted
// `const` declaration can be inserted into (§3's "ordered list of
// statements/declarations available for insertion").
type Scope struct {
	Kind   ScopeKind
	Node   *ts.Node
	Body   *ts.Node
	Parent int // index into SymbolTable.Scopes, -1 for the program scope

	// IsHoistScope is set by the intrinsic resolver after parsing: true for
	// the program scope always, and for a function scope that is the
	// immediate argument of a call annotated with flag "scope" (§3's hoist
	// scope definition). Left false until that pass runs.
	IsHoistScope bool

	bindings map[string]int // name -> index into SymbolTable.Bindings, innermost wins
}

// Binding is one declared name.
type Binding struct {
	Name  string
	Scope int // index into SymbolTable.Scopes this name is visible from
	Node  *ts.Node
}

// SymbolTable is the complete scope/binding model for one parse.
type SymbolTable struct {
	Scopes      []Scope
	Bindings    []Binding
	source      []byte
	nodeScope   map[nodeKey]int // byte-range key -> enclosing scope index
	scopeByNode map[nodeKey]int // byte-range key of a scope's own Node -> scope index
}

type nodeKey struct {
	start, end uint32
}

func keyOf(n *ts.Node) nodeKey {
	return nodeKey{start: uint32(n.StartByte()), end: uint32(n.EndByte())}
}

// Build walks root and produces its scope/binding model.
func Build(root *ts.Node, source []byte) *SymbolTable {
	st := &SymbolTable{source: source, nodeScope: make(map[nodeKey]int), scopeByNode: make(map[nodeKey]int)}
	st.walk(root, -1)
	return st
}

func (st *SymbolTable) pushScope(kind ScopeKind, node, body *ts.Node, parent int) int {
	idx := len(st.Scopes)
	st.Scopes = append(st.Scopes, Scope{
		Kind:         kind,
		Node:         node,
		Body:         body,
		Parent:       parent,
		IsHoistScope: kind == ScopeProgram,
		bindings:     make(map[string]int),
	})
	if node != nil {
		st.scopeByNode[keyOf(node)] = idx
	}
	return idx
}

// ScopeForNode returns the index of the scope that node itself introduces
// (as opposed to EnclosingScope, which returns the scope node lives in).
// Used to mark a function literal's own scope as a hoist scope once the
// intrinsic resolver determines it was passed to a `scope`-flagged call.
func (st *SymbolTable) ScopeForNode(node *ts.Node) (int, bool) {
	idx, ok := st.scopeByNode[keyOf(node)]
	return idx, ok
}

// LCA returns the lowest common ancestor scope of scopes, i.e. the deepest
// scope that is an ancestor of (or equal to) every one of them. Used by the
// dedupe pass to find the narrowest scope a lifted declaration can live in
// while staying visible to every occurrence.
func (st *SymbolTable) LCA(scopes []int) (int, bool) {
	if len(scopes) == 0 {
		return 0, false
	}
	chain := func(s int) []int {
		var c []int
		for s >= 0 {
			c = append(c, s)
			s = st.Scopes[s].Parent
		}
		return c
	}
	common := chain(scopes[0])
	for _, s := range scopes[1:] {
		inOther := make(map[int]bool)
		for _, a := range chain(s) {
			inOther[a] = true
		}
		var filtered []int
		for _, a := range common {
			if inOther[a] {
				filtered = append(filtered, a)
			}
		}
		common = filtered
	}
	if len(common) == 0 {
		return 0, false
	}
	// common is ordered innermost-first for scopes[0]'s own chain; the first
	// surviving entry is the deepest shared ancestor.
	return common[0], true
}

func (st *SymbolTable) bind(name string, scopeIdx int, node *ts.Node) {
	if name == "" {
		return
	}
	bidx := len(st.Bindings)
	st.Bindings = append(st.Bindings, Binding{Name: name, Scope: scopeIdx, Node: node})
	st.Scopes[scopeIdx].bindings[name] = bidx
}

// text is a small convenience wrapper around Utf8Text.
func (st *SymbolTable) text(n *ts.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(st.source)
}

func (st *SymbolTable) walk(node *ts.Node, scopeIdx int) {
	if node == nil {
		return
	}
	st.nodeScope[keyOf(node)] = scopeIdx

	switch node.Kind() {
	case "program":
		newScope := st.pushScope(ScopeProgram, node, node, -1)
		st.nodeScope[keyOf(node)] = newScope
		st.walkChildren(node, newScope)
		return

	case "function_declaration", "function_expression", "generator_function_declaration",
		"generator_function", "method_definition", "arrow_function":
		newScope := st.pushScope(ScopeFunction, node, nil, scopeIdx)
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			st.bind(st.text(nameNode), scopeIdx, node)
		}
		if params := node.ChildByFieldName("parameters"); params != nil {
			st.bindParameterList(params, newScope)
			st.walk(params, newScope)
		} else if params := node.ChildByFieldName("parameter"); params != nil {
			// Arrow functions with a single bare identifier parameter:
			// `x => ...` — tree-sitter exposes it directly, not as a list.
			st.bindPattern(params, newScope)
			st.walk(params, newScope)
		}
		body := node.ChildByFieldName("body")
		if body != nil {
			if body.Kind() == "statement_block" {
				st.Scopes[newScope].Body = body
				st.nodeScope[keyOf(body)] = newScope
				st.walkChildren(body, newScope)
			} else {
				st.walk(body, newScope)
			}
		}
		return

	case "catch_clause":
		newScope := st.pushScope(ScopeCatch, node, nil, scopeIdx)
		if param := node.ChildByFieldName("parameter"); param != nil {
			st.bindPattern(param, newScope)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			st.Scopes[newScope].Body = body
			st.nodeScope[keyOf(body)] = newScope
			st.walkChildren(body, newScope)
		}
		return

	case "statement_block":
		newScope := st.pushScope(ScopeBlock, node, node, scopeIdx)
		st.nodeScope[keyOf(node)] = newScope
		st.walkChildren(node, newScope)
		return

	case "class_declaration", "class":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			st.bind(st.text(nameNode), scopeIdx, node)
		}
		st.walkChildren(node, scopeIdx)
		return

	case "variable_declarator":
		nameNode := node.ChildByFieldName("name")
		target := scopeIdx
		if isVarDeclarator(node) {
			target = st.nearestFunctionOrProgramScope(scopeIdx)
		}
		st.bindPattern(nameNode, target)
		st.walkChildren(node, scopeIdx)
		return

	case "import_statement":
		st.bindImportStatement(node, st.nearestFunctionOrProgramScope(scopeIdx))
		st.walkChildren(node, scopeIdx)
		return
	}

	st.walkChildren(node, scopeIdx)
}

func (st *SymbolTable) walkChildren(node *ts.Node, scopeIdx int) {
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		st.walk(node.Child(i), scopeIdx)
	}
}

func isVarDeclarator(declarator *ts.Node) bool {
	parent := declarator.Parent()
	return parent != nil && parent.Kind() == "variable_declaration"
}

func (st *SymbolTable) nearestFunctionOrProgramScope(scopeIdx int) int {
	for scopeIdx >= 0 {
		k := st.Scopes[scopeIdx].Kind
		if k == ScopeFunction || k == ScopeProgram {
			return scopeIdx
		}
		scopeIdx = st.Scopes[scopeIdx].Parent
	}
	return 0
}

// bindPattern binds every identifier introduced by a (possibly destructuring)
// binding pattern into scopeIdx.
func (st *SymbolTable) bindPattern(node *ts.Node, scopeIdx int) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		st.bind(st.text(node), scopeIdx, node)
	case "assignment_pattern":
		st.bindPattern(node.ChildByFieldName("left"), scopeIdx)
	case "rest_pattern":
		count := node.NamedChildCount()
		for i := uint(0); i < count; i++ {
			st.bindPattern(node.NamedChild(i), scopeIdx)
		}
	case "array_pattern", "object_pattern":
		count := node.NamedChildCount()
		for i := uint(0); i < count; i++ {
			child := node.NamedChild(i)
			if child.Kind() == "pair_pattern" {
				st.bindPattern(child.ChildByFieldName("value"), scopeIdx)
				continue
			}
			st.bindPattern(child, scopeIdx)
		}
	}
}

func (st *SymbolTable) bindParameterList(params *ts.Node, scopeIdx int) {
	count := params.NamedChildCount()
	for i := uint(0); i < count; i++ {
		p := params.NamedChild(i)
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
			st.bindPattern(p.ChildByFieldName("pattern"), scopeIdx)
		default:
			st.bindPattern(p, scopeIdx)
		}
	}
}

// bindImportStatement binds every local name an import introduces —
// default import, namespace import, and named-import locals (honoring
// aliases) — into programScope. Intrinsic/specifier classification is the
// intrinsic resolver's job; this is only for shadow-detection (globals
// pass) and general resolution.
func (st *SymbolTable) bindImportStatement(node *ts.Node, programScope int) {
	clause := node.ChildByFieldName("import") // tree-sitter-javascript names differ by grammar version
	if clause == nil {
		// Fall back to scanning children directly.
		count := node.NamedChildCount()
		for i := uint(0); i < count; i++ {
			st.bindImportClausePart(node.NamedChild(i), programScope)
		}
		return
	}
	st.bindImportClausePart(clause, programScope)
}

func (st *SymbolTable) bindImportClausePart(node *ts.Node, programScope int) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier":
		st.bind(st.text(node), programScope, node)
	case "namespace_import":
		count := node.NamedChildCount()
		for i := uint(0); i < count; i++ {
			st.bindImportClausePart(node.NamedChild(i), programScope)
		}
	case "named_imports":
		count := node.NamedChildCount()
		for i := uint(0); i < count; i++ {
			st.bindImportClausePart(node.NamedChild(i), programScope)
		}
	case "import_specifier":
		local := node.ChildByFieldName("alias")
		if local == nil {
			local = node.ChildByFieldName("name")
		}
		if local != nil {
			st.bind(st.text(local), programScope, node)
		}
	case "import_clause":
		count := node.NamedChildCount()
		for i := uint(0); i < count; i++ {
			st.bindImportClausePart(node.NamedChild(i), programScope)
		}
	}
}

// EnclosingScope returns the scope index whose walk assigned node; ok is
// false if node was never visited (not part of the tree Build walked).
func (st *SymbolTable) EnclosingScope(node *ts.Node) (int, bool) {
	idx, ok := st.nodeScope[keyOf(node)]
	return idx, ok
}

// ResolveFromScope looks up name starting at scopeIdx and walking outward
// through parent scopes, returning the first matching binding's index.
func (st *SymbolTable) ResolveFromScope(scopeIdx int, name string) (int, bool) {
	for scopeIdx >= 0 {
		if bidx, ok := st.Scopes[scopeIdx].bindings[name]; ok {
			return bidx, true
		}
		scopeIdx = st.Scopes[scopeIdx].Parent
	}
	return 0, false
}

// Resolve resolves an identifier reference node to the binding it refers to,
// using the scope enclosing that node. ok is false for a free/global
// reference (no in-file binding), matching §4.5's "unbound in every
// enclosing scope".
func (st *SymbolTable) Resolve(identifier *ts.Node) (int, bool) {
	scopeIdx, ok := st.EnclosingScope(identifier)
	if !ok {
		return 0, false
	}
	return st.ResolveFromScope(scopeIdx, identifier.Utf8Text(st.source))
}

// HoistScopeChain returns the indices of every hoist scope enclosing node,
// ordered outermost first — index 0 is the outermost (program), last is the
// innermost enclosing hoist scope.
func (st *SymbolTable) HoistScopeChain(node *ts.Node) []int {
	scopeIdx, ok := st.EnclosingScope(node)
	if !ok {
		return nil
	}
	var innerToOuter []int
	for scopeIdx >= 0 {
		if st.Scopes[scopeIdx].IsHoistScope {
			innerToOuter = append(innerToOuter, scopeIdx)
		}
		scopeIdx = st.Scopes[scopeIdx].Parent
	}
	// reverse to outermost-first
	for i, j := 0, len(innerToOuter)-1; i < j; i, j = i+1, j-1 {
		innerToOuter[i], innerToOuter[j] = innerToOuter[j], innerToOuter[i]
	}
	return innerToOuter
}

// IsAncestorScope reports whether candidate is scopeIdx itself or one of its
// ancestors.
func (st *SymbolTable) IsAncestorScope(candidate, scopeIdx int) bool {
	for scopeIdx >= 0 {
		if scopeIdx == candidate {
			return true
		}
		scopeIdx = st.Scopes[scopeIdx].Parent
	}
	return false
}

// NodeWithinScope reports whether node's byte range falls within the scope's
// node range — used to decide whether a resolved binding's declaration is
// "bound inside" a candidate expression (free-identifier computation).
func NodeWithinScope(node, container *ts.Node) bool {
	return node.StartByte() >= container.StartByte() && node.EndByte() <= container.EndByte()
}
