// Package intrinsic identifies calls into the built-in `oveo` module and
// into extern-declared functions, and classifies identifier reads that
// resolve to extern const exports — the annotations every pass downstream
// of parsing consumes.
package intrinsic

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/oveo-dev/oveo/pkg/extern"
)

// Specifier is the virtual module specifier whose exports are build-time
// annotations and runtime identity functions.
const Specifier = "oveo"

// Kind classifies a resolved call or reference.
type Kind int

const (
	KindNone Kind = iota
	KindIntrinsicHoist
	KindIntrinsicScope
	KindIntrinsicDedupe
	KindIntrinsicKey
	KindExternFunction
	KindExternConst
)

// ImportRef is one import table entry: the specifier and exported name a
// local binding came from.
type ImportRef struct {
	Specifier    string
	ExportedName string
	IsNamespace  bool
}

// ImportTable maps a local binding name to where it was imported from.
type ImportTable map[string]ImportRef

// BuildImportTable scans root's top-level import declarations and returns
// the local-binding → (specifier, exported-name) table §4.1 describes.
// Renamed imports (`import { hoist as h }`) resolve by their local alias;
// namespace imports (`import * as ns`) are recorded with IsNamespace set
// and ExportedName empty, since a member access off them (`ns.hoist`)
// needs a second lookup step the caller performs.
func BuildImportTable(root *ts.Node, source []byte) ImportTable {
	table := make(ImportTable)
	var walk func(*ts.Node)
	walk = func(n *ts.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "import_statement" {
			collectImportStatement(n, source, table)
		}
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return table
}

func collectImportStatement(stmt *ts.Node, source []byte, table ImportTable) {
	sourceNode := stmt.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	specifier := unquote(sourceNode.Utf8Text(source))

	count := stmt.NamedChildCount()
	for i := uint(0); i < count; i++ {
		collectClausePart(stmt.NamedChild(i), source, specifier, table)
	}
}

func collectClausePart(n *ts.Node, source []byte, specifier string, table ImportTable) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "identifier":
		// Default import: local name maps to the "default" export.
		table[n.Utf8Text(source)] = ImportRef{Specifier: specifier, ExportedName: "default"}
	case "namespace_import":
		if ident := firstIdentifier(n); ident != nil {
			table[ident.Utf8Text(source)] = ImportRef{Specifier: specifier, IsNamespace: true}
		}
	case "named_imports":
		count := n.NamedChildCount()
		for i := uint(0); i < count; i++ {
			collectClausePart(n.NamedChild(i), source, specifier, table)
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
		table[local.Utf8Text(source)] = ImportRef{Specifier: specifier, ExportedName: name.Utf8Text(source)}
	case "import_clause":
		count := n.NamedChildCount()
		for i := uint(0); i < count; i++ {
			collectClausePart(n.NamedChild(i), source, specifier, table)
		}
	}
}

func firstIdentifier(n *ts.Node) *ts.Node {
	if n.Kind() == "identifier" {
		return n
	}
	count := n.NamedChildCount()
	for i := uint(0); i < count; i++ {
		if found := firstIdentifier(n.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}

// CallAnnotation is what ResolveCall attaches to a call expression.
type CallAnnotation struct {
	Kind Kind
	// ArgFlags holds per-positional-argument flags for extern function
	// calls and the oveo built-ins (hoist/scope flag their single argument
	// at index 0, per §4.2).
	ArgFlags []extern.ArgSpec
}

// ArgFlagsFor returns the flags for argument i, or the empty ArgSpec if i is
// out of range (extern descriptors need not cover every positional arg).
func (a CallAnnotation) ArgFlagsFor(i int) extern.ArgSpec {
	if i < 0 || i >= len(a.ArgFlags) {
		return extern.ArgSpec{}
	}
	return a.ArgFlags[i]
}

// Resolver classifies call expressions and identifier reads against an
// import table and an extern registry.
type Resolver struct {
	registry *extern.Registry
}

// NewResolver returns a resolver backed by registry (may be empty).
func NewResolver(registry *extern.Registry) *Resolver {
	if registry == nil {
		registry = extern.NewRegistry()
	}
	return &Resolver{registry: registry}
}

// ResolveCall classifies a call expression's callee. Only calls are
// considered — a reference to an intrinsic stored in a variable or passed
// as an argument is never in call position and this function is simply not
// invoked for it (callers only call ResolveCall on call_expression nodes).
func (r *Resolver) ResolveCall(call *ts.Node, source []byte, table ImportTable) (CallAnnotation, bool) {
	callee := call.ChildByFieldName("function")
	if callee == nil {
		return CallAnnotation{}, false
	}

	if callee.Kind() == "identifier" {
		name := callee.Utf8Text(source)
		ref, ok := table[name]
		if !ok {
			return CallAnnotation{}, false
		}
		if ref.Specifier == Specifier {
			return intrinsicAnnotation(ref.ExportedName)
		}
		return r.externFunctionAnnotation(ref, nil)
	}

	if callee.Kind() == "member_expression" {
		path, ok := memberPath(callee, source)
		if !ok || len(path) == 0 {
			return CallAnnotation{}, false
		}
		ref, ok := table[path[0]]
		if !ok {
			return CallAnnotation{}, false
		}
		return r.externFunctionAnnotation(ref, path[1:])
	}

	return CallAnnotation{}, false
}

func intrinsicAnnotation(exportedName string) (CallAnnotation, bool) {
	switch exportedName {
	case "hoist":
		return CallAnnotation{Kind: KindIntrinsicHoist, ArgFlags: []extern.ArgSpec{{Hoist: true}}}, true
	case "scope":
		return CallAnnotation{Kind: KindIntrinsicScope, ArgFlags: []extern.ArgSpec{{Scope: true}}}, true
	case "dedupe":
		return CallAnnotation{Kind: KindIntrinsicDedupe}, true
	case "key":
		return CallAnnotation{Kind: KindIntrinsicKey}, true
	default:
		return CallAnnotation{}, false
	}
}

// externFunctionAnnotation resolves ref (and, if non-empty, a chain of
// further namespace property names) against the registry to a function
// descriptor.
func (r *Resolver) externFunctionAnnotation(ref ImportRef, chain []string) (CallAnnotation, bool) {
	mod, ok := r.registry.Resolve(ref.Specifier)
	if !ok {
		return CallAnnotation{}, false
	}

	var d *extern.Descriptor
	if ref.IsNamespace {
		if len(chain) == 0 {
			return CallAnnotation{}, false
		}
		d, ok = mod.Export(chain[0])
		if !ok {
			return CallAnnotation{}, false
		}
		chain = chain[1:]
	} else {
		d, ok = mod.Export(ref.ExportedName)
		if !ok {
			return CallAnnotation{}, false
		}
	}

	for _, name := range chain {
		d, ok = d.Namespace(name)
		if !ok {
			return CallAnnotation{}, false
		}
	}

	if d.Kind != extern.KindFunction {
		return CallAnnotation{}, false
	}
	return CallAnnotation{Kind: KindExternFunction, ArgFlags: d.Arguments}, true
}

// ResolveConstRead classifies a plain identifier reference (not necessarily
// in call position) that resolves to an extern const export. Used by the
// inline-extern pass, which replaces every such read, not just call-site
// arguments.
func (r *Resolver) ResolveConstRead(ref ImportRef) (*extern.Descriptor, bool) {
	mod, ok := r.registry.Resolve(ref.Specifier)
	if !ok {
		return nil, false
	}
	d, ok := mod.Export(ref.ExportedName)
	if !ok || d.Kind != extern.KindConst {
		return nil, false
	}
	return d, true
}

// memberPath flattens a.b.c member_expression chain into ["a","b","c"],
// requiring every step be a plain (non-computed) property access.
func memberPath(node *ts.Node, source []byte) ([]string, bool) {
	var parts []string
	for node.Kind() == "member_expression" {
		prop := node.ChildByFieldName("property")
		if prop == nil || prop.Kind() != "property_identifier" {
			return nil, false
		}
		parts = append([]string{prop.Utf8Text(source)}, parts...)
		node = node.ChildByFieldName("object")
		if node == nil {
			return nil, false
		}
	}
	if node.Kind() != "identifier" {
		return nil, false
	}
	parts = append([]string{node.Utf8Text(source)}, parts...)
	return parts, true
}
