package optimizer

import (
	"regexp"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/oveo-dev/oveo/pkg/edit"
	"github.com/oveo-dev/oveo/pkg/intrinsic"
	"github.com/oveo-dev/oveo/pkg/propmap"
)

// runRename implements §4.6: every syntactic property-name position —
// object-literal keys (including method shorthand), member-expression
// properties, string-literal computed-member indices, and class member
// names — is renamed if the property map already has an entry for it, or
// if it matches the configured pattern (in which case the allocator mints
// one). Private class members (`#name`, tree-sitter's distinct
// private_property_identifier kind) and destructuring patterns are never
// touched, matching the spec's carve-outs.
//
// key() wraps a string literal that names a property outside any of those
// syntactic positions (a dynamic subscript built from a variable, say
// `obj[key("apiKey")]`) so the renamer can still reach it: the call is
// always stripped to its argument, renamed first if the literal resolves
// against the map/pattern.
func (o *Optimizer) runRename(root *ts.Node, source []byte, table intrinsic.ImportTable, resolver *intrinsic.Resolver, pm *propmap.PropertyMap, pattern *regexp.Regexp, enabled bool) []edit.Edit {
	var edits []edit.Edit

	resolve := func(original string) (string, bool) {
		if !enabled {
			return "", false
		}
		if renamed, ok := pm.Lookup(original); ok {
			return renamed, true
		}
		if pattern != nil && pattern.MatchString(original) {
			return pm.Allocate(original), true
		}
		return "", false
	}

	walkAll(root, func(n *ts.Node) {
		switch n.Kind() {
		case "call_expression":
			ann, ok := resolver.ResolveCall(n, source, table)
			if !ok || ann.Kind != intrinsic.KindIntrinsicKey {
				return
			}
			args := callArgs(n)
			if len(args) != 1 {
				return
			}
			arg := args[0]
			if arg.Kind() != "string" {
				edits = append(edits, stripWrapper(n, arg)...)
				return
			}
			content, quote, ok := stringLiteralContent(arg, source)
			if !ok {
				edits = append(edits, stripWrapper(n, arg)...)
				return
			}
			if renamed, ok := resolve(content); ok {
				edits = append(edits, edit.Edit{Start: n.StartByte(), End: n.EndByte(), Replacement: quote + renamed + quote})
				return
			}
			edits = append(edits, stripWrapper(n, arg)...)

		case "pair":
			if !enabled {
				return
			}
			key := n.ChildByFieldName("key")
			if key != nil && key.Kind() == "property_identifier" {
				if renamed, ok := resolve(key.Utf8Text(source)); ok {
					edits = append(edits, edit.Edit{Start: key.StartByte(), End: key.EndByte(), Replacement: renamed})
				}
			}

		case "shorthand_property_identifier":
			if !enabled {
				return
			}
			original := n.Utf8Text(source)
			if renamed, ok := resolve(original); ok {
				// The shorthand sugar `{a}` binds the key name to the value
				// name; renaming only the key requires expanding it back to
				// explicit `renamed: original` so the value reference stays
				// intact.
				edits = append(edits, edit.Edit{Start: n.StartByte(), End: n.EndByte(), Replacement: renamed + ": " + original})
			}

		case "method_definition", "field_definition", "public_field_definition":
			if !enabled {
				return
			}
			name := n.ChildByFieldName("name")
			if name != nil && name.Kind() == "property_identifier" {
				if renamed, ok := resolve(name.Utf8Text(source)); ok {
					edits = append(edits, edit.Edit{Start: name.StartByte(), End: name.EndByte(), Replacement: renamed})
				}
			}

		case "member_expression":
			if !enabled {
				return
			}
			prop := n.ChildByFieldName("property")
			if prop != nil && prop.Kind() == "property_identifier" {
				if renamed, ok := resolve(prop.Utf8Text(source)); ok {
					edits = append(edits, edit.Edit{Start: prop.StartByte(), End: prop.EndByte(), Replacement: renamed})
				}
			}

		case "subscript_expression":
			if !enabled {
				return
			}
			idx := n.ChildByFieldName("index")
			if idx != nil && idx.Kind() == "string" {
				content, quote, ok := stringLiteralContent(idx, source)
				if ok {
					if renamed, ok := resolve(content); ok {
						edits = append(edits, edit.Edit{Start: idx.StartByte(), End: idx.EndByte(), Replacement: quote + renamed + quote})
					}
				}
			}
		}
	})

	return edits
}

// stringLiteralContent extracts a string node's content (without its
// surrounding quotes) and the quote character used, rejecting anything with
// an escape sequence or interpolation — only a literal, unescaped property
// name is safe to match against the map/pattern as-is.
func stringLiteralContent(n *ts.Node, source []byte) (content string, quote string, ok bool) {
	raw := n.Utf8Text(source)
	if len(raw) < 2 {
		return "", "", false
	}
	q := raw[0:1]
	if q != `"` && q != `'` {
		return "", "", false
	}
	inner := raw[1 : len(raw)-1]
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' {
			return "", "", false
		}
	}
	return inner, q, true
}
