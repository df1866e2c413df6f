// Package optimizer implements the six semantic optimization passes — hoist,
// dedupe, globals, singletons, inline-extern, rename-properties — as a
// parse-once/splice-once pipeline over tree-sitter's JS/TS grammars.
//
// The engine never mutates a parse tree: each pass walks a read-only tree
// and produces a list of pkg/edit.Edit byte-range replacements, which are
// applied once at the end of each phase. A phase that runs more than one
// pass re-parses the spliced output between passes, since a later pass
// needs to see the earlier pass's rewrites (an inlined extern literal
// becoming hoistable, for instance).
package optimizer

// Options mirrors the nested JSON configuration shape: per-pass toggles plus
// the three sub-object forms (globals, externs, renameProperties) that bundle
// related knobs together. Only the nested form is accepted — see DESIGN.md
// for why the flat historical spelling (hoistGlobals, externsImport, ...)
// was not carried forward.
type Options struct {
	Hoist            bool                    `json:"hoist"`
	Dedupe           bool                    `json:"dedupe"`
	Globals          GlobalsOptions          `json:"globals"`
	Externs          ExternsOptions          `json:"externs"`
	RenameProperties RenamePropertiesOptions `json:"renameProperties"`
}

// GlobalsOptions configures the globals/singletons chunk-phase pass.
type GlobalsOptions struct {
	// Include names the built-in global tables to enable: "js", "web", or
	// both. Unknown names are ignored rather than rejected, so a host
	// upgrading to a future table name doesn't need an engine bump.
	Include []string `json:"include"`
	// Hoist enables rewriting global member-access chains into lifted
	// constants (§4.5's main body). This is the nested-form successor to
	// the historical flat `hoistGlobals` flag.
	Hoist bool `json:"hoist"`
	// Singletons enables unifying every `new TextEncoder()`/`new
	// TextDecoder()` call site into one shared chunk-level constant.
	Singletons bool `json:"singletons"`
}

// ExternsOptions configures extern-descriptor handling.
type ExternsOptions struct {
	// InlineConstValues enables the inline-extern pass: every read of an
	// extern const export is replaced by its literal value.
	InlineConstValues bool `json:"inlineConstValues"`
	// Import lists host-resolved paths to extern JSON documents. The engine
	// itself doesn't read files — a host calls ImportExterns with the bytes
	// from each of these paths — so this field exists for config-file
	// round-tripping and isn't consulted by the engine API.
	Import []string `json:"import"`
}

// RenamePropertiesOptions configures the property-rename chunk-phase pass.
type RenamePropertiesOptions struct {
	// Pattern is a regular expression; any syntactic property name matching
	// it, and not already present in the loaded map, is assigned a fresh
	// name by the allocator.
	Pattern string `json:"pattern"`
	// Map names a host-resolved path to the persisted property-map INI
	// file. Like Externs.Import, the engine doesn't read it directly — see
	// ImportPropertyMap.
	Map string `json:"map"`
}

// Enabled reports whether any rename-properties configuration is present.
func (o RenamePropertiesOptions) Enabled() bool {
	return o.Pattern != "" || o.Map != ""
}

// includesTable reports whether name appears in Include.
func (g GlobalsOptions) includesTable(name string) bool {
	for _, n := range g.Include {
		if n == name {
			return true
		}
	}
	return false
}
