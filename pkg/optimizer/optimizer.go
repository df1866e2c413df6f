package optimizer

import (
	"fmt"
	"log/slog"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/oveo-dev/oveo/pkg/ast"
	"github.com/oveo-dev/oveo/pkg/edit"
	"github.com/oveo-dev/oveo/pkg/extern"
	"github.com/oveo-dev/oveo/pkg/intrinsic"
	"github.com/oveo-dev/oveo/pkg/parser"
	"github.com/oveo-dev/oveo/pkg/propmap"
)

// Result is what Transform and RenderChunk both return: the rewritten
// source text plus a source map. The map is built with no mappings: it names
// a single source (the moduleType for Transform, "chunk" for RenderChunk)
// and records no positions.
type Result struct {
	Code string
	Map  edit.SourceMap
}

// Optimizer is the engine: it owns the loaded extern registry and property
// map, the compiled rename pattern, and the per-phase fresh-name counters,
// and exposes the module-phase (Transform) and chunk-phase (RenderChunk)
// entry points plus the side-table import/export API (ImportExterns,
// ImportPropertyMap, UpdatePropertyMap, ExportPropertyMap).
type Optimizer struct {
	opts     Options
	registry *extern.Registry
	propMap  *propmap.PropertyMap
	pattern  *regexp.Regexp

	pm     *parser.ParserManager
	logger *slog.Logger

	// hoistCounter resets at the start of every Transform call (module-
	// scoped, per §5); dedupeCounter/globalCounter/singletonCounter reset at
	// the start of every RenderChunk call (chunk-scoped).
	hoistCounter     int
	dedupeCounter    int
	globalCounter    int
	singletonCounter int

	// fpCache memoizes fingerprint() by (parseGen, node byte range); parseGen
	// increments on every parse so entries from a stale reparse never hit.
	fpCache  *lru.Cache[fpKey, string]
	parseGen uint64
}

// New constructs an Optimizer. opts.RenameProperties.Pattern, if non-empty,
// must be a valid regular expression — New panics on a malformed one, since
// it reflects a host configuration bug caught at startup rather than a
// per-call input error.
func New(opts Options, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.Default()
	}
	var pattern *regexp.Regexp
	if opts.RenameProperties.Pattern != "" {
		pattern = regexp.MustCompile(opts.RenameProperties.Pattern)
	}
	return &Optimizer{
		opts:     opts,
		registry: extern.NewRegistry(),
		propMap:  propmap.New(),
		pattern:  pattern,
		pm:       parser.NewParserManager(logger),
		logger:   logger,
		fpCache:  newFingerprintCache(),
	}
}

// Close releases the parser manager's pooled resources.
func (o *Optimizer) Close() {
	o.pm.Close()
}

// ParserStats exposes the underlying parser pool's usage counters. A host
// can surface these alongside a transform result (the CLI's --json envelope
// does) to see how much parser-pool reuse a run got, e.g. across the
// re-parse-between-passes step runHoistAndScope/runDedupe trigger.
func (o *Optimizer) ParserStats() parser.ParserStats {
	return o.pm.GetStats()
}

// ImportExterns replaces the loaded extern registry with the one parsed
// from data. On a malformed document the existing registry is left
// unchanged and an *extern.FormatError is returned.
func (o *Optimizer) ImportExterns(data []byte) error {
	reg, err := extern.Parse(data)
	if err != nil {
		return err
	}
	o.registry = reg
	return nil
}

// ImportPropertyMap replaces the loaded property map with the one parsed
// from data. On a malformed document the existing map is left unchanged
// and a *propmap.FormatError is returned.
func (o *Optimizer) ImportPropertyMap(data []byte) error {
	pm, err := propmap.Parse(data)
	if err != nil {
		return err
	}
	o.propMap = pm
	return nil
}

// UpdatePropertyMap returns the serialized property map if and only if the
// rename pass allocated a fresh entry since the last import or update
// (invariant 8: a host that never touches the returned bytes never writes a
// file).
func (o *Optimizer) UpdatePropertyMap() ([]byte, bool) {
	return o.propMap.Update()
}

// ExportPropertyMap serializes the current property map unconditionally.
func (o *Optimizer) ExportPropertyMap() []byte {
	return o.propMap.Export()
}

func (o *Optimizer) language(moduleType string) (parser.Language, bool, error) {
	switch moduleType {
	case "js", "jsx":
		return parser.LanguageJavaScript, false, nil
	case "ts":
		return parser.LanguageTypeScript, false, nil
	case "tsx":
		return parser.LanguageTypeScript, true, nil
	default:
		return 0, false, fmt.Errorf("optimizer: unknown module type %q", moduleType)
	}
}

func (o *Optimizer) parse(source []byte, moduleType string) (*ts.Tree, error) {
	o.parseGen++
	lang, isTSX, err := o.language(moduleType)
	if err != nil {
		return nil, err
	}
	tree, err := o.pm.Parse(source, lang, isTSX)
	if err != nil {
		return nil, &ParseError{Detail: err.Error()}
	}
	if tree.RootNode().HasError() {
		pt := tree.RootNode().StartPosition()
		return nil, &ParseError{Detail: "syntax error", Location: Location{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1}}
	}
	return tree, nil
}

// Transform runs the module-phase passes — inline-extern, then hoist/scope
// — over one module's source text, reparsing between passes so a later
// pass sees the earlier pass's rewrites.
func (o *Optimizer) Transform(sourceText []byte, moduleType string) (Result, Warnings, error) {
	o.hoistCounter = 0
	code := sourceText
	var warnings []PassWarning

	runPass := func(run func(root *ts.Node, source []byte, st *ast.SymbolTable, table intrinsic.ImportTable, resolver *intrinsic.Resolver) ([]edit.Edit, []PassWarning)) error {
		tree, err := o.parse(code, moduleType)
		if err != nil {
			return err
		}
		defer tree.Close()
		root := tree.RootNode()
		st := ast.Build(root, code)
		table := intrinsic.BuildImportTable(root, code)
		resolver := intrinsic.NewResolver(o.registry)

		edits, w := run(root, code, st, table, resolver)
		warnings = append(warnings, w...)
		if len(edits) == 0 {
			return nil
		}
		out, err := edit.Apply(code, edits)
		if err != nil {
			return &InvariantViolation{Pass: "transform", Detail: err.Error()}
		}
		code = []byte(out)
		return nil
	}

	if o.opts.Externs.InlineConstValues {
		if err := runPass(func(root *ts.Node, source []byte, st *ast.SymbolTable, table intrinsic.ImportTable, resolver *intrinsic.Resolver) ([]edit.Edit, []PassWarning) {
			return o.runInlineExtern(root, source, st, table, resolver)
		}); err != nil {
			return Result{}, nil, err
		}
	}

	if err := runPass(func(root *ts.Node, source []byte, st *ast.SymbolTable, table intrinsic.ImportTable, resolver *intrinsic.Resolver) ([]edit.Edit, []PassWarning) {
		return o.runHoistAndScope(root, source, st, table, resolver, o.opts.Hoist)
	}); err != nil {
		return Result{}, nil, err
	}

	return Result{Code: string(code), Map: edit.BuildSourceMap(moduleType, nil, nil)}, warnings, nil
}

// RenderChunk runs the chunk-phase passes — dedupe, then globals/
// singletons, then rename-properties — over one already-bundled chunk's
// source text.
func (o *Optimizer) RenderChunk(sourceText []byte) (Result, Warnings, error) {
	o.dedupeCounter = 0
	o.globalCounter = 0
	o.singletonCounter = 0
	code := sourceText
	var warnings []PassWarning

	parseAndBuild := func() (*ts.Tree, *ts.Node, *ast.SymbolTable, intrinsic.ImportTable, *intrinsic.Resolver, error) {
		tree, err := o.parse(code, "js")
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		root := tree.RootNode()
		st := ast.Build(root, code)
		table := intrinsic.BuildImportTable(root, code)
		resolver := intrinsic.NewResolver(o.registry)
		return tree, root, st, table, resolver, nil
	}

	applyEdits := func(edits []edit.Edit) error {
		if len(edits) == 0 {
			return nil
		}
		out, err := edit.Apply(code, edits)
		if err != nil {
			return &InvariantViolation{Pass: "render-chunk", Detail: err.Error()}
		}
		code = []byte(out)
		return nil
	}

	tree, root, st, table, resolver, err := parseAndBuild()
	if err != nil {
		return Result{}, nil, err
	}
	edits, w := o.runDedupe(root, code, st, table, resolver, o.opts.Dedupe)
	tree.Close()
	warnings = append(warnings, w...)
	if err := applyEdits(edits); err != nil {
		return Result{}, nil, err
	}

	if o.opts.Globals.Hoist {
		tree, root, st, _, _, err = parseAndBuild()
		if err != nil {
			return Result{}, nil, err
		}
		edits, w = o.runGlobals(root, code, st)
		tree.Close()
		warnings = append(warnings, w...)
		if err := applyEdits(edits); err != nil {
			return Result{}, nil, err
		}
	}

	if o.opts.Globals.Singletons {
		tree, root, st, _, _, err = parseAndBuild()
		if err != nil {
			return Result{}, nil, err
		}
		edits, w = o.runSingletons(root, code, st)
		tree.Close()
		warnings = append(warnings, w...)
		if err := applyEdits(edits); err != nil {
			return Result{}, nil, err
		}
	}

	// key() is always stripped (renamed first if it names a literal property
	// and renaming is enabled), even when RenameProperties itself is off —
	// the call is an identity function at runtime and must not survive into
	// the emitted chunk, matching every other oveo intrinsic's round-trip
	// invariant.
	tree, root, _, table, resolver, err = parseAndBuild()
	if err != nil {
		return Result{}, nil, err
	}
	edits = o.runRename(root, code, table, resolver, o.propMap, o.pattern, o.opts.RenameProperties.Enabled())
	tree.Close()
	if err := applyEdits(edits); err != nil {
		return Result{}, nil, err
	}

	return Result{Code: string(code), Map: edit.BuildSourceMap("chunk", nil, nil)}, warnings, nil
}
