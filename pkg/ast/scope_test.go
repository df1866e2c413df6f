package ast

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/oveo-dev/oveo/pkg/parser"
)

type fixture struct {
	source []byte
	root   *ts.Node
	st     *SymbolTable
}

func parseProgram(t *testing.T, source string) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pm := parser.NewParserManager(logger)
	t.Cleanup(func() { pm.Close() })

	src := []byte(source)
	tree, err := pm.Parse(src, parser.LanguageJavaScript, false)
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	root := tree.RootNode()
	st := Build(root, src)
	return &fixture{source: src, root: root, st: st}
}

// find returns the first descendant (including root) matching pred, via
// pre-order traversal.
func (f *fixture) find(pred func(*ts.Node) bool) *ts.Node {
	var result *ts.Node
	var walk func(*ts.Node)
	walk = func(n *ts.Node) {
		if n == nil || result != nil {
			return
		}
		if pred(n) {
			result = n
			return
		}
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			walk(n.Child(i))
		}
	}
	walk(f.root)
	return result
}

func (f *fixture) findIdentifier(name string) *ts.Node {
	return f.find(func(n *ts.Node) bool {
		return n.Kind() == "identifier" && n.Utf8Text(f.source) == name
	})
}

func (f *fixture) findByText(text string) *ts.Node {
	return f.find(func(n *ts.Node) bool {
		return n.Utf8Text(f.source) == text
	})
}

func TestBuild_ProgramScopeIsHoistScope(t *testing.T) {
	f := parseProgram(t, "const a = 1;")
	require.NotEmpty(t, f.st.Scopes)
	assert.True(t, f.st.Scopes[0].IsHoistScope)
	assert.Equal(t, ScopeProgram, f.st.Scopes[0].Kind)
}

func TestBuild_FunctionCreatesScope(t *testing.T) {
	f := parseProgram(t, "function f(x) { const y = x; }")
	var sawFunction bool
	for _, s := range f.st.Scopes {
		if s.Kind == ScopeFunction {
			sawFunction = true
		}
	}
	assert.True(t, sawFunction)
}

func TestResolve_ParameterVisibleInBody(t *testing.T) {
	f := parseProgram(t, "function f(x) { return x; }")
	ident := f.find(func(n *ts.Node) bool {
		if n.Kind() != "identifier" || n.Utf8Text(f.source) != "x" {
			return false
		}
		parent := n.Parent()
		return parent != nil && parent.Kind() == "return_statement"
	})
	require.NotNil(t, ident)
	_, ok := f.st.Resolve(ident)
	assert.True(t, ok, "parameter x should resolve inside function body")
}

func TestResolve_UnboundNameIsGlobal(t *testing.T) {
	f := parseProgram(t, "Array.isArray(x);")
	ident := f.findIdentifier("Array")
	require.NotNil(t, ident)
	_, ok := f.st.Resolve(ident)
	assert.False(t, ok, "Array has no in-file binding")
}

func TestFreeIdentifiers_CapturesOuterAndParamBindings(t *testing.T) {
	f := parseProgram(t, "const a = 1; function f(x) { return a + x; }")

	expr := f.findByText("a + x")
	require.NotNil(t, expr)

	free := f.st.FreeIdentifiers(expr)
	names := map[string]int{}
	for _, fi := range free {
		names[fi.Ref.Utf8Text(f.source)]++
	}
	assert.Equal(t, 1, names["a"])
	assert.Equal(t, 1, names["x"])
}

func TestFreeIdentifiers_ExcludesLocallyDeclared(t *testing.T) {
	f := parseProgram(t, "function f() { const y = 1; return y; }")
	body := f.find(func(n *ts.Node) bool { return n.Kind() == "statement_block" })
	require.NotNil(t, body)

	free := f.st.FreeIdentifiers(body)
	for _, fi := range free {
		assert.NotEqual(t, "y", fi.Ref.Utf8Text(f.source), "y is declared inside body, must not be free")
	}
}

func TestHoistScopeChain_OuterFirst(t *testing.T) {
	f := parseProgram(t, "function f() { function g() { return 1; } }")
	inner := f.findByText("return 1;")
	require.NotNil(t, inner)

	chain := f.st.HoistScopeChain(inner)
	require.NotEmpty(t, chain)
	assert.Equal(t, ScopeProgram, f.st.Scopes[chain[0]].Kind)
}

func TestIsAncestorScope(t *testing.T) {
	f := parseProgram(t, "function f() { return 1; }")
	assert.True(t, f.st.IsAncestorScope(0, 0))
	if len(f.st.Scopes) > 1 {
		assert.True(t, f.st.IsAncestorScope(0, 1))
		assert.False(t, f.st.IsAncestorScope(1, 0))
	}
}
