package optimizer

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOptimizer(t *testing.T, opts Options) *Optimizer {
	t.Helper()
	o := New(opts, newTestLogger())
	t.Cleanup(o.Close)
	return o
}

func TestTransform_HoistDisabled_StripsIntrinsicToInnerArgument(t *testing.T) {
	o := newTestOptimizer(t, Options{Hoist: false})
	src := `import { hoist } from "oveo";
function f(a) {
  return hoist(() => a + 1);
}
`
	res, _, err := o.Transform([]byte(src), "js")
	require.NoError(t, err)
	assert.Contains(t, res.Code, "return () => a + 1;")
	assert.NotContains(t, res.Code, "hoist(")
}

func TestTransform_HoistEnabled_LiftsToNearestScopeFlaggedFunction(t *testing.T) {
	o := newTestOptimizer(t, Options{Hoist: true})
	src := `import { hoist, scope } from "oveo";
const handler = scope((x) => {
  return hoist(() => x + 1);
});
`
	res, _, err := o.Transform([]byte(src), "js")
	require.NoError(t, err)
	assert.Contains(t, res.Code, "_HOIST_1")
	assert.NotContains(t, res.Code, "hoist(")
	assert.NotContains(t, res.Code, "scope(")
}

func TestTransform_HoistEnabled_ModuleScopeCandidateHoistsToProgram(t *testing.T) {
	o := newTestOptimizer(t, Options{Hoist: true})
	src := `import { hoist } from "oveo";
function f() {
  return hoist([1, 2, 3]);
}
`
	res, _, err := o.Transform([]byte(src), "js")
	require.NoError(t, err)
	assert.Contains(t, res.Code, "const _HOIST_1 = [1, 2, 3];")
}

func TestTransform_HoistGatedByConditional(t *testing.T) {
	o := newTestOptimizer(t, Options{Hoist: true})
	src := `import { hoist } from "oveo";
function f(cond) {
  if (cond) {
    return hoist([1, 2]);
  }
  return null;
}
`
	res, warnings, err := o.Transform([]byte(src), "js")
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
	assert.Contains(t, res.Code, "return [1, 2];")
}

func TestTransform_ScopeCallAlwaysStripped(t *testing.T) {
	o := newTestOptimizer(t, Options{Hoist: false})
	src := `import { scope } from "oveo";
const f = scope((x) => x + 1);
`
	res, _, err := o.Transform([]byte(src), "js")
	require.NoError(t, err)
	assert.Contains(t, res.Code, "const f = (x) => x + 1;")
}

func TestTransform_InlineExtern_ReplacesConstRead(t *testing.T) {
	o := newTestOptimizer(t, Options{Externs: ExternsOptions{InlineConstValues: true}})
	require.NoError(t, o.ImportExterns([]byte(`{"config":{"exports":{"VERSION":{"type":"const","value":"2.1"}}}}`)))

	src := `import { VERSION } from "config";
console.log(VERSION);
`
	res, _, err := o.Transform([]byte(src), "js")
	require.NoError(t, err)
	assert.Contains(t, res.Code, `console.log("2.1");`)
	assert.NotContains(t, res.Code, "import")
}

func TestRenderChunk_Dedupe_SharesStructurallyIdenticalExpressions(t *testing.T) {
	o := newTestOptimizer(t, Options{Dedupe: true})
	src := `import { dedupe } from "oveo";
function f() {
  return dedupe([1, 2]);
}
function g() {
  return dedupe([1, 2]);
}
`
	res, _, err := o.Transform([]byte(src), "js")
	require.NoError(t, err)
	res, _, err = o.RenderChunk([]byte(res.Code))
	require.NoError(t, err)
	assert.Contains(t, res.Code, "const _DEDUPE_1 = [1, 2];")
	assert.Equal(t, 3, countOccurrences(res.Code, "_DEDUPE_1"))
}

func TestRenderChunk_Dedupe_SingleOccurrenceJustUnwraps(t *testing.T) {
	o := newTestOptimizer(t, Options{Dedupe: true})
	src := `import { dedupe } from "oveo";
const x = dedupe({ a: 1 });
`
	res, _, err := o.RenderChunk([]byte(src))
	require.NoError(t, err)
	assert.Contains(t, res.Code, "const x = { a: 1 };")
	assert.NotContains(t, res.Code, "dedupe(")
}

func TestRenderChunk_Globals_ChainsNestedProperties(t *testing.T) {
	o := newTestOptimizer(t, Options{Globals: GlobalsOptions{Include: []string{"js"}, Hoist: true}})
	src := `function f(x) { return Array.isArray(x); }
function g(y) { return Array.from(y); }
`
	res, _, err := o.RenderChunk([]byte(src))
	require.NoError(t, err)
	assert.Contains(t, res.Code, "const _GLOBAL_1 = Array;")
	assert.Contains(t, res.Code, "_GLOBAL_1.isArray")
	assert.Contains(t, res.Code, "_GLOBAL_1.from")
}

func TestRenderChunk_Globals_ExcludesWrittenName(t *testing.T) {
	o := newTestOptimizer(t, Options{Globals: GlobalsOptions{Include: []string{"web"}, Hoist: true}})
	src := `console.log("a");
console = fakeConsole;
`
	res, _, err := o.RenderChunk([]byte(src))
	require.NoError(t, err)
	assert.Contains(t, res.Code, `console.log("a");`)
}

func TestRenderChunk_Singletons_UnifiesTextEncoder(t *testing.T) {
	o := newTestOptimizer(t, Options{Globals: GlobalsOptions{Singletons: true}})
	src := `function a() { return new TextEncoder(); }
function b() { return new TextEncoder(); }
`
	res, _, err := o.RenderChunk([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, 3, countOccurrences(res.Code, "_SINGLETON_1"))
	assert.Equal(t, 1, countOccurrences(res.Code, "new TextEncoder()"))
}

func TestRenderChunk_RenameProperties_UsesMapThenPattern(t *testing.T) {
	pm := []byte("apiKey=a\n")
	o := newTestOptimizer(t, Options{RenameProperties: RenamePropertiesOptions{Pattern: "^internal_"}})
	require.NoError(t, o.ImportPropertyMap(pm))

	src := `const obj = { apiKey: 1, internal_count: 2 };
obj.apiKey;
`
	res, _, err := o.RenderChunk([]byte(src))
	require.NoError(t, err)
	assert.Contains(t, res.Code, "a: 1")
	assert.Contains(t, res.Code, "obj.a;")
	assert.NotContains(t, res.Code, "internal_count")

	data, ok := o.UpdatePropertyMap()
	assert.True(t, ok)
	assert.Contains(t, string(data), "internal_count=")
}

func TestRenderChunk_RenameProperties_ExpandsShorthand(t *testing.T) {
	o := newTestOptimizer(t, Options{RenameProperties: RenamePropertiesOptions{Pattern: "^secret$"}})
	src := `const secret = 1;
const obj = { secret };
`
	res, _, err := o.RenderChunk([]byte(src))
	require.NoError(t, err)
	assert.Contains(t, res.Code, "{ ")
	assert.Contains(t, res.Code, ": secret }")
}

func TestRenderChunk_RenameProperties_KeyCallRenamesLiteral(t *testing.T) {
	o := newTestOptimizer(t, Options{RenameProperties: RenamePropertiesOptions{Pattern: "^apiKey$"}})
	src := `import { key } from "oveo";
obj[key("apiKey")];
`
	res, _, err := o.RenderChunk([]byte(src))
	require.NoError(t, err)
	assert.NotContains(t, res.Code, "key(")
	assert.Contains(t, res.Code, `obj["a"];`)
}

func TestRenderChunk_KeyCallAlwaysStrippedWhenRenameDisabled(t *testing.T) {
	o := newTestOptimizer(t, Options{})
	src := `import { key } from "oveo";
obj[key("apiKey")];
`
	res, _, err := o.RenderChunk([]byte(src))
	require.NoError(t, err)
	assert.NotContains(t, res.Code, "key(")
	assert.Contains(t, res.Code, `obj["apiKey"];`)
}

func TestRenderChunk_RenameProperties_SkipsPrivateMembers(t *testing.T) {
	o := newTestOptimizer(t, Options{RenameProperties: RenamePropertiesOptions{Pattern: ".*"}})
	src := `class C {
  #secret = 1;
  reveal() { return this.#secret; }
}
`
	res, _, err := o.RenderChunk([]byte(src))
	require.NoError(t, err)
	assert.Contains(t, res.Code, "#secret")
}

func countOccurrences(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
			i += len(substr) - 1
		}
	}
	return count
}
