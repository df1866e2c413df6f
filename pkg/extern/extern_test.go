package extern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ConstDescriptor(t *testing.T) {
	reg, err := Parse([]byte(`{"m":{"exports":{"K":{"type":"const","value":"v"}}}}`))
	require.NoError(t, err)

	mod, ok := reg.Resolve("m")
	require.True(t, ok)

	d, ok := mod.Export("K")
	require.True(t, ok)
	assert.Equal(t, KindConst, d.Kind)
	assert.JSONEq(t, `"v"`, string(d.Value))
}

func TestParse_ShorthandExports(t *testing.T) {
	reg, err := Parse([]byte(`{"m":{"K":{"type":"const","value":1}}}`))
	require.NoError(t, err)

	mod, ok := reg.Resolve("m")
	require.True(t, ok)
	d, ok := mod.Export("K")
	require.True(t, ok)
	assert.Equal(t, KindConst, d.Kind)
}

func TestParse_FunctionArguments(t *testing.T) {
	reg, err := Parse([]byte(`{"lib":{"exports":{"f":{"type":"function","arguments":[["hoist"],[],["scope"]]}}}}`))
	require.NoError(t, err)

	mod, _ := reg.Resolve("lib")
	d, ok := mod.Export("f")
	require.True(t, ok)
	require.Equal(t, KindFunction, d.Kind)
	require.Len(t, d.Arguments, 3)
	assert.True(t, d.Arguments[0].Hoist)
	assert.True(t, d.Arguments[1].Empty())
	assert.True(t, d.Arguments[2].Scope)
}

func TestParse_NamespaceChain(t *testing.T) {
	reg, err := Parse([]byte(`{"lib":{"exports":{"ns":{"type":"namespace","exports":{"inner":{"type":"const","value":42}}}}}}`))
	require.NoError(t, err)

	mod, _ := reg.Resolve("lib")
	ns, ok := mod.Export("ns")
	require.True(t, ok)
	require.Equal(t, KindNamespace, ns.Kind)

	inner, ok := ns.Namespace("inner")
	require.True(t, ok)
	assert.Equal(t, KindConst, inner.Kind)
}

func TestParse_UnknownKeysIgnored(t *testing.T) {
	reg, err := Parse([]byte(`{"m":{"exports":{"K":{"type":"const","value":1,"extraneous":true}}}}`))
	require.NoError(t, err)
	_, ok := reg.Resolve("m")
	assert.True(t, ok)
}

func TestParse_DuplicateArgFlagIsError(t *testing.T) {
	_, err := Parse([]byte(`{"m":{"exports":{"f":{"type":"function","arguments":[["hoist","hoist"]]}}}}`))
	require.Error(t, err)
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestParse_UnrecognizedFlagIsError(t *testing.T) {
	_, err := Parse([]byte(`{"m":{"exports":{"f":{"type":"function","arguments":[["bogus"]]}}}}`))
	assert.Error(t, err)
}

func TestParse_UnknownDescriptorTypeIsError(t *testing.T) {
	_, err := Parse([]byte(`{"m":{"exports":{"K":{"type":"weird"}}}}`))
	assert.Error(t, err)
}

func TestParse_InvalidJSONIsError(t *testing.T) {
	_, err := Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestResolve_UnknownSpecifier(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Resolve("missing")
	assert.False(t, ok)
}

func TestRenderLiteral_Scalars(t *testing.T) {
	cases := []struct {
		json string
		want string
	}{
		{`"v"`, `"v"`},
		{`1`, `1`},
		{`1.5`, `1.5`},
		{`true`, `true`},
		{`false`, `false`},
		{`null`, `null`},
	}
	for _, tc := range cases {
		got, err := RenderLiteral([]byte(tc.json))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestRenderLiteral_ArrayAndObject(t *testing.T) {
	got, err := RenderLiteral([]byte(`[1,2,3]`))
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]", got)

	got, err = RenderLiteral([]byte(`{"b":2,"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, "{a:1,b:2}", got)
}

func TestRenderLiteral_NestedObjectKeyNeedsQuoting(t *testing.T) {
	got, err := RenderLiteral([]byte(`{"not-an-ident":1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"not-an-ident":1}`, got)
}
