package propmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Basic(t *testing.T) {
	pm, err := Parse([]byte("# comment\na_=c\n; also a comment\n\nb_=d\n"))
	require.NoError(t, err)

	v, ok := pm.Lookup("a_")
	require.True(t, ok)
	assert.Equal(t, "c", v)

	v, ok = pm.Lookup("b_")
	require.True(t, ok)
	assert.Equal(t, "d", v)

	assert.False(t, pm.Dirty())
}

func TestParse_DuplicateKeyIsError(t *testing.T) {
	_, err := Parse([]byte("a=b\na=c\n"))
	require.Error(t, err)
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestParse_DuplicateValueIsError(t *testing.T) {
	_, err := Parse([]byte("a=x\nb=x\n"))
	require.Error(t, err)
}

func TestParse_MissingEqualsIsError(t *testing.T) {
	_, err := Parse([]byte("not-a-kv-line\n"))
	require.Error(t, err)
}

func TestExport_SortedAndLFTerminated(t *testing.T) {
	pm := New()
	pm.Allocate("zzz")
	pm.Allocate("aaa")

	data := pm.Export()
	s := string(data)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	aIdx := indexOf(s, "aaa=")
	zIdx := indexOf(s, "zzz=")
	assert.Less(t, aIdx, zIdx, "entries should be sorted by original key")
}

func TestRoundTrip_ExportThenParseEqualsNormalizedExport(t *testing.T) {
	pm := New()
	pm.Allocate("one")
	pm.Allocate("two")
	exported := pm.Export()

	reparsed, err := Parse(exported)
	require.NoError(t, err)
	assert.Equal(t, exported, reparsed.Export())
}

func TestUpdate_NonNilOnlyWhenDirty(t *testing.T) {
	pm := New()
	_, ok := pm.Update()
	assert.False(t, ok, "fresh map has nothing new to report")

	pm.Allocate("k")
	data, ok := pm.Update()
	assert.True(t, ok)
	assert.Contains(t, string(data), "k=")

	_, ok = pm.Update()
	assert.False(t, ok, "dirty flag must clear after Update")
}

func TestAllocate_Idempotent(t *testing.T) {
	pm := New()
	first := pm.Allocate("name")
	second := pm.Allocate("name")
	assert.Equal(t, first, second)
}

func TestAllocate_SkipsReservedWords(t *testing.T) {
	a := NewAllocator()
	taken := map[string]string{}
	for i := 0; i < 60; i++ {
		name := a.Next(taken)
		taken[name] = "x"
		assert.False(t, reservedWords[name], "allocator must never emit reserved word %q", name)
	}
}

func TestAllocate_SkipsExistingValues(t *testing.T) {
	a := NewAllocator()
	taken := map[string]string{"a": "orig"}
	name := a.Next(taken)
	assert.NotEqual(t, "a", name)
}

func TestAllocator_ShortlexOrder(t *testing.T) {
	a := NewAllocator()
	taken := map[string]string{}
	first := a.Next(taken)
	taken[first] = "x"
	assert.Len(t, first, 1)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
