package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oveo-dev/oveo/pkg/extern"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadExternsData_NoPatternsReturnsNil(t *testing.T) {
	data, err := loadExternsData(nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestLoadExternsData_MergesDistinctModulesAcrossFiles(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile("a.json", []byte(`{"m1":{"exports":{"K":{"type":"const","value":"v1"}}}}`), 0644))
	require.NoError(t, os.WriteFile("b.json", []byte(`{"m2":{"exports":{"K":{"type":"const","value":"v2"}}}}`), 0644))

	data, err := loadExternsData([]string{"a.json", "b.json"})
	require.NoError(t, err)

	reg, err := extern.Parse(data)
	require.NoError(t, err)
	_, ok := reg.Resolve("m1")
	assert.True(t, ok)
	_, ok = reg.Resolve("m2")
	assert.True(t, ok)
}

func TestLoadExternsData_ConflictingDescriptorIsAnError(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile("a.json", []byte(`{"m":{"exports":{"K":{"type":"const","value":"v1"}}}}`), 0644))
	require.NoError(t, os.WriteFile("b.json", []byte(`{"m":{"exports":{"K":{"type":"const","value":"v2"}}}}`), 0644))

	_, err := loadExternsData([]string{"a.json", "b.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting descriptor")
}

func TestLoadExternsData_MissingGlobMatchIsAnError(t *testing.T) {
	chdirTemp(t)
	_, err := loadExternsData([]string{"nope/*.json"})
	require.Error(t, err)
}

func TestLoadPropmapData_MissingPathIsNotAnError(t *testing.T) {
	chdirTemp(t)
	data, err := loadPropmapData("does-not-exist.ini")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestLoadPropmapData_EmptyPathSkipsLoad(t *testing.T) {
	data, err := loadPropmapData("")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestLoadPropmapData_ReadsExistingFile(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile("map.ini", []byte("a_=b\n"), 0644))
	data, err := loadPropmapData("map.ini")
	require.NoError(t, err)
	assert.Equal(t, "a_=b\n", string(data))
}

func TestExpandPathOrGlob_LiteralExistingFileReturnedAsIs(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile("exact.json", []byte(`{}`), 0644))
	paths, err := expandPathOrGlob("exact.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"exact.json"}, paths)
}

func TestExpandPathOrGlob_GlobExpandsMultipleMatches(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.MkdirAll("externs", 0755))
	require.NoError(t, os.WriteFile("externs/a.json", []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile("externs/b.json", []byte(`{}`), 0644))

	paths, err := expandPathOrGlob("externs/*.json")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"externs/a.json", "externs/b.json"}, paths)
}
