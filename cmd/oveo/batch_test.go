package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleTypeForPath(t *testing.T) {
	cases := map[string]string{
		"a.js":  "js",
		"a.mjs": "js",
		"a.cjs": "js",
		"a.jsx": "jsx",
		"a.ts":  "ts",
		"a.mts": "ts",
		"a.tsx": "tsx",
	}
	for path, want := range cases {
		got, err := moduleTypeForPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}

	_, err := moduleTypeForPath("a.json")
	require.Error(t, err)
}

func TestDiscoverFiles_IncludeAndExclude(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.MkdirAll("src", 0755))
	require.NoError(t, os.WriteFile("src/a.ts", []byte("export const a = 1"), 0644))
	require.NoError(t, os.WriteFile("src/a.test.ts", []byte("export const b = 1"), 0644))

	paths, err := discoverFiles("src/**/*.ts", "**/*.test.ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts"}, paths)
}

func TestDiscoverFiles_InvalidPatternIsAnError(t *testing.T) {
	chdirTemp(t)
	_, err := discoverFiles("[", "")
	require.Error(t, err)
}

func TestWriteBatchOutput_InPlaceWhenNoOutDir(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile("a.js", []byte("old"), 0644))

	require.NoError(t, writeBatchOutput("a.js", "new", ""))

	data, err := os.ReadFile(filepath.Join(dir, "a.js"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestWriteBatchOutput_MirrorsTreeUnderOutDir(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, writeBatchOutput("src/nested/a.js", "compiled", "dist"))

	data, err := os.ReadFile(filepath.Join(dir, "dist", "src", "nested", "a.js"))
	require.NoError(t, err)
	assert.Equal(t, "compiled", string(data))
}
