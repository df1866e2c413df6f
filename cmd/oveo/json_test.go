package main

import (
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oveo-dev/oveo/pkg/optimizer"
	"github.com/oveo-dev/oveo/pkg/parser"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestPrintResult_PlainWritesCodeVerbatim(t *testing.T) {
	out := captureStdout(t, func() {
		printResult("const x = 1;", nil, parser.ParserStats{}, false)
	})
	assert.Equal(t, "const x = 1;", out)
}

func TestPrintResult_JSONIncludesCodeWarningsAndStats(t *testing.T) {
	warnings := optimizer.Warnings{{Pass: "hoist", Message: "left inline"}}
	stats := parser.ParserStats{ParsersCreated: 2, ParsesCalled: 3}

	out := captureStdout(t, func() {
		printResult("const x = 1;", warnings, stats, true)
	})

	var env resultEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, "const x = 1;", env.Code)
	require.Len(t, env.Warnings, 1)
	assert.Equal(t, "hoist", env.Warnings[0].Pass)
	assert.Equal(t, "left inline", env.Warnings[0].Message)
	assert.Equal(t, stats, env.ParserStats)
}
