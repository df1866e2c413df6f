package queries

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oveo-dev/oveo/pkg/parser"
)

const sampleTS = `
import { hoist, scope } from "oveo";
import React, { useState as useStateAlias } from "react";
import * as utils from "./utils";

export const a = 1;
export function f() { return 1; }
`

const sampleJS = `
const { dedupe } = require("oveo");
module.exports = { dedupe };
`

func newTestManagers(t *testing.T) (*parser.ParserManager, *QueryManager) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	pm := parser.NewParserManager(logger)
	qm := NewQueryManager(pm, logger)
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return pm, qm
}

func TestQueryCompilation_Imports_JavaScript(t *testing.T) {
	_, qm := newTestManagers(t)

	query, err := qm.GetQuery(parser.LanguageJavaScript, QueryTypeImports)
	require.NoError(t, err)
	require.NotNil(t, query)
}

func TestQueryCompilation_Imports_TypeScript(t *testing.T) {
	_, qm := newTestManagers(t)

	query, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeImports)
	require.NoError(t, err)
	require.NotNil(t, query)
}

func TestQueryExecution_Imports_TypeScript(t *testing.T) {
	pm, qm := newTestManagers(t)

	source := []byte(sampleTS)
	tree, err := pm.Parse(source, parser.LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	query, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeImports)
	require.NoError(t, err)

	matches, err := qm.ExecuteQuery(tree, query, source)
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	var foundSource, foundExport bool
	for _, match := range matches {
		for _, capture := range match.Captures {
			if capture.Category == "import" && capture.Field == "source" {
				foundSource = true
			}
			if capture.Category == "export" {
				foundExport = true
			}
		}
	}
	assert.True(t, foundSource, "expected to find an import source capture")
	assert.True(t, foundExport, "expected to find an export capture")
}

func TestParseCaptureName(t *testing.T) {
	tests := []struct {
		name             string
		input            string
		expectedCategory string
		expectedField    string
	}{
		{"dotted capture name", "import.source", "import", "source"},
		{"simple capture name", "namespace", "namespace", ""},
		{"nested dotted name", "export.commonjs.default", "export", "commonjs.default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, field := parseCaptureName(tt.input)
			assert.Equal(t, tt.expectedCategory, category)
			assert.Equal(t, tt.expectedField, field)
		})
	}
}

func TestNodeLocation(t *testing.T) {
	pm, _ := newTestManagers(t)

	source := []byte("const x = 1;\n")
	tree, err := pm.Parse(source, parser.LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	loc := nodeLocation(tree.RootNode())
	assert.NotZero(t, loc.StartLine)
	assert.NotZero(t, loc.StartColumn)
	assert.NotZero(t, loc.EndByte)
}

func TestQueryCache(t *testing.T) {
	_, qm := newTestManagers(t)

	query1, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeImports)
	require.NoError(t, err)

	query2, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeImports)
	require.NoError(t, err)

	assert.Same(t, query1, query2, "expected cached query to return same pointer")
}

func TestConcurrentQueryExecution(t *testing.T) {
	pm, qm := newTestManagers(t)

	tsSource := []byte(sampleTS)
	jsSource := []byte(sampleJS)

	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := pm.Parse(tsSource, parser.LanguageTypeScript, false)
			if err != nil {
				errs <- err
				return
			}
			defer tree.Close()

			query, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeImports)
			if err != nil {
				errs <- err
				return
			}
			if _, err := qm.ExecuteQuery(tree, query, tsSource); err != nil {
				errs <- err
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := pm.Parse(jsSource, parser.LanguageJavaScript, false)
			if err != nil {
				errs <- err
				return
			}
			defer tree.Close()

			query, err := qm.GetQuery(parser.LanguageJavaScript, QueryTypeImports)
			if err != nil {
				errs <- err
				return
			}
			if _, err := qm.ExecuteQuery(tree, query, jsSource); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent execution error: %v", err)
	}
}

func TestExecuteQuery_NilTree(t *testing.T) {
	_, qm := newTestManagers(t)

	query, err := qm.GetQuery(parser.LanguageTypeScript, QueryTypeImports)
	require.NoError(t, err)

	_, err = qm.ExecuteQuery(nil, query, []byte("test"))
	assert.Error(t, err)
}

func TestExecuteQuery_NilQuery(t *testing.T) {
	pm, qm := newTestManagers(t)

	source := []byte("const x = 1;")
	tree, err := pm.Parse(source, parser.LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	_, err = qm.ExecuteQuery(tree, nil, source)
	assert.Error(t, err)
}

func TestGetQuery_UnknownLanguage(t *testing.T) {
	_, qm := newTestManagers(t)

	_, err := qm.GetQuery(parser.LanguageUnknown, QueryTypeImports)
	assert.Error(t, err)
}

func TestGetQuery_InvalidQueryType(t *testing.T) {
	_, qm := newTestManagers(t)

	_, err := qm.GetQuery(parser.LanguageTypeScript, QueryType(999))
	assert.Error(t, err)
}
