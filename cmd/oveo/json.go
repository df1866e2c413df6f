package main

import (
	"encoding/json"
	"fmt"

	"github.com/oveo-dev/oveo/pkg/optimizer"
	"github.com/oveo-dev/oveo/pkg/parser"
)

// resultEnvelope is the --json machine-readable shape for a single-file
// transform/render-chunk result: the rewritten code, any pass warnings, and
// the underlying parser pool's usage counters (parser.ParserStats), which
// would otherwise go unexercised outside pkg/parser's own tests.
type resultEnvelope struct {
	Code        string             `json:"code"`
	Warnings    []warningEnvelope  `json:"warnings,omitempty"`
	ParserStats parser.ParserStats `json:"parserStats"`
}

type warningEnvelope struct {
	Pass    string `json:"pass"`
	Message string `json:"message"`
}

// printResult writes a single-file result to stdout, either as raw code or,
// when asJSON is set, as a resultEnvelope.
func printResult(code string, warnings optimizer.Warnings, stats parser.ParserStats, asJSON bool) {
	if !asJSON {
		fmt.Print(code)
		return
	}
	env := resultEnvelope{Code: code, ParserStats: stats}
	for _, w := range warnings {
		env.Warnings = append(env.Warnings, warningEnvelope{Pass: w.Pass, Message: w.Message})
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		fmt.Print(code)
		return
	}
	fmt.Println(string(data))
}
