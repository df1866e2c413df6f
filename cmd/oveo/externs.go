package main

import (
	"fmt"
	"os"

	"github.com/oveo-dev/oveo/pkg/extern"
)

// runExterns implements the `oveo externs` subcommand: merge and validate
// one or more extern JSON documents (literal paths or doublestar globs)
// and print the merged, validated document — useful for checking a set of
// extern files compose cleanly before wiring them into a build via
// --externs, and for producing the single merged file some hosts prefer
// to pass.
func runExterns(args []string) {
	flags := parseFlags(args)
	patterns := append(append([]string{}, flags.externsPaths...), flags.paths...)
	if len(patterns) == 0 {
		fmt.Fprintln(os.Stderr, "usage: oveo externs <path-or-glob> [path-or-glob...] [--out path]")
		os.Exit(1)
	}

	merged, err := loadExternsData(patterns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "externs: %v\n", err)
		os.Exit(1)
	}
	if _, err := extern.Parse(merged); err != nil {
		fmt.Fprintf(os.Stderr, "externs: %v\n", err)
		os.Exit(1)
	}

	if flags.out != "" {
		if err := os.WriteFile(flags.out, merged, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "externs: write %q: %v\n", flags.out, err)
			os.Exit(1)
		}
		return
	}
	os.Stdout.Write(merged)
	fmt.Println()
}
