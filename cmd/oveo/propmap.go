package main

import (
	"fmt"
	"os"

	"github.com/oveo-dev/oveo/pkg/propmap"
)

// runPropmap implements the `oveo propmap` subcommand: load a persisted
// property-map file, validate it, and re-emit it in normalized form
// (sorted keys, LF endings) — a round-trip check (invariant 7) a host can
// run in CI against a checked-in map.
func runPropmap(args []string) {
	flags := parseFlags(args)
	if len(flags.paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: oveo propmap <map-file> [--out path]")
		os.Exit(1)
	}

	data, err := os.ReadFile(flags.paths[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "propmap: %v\n", err)
		os.Exit(1)
	}
	pm, err := propmap.Parse(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "propmap: %v\n", err)
		os.Exit(1)
	}

	out := pm.Export()
	if flags.out != "" {
		if err := os.WriteFile(flags.out, out, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "propmap: write %q: %v\n", flags.out, err)
			os.Exit(1)
		}
		return
	}
	os.Stdout.Write(out)
}
