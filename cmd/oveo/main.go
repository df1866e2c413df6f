// Command oveo drives the optimizer engine from the command line, for
// manual invocation and debugging outside a bundler host. It performs no
// optimization logic of its own — every transform/render-chunk decision is
// made by pkg/optimizer.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "transform":
		runTransform(args)
	case "render-chunk":
		runRenderChunk(args)
	case "externs":
		runExterns(args)
	case "propmap":
		runPropmap(args)
	case "version":
		fmt.Printf("oveo %s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: oveo <command> [paths...] [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  transform     Run the module-phase passes over one or more files")
	fmt.Println("  render-chunk  Run the chunk-phase passes over one bundled chunk")
	fmt.Println("  externs       Merge and validate extern descriptor files")
	fmt.Println("  propmap       Inspect or export a property map")
	fmt.Println("  version       Print version")
	fmt.Println("  help          Show this help message")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --glob PATTERN        Batch-transform files matching a doublestar glob")
	fmt.Println("  --exclude PATTERN     Glob to exclude from --glob matches")
	fmt.Println("  --out PATH            Output file (transform/render-chunk) or directory (--glob/--watch)")
	fmt.Println("  --watch               Re-run on file change, debounced")
	fmt.Println("  --workers N           Batch worker pool size (defaults to a CPU-aware count)")
	fmt.Println("  --type TYPE           Force module type: js, jsx, ts, or tsx")
	fmt.Println("  --externs PATH        Extern descriptor file (repeatable, globs allowed)")
	fmt.Println("  --propmap PATH        Persisted property-rename map to load and update")
	fmt.Println("  --hoist / --no-hoist  Toggle the hoist pass")
	fmt.Println("  --dedupe / --no-dedupe  Toggle the dedupe pass")
	fmt.Println("  --rename-pattern PAT  Regex selecting property names to rename")
	fmt.Println("  --globals LIST        Comma-separated built-in global tables: js, web")
	fmt.Println("  --globals-hoist       Hoist global reads to the module top")
	fmt.Println("  --singletons          Enable the singletons pass")
	fmt.Println("  --json                Emit a machine-readable result envelope")
	fmt.Println()
	fmt.Println("A .oveo.yaml in the working directory supplies defaults; flags override it.")
}
