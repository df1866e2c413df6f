package main

import (
	"fmt"
	"io"
	"os"

	"github.com/oveo-dev/oveo/pkg/optimizer"
)

// runRenderChunk implements the `oveo render-chunk` subcommand: the
// chunk-phase pass over one already-bundled chunk, read from a single
// path argument or from stdin when none is given.
func runRenderChunk(args []string) {
	flags := parseFlags(args)
	logger := newCLILogger()

	opts, err := resolveOptions(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render-chunk: %v\n", err)
		os.Exit(1)
	}
	externsData, err := loadExternsData(flags.externsPaths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render-chunk: %v\n", err)
		os.Exit(1)
	}
	propmapData, err := loadPropmapData(flags.propmapPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render-chunk: %v\n", err)
		os.Exit(1)
	}

	var src []byte
	switch len(flags.paths) {
	case 0:
		src, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "render-chunk: read stdin: %v\n", err)
			os.Exit(1)
		}
	case 1:
		src, err = os.ReadFile(flags.paths[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "render-chunk: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "render-chunk: accepts at most one chunk file (it operates on the bundler's single final chunk)")
		os.Exit(1)
	}

	o := optimizer.New(opts, logger)
	defer o.Close()
	if len(externsData) > 0 {
		if err := o.ImportExterns(externsData); err != nil {
			fmt.Fprintf(os.Stderr, "render-chunk: %v\n", err)
			os.Exit(1)
		}
	}
	if len(propmapData) > 0 {
		if err := o.ImportPropertyMap(propmapData); err != nil {
			fmt.Fprintf(os.Stderr, "render-chunk: %v\n", err)
			os.Exit(1)
		}
	}

	res, warnings, err := o.RenderChunk(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render-chunk: %v\n", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		logger.Warn(w.Message, "pass", w.Pass)
	}

	if data, ok := o.UpdatePropertyMap(); ok && flags.propmapPath != "" {
		if err := os.WriteFile(flags.propmapPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "render-chunk: failed to write property map: %v\n", err)
			os.Exit(1)
		}
	}

	if len(flags.paths) == 1 && flags.out != "" {
		if err := os.WriteFile(flags.out, []byte(res.Code), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "render-chunk: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printResult(res.Code, warnings, o.ParserStats(), flags.json)
}
