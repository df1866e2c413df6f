package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/oveo-dev/oveo/pkg/optimizer"
	"github.com/oveo-dev/oveo/pkg/util"
)

func newCLILogger() *slog.Logger {
	return util.NewLogger(util.LoggerConfig{
		Level:  util.LevelWarn,
		Format: util.FormatText,
		Output: os.Stderr,
	})
}

// runTransform implements the `oveo transform` subcommand: module-phase
// Transform over one or more files, or stdin when none is given. --glob
// switches to batch mode across the working tree; --watch re-runs on
// change in either mode.
func runTransform(args []string) {
	flags := parseFlags(args)
	logger := newCLILogger()

	opts, err := resolveOptions(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transform: %v\n", err)
		os.Exit(1)
	}

	externsData, err := loadExternsData(flags.externsPaths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transform: %v\n", err)
		os.Exit(1)
	}
	propmapData, err := loadPropmapData(flags.propmapPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transform: %v\n", err)
		os.Exit(1)
	}

	if flags.glob != "" {
		paths, err := discoverFiles(flags.glob, flags.exclude)
		if err != nil {
			fmt.Fprintf(os.Stderr, "transform: %v\n", err)
			os.Exit(1)
		}
		if len(paths) == 0 {
			fmt.Fprintf(os.Stderr, "transform: no files matched %q\n", flags.glob)
			os.Exit(1)
		}

		run := func(changed []string) {
			if err := runBatchTransform(paths, opts, externsData, propmapData, flags, logger); err != nil {
				logger.Error("transform: batch run failed", "error", err)
			}
		}
		if flags.watch {
			if err := watchAndRun(paths, run, logger); err != nil {
				fmt.Fprintf(os.Stderr, "transform: %v\n", err)
				os.Exit(1)
			}
			return
		}
		if err := runBatchTransform(paths, opts, externsData, propmapData, flags, logger); err != nil {
			fmt.Fprintf(os.Stderr, "transform: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(flags.paths) == 0 {
		if flags.watch {
			fmt.Fprintln(os.Stderr, "transform: --watch requires at least one file path or --glob")
			os.Exit(1)
		}
		runTransformStdin(flags, opts, externsData, logger)
		return
	}

	run := func(changed []string) {
		if err := runExplicitTransform(flags.paths, opts, externsData, propmapData, flags, logger); err != nil {
			logger.Error("transform: run failed", "error", err)
		}
	}
	if flags.watch {
		if err := watchAndRun(flags.paths, run, logger); err != nil {
			fmt.Fprintf(os.Stderr, "transform: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := runExplicitTransform(flags.paths, opts, externsData, propmapData, flags, logger); err != nil {
		fmt.Fprintf(os.Stderr, "transform: %v\n", err)
		os.Exit(1)
	}
}

// runTransformStdin handles `oveo transform` with no path arguments: read
// one module from stdin, transform it, print the result to stdout. --type
// is required since there is no file extension to infer it from.
func runTransformStdin(flags cliFlags, opts optimizer.Options, externsData []byte, logger *slog.Logger) {
	if flags.moduleType == "" {
		fmt.Fprintln(os.Stderr, "transform: reading from stdin requires --type js|jsx|ts|tsx")
		os.Exit(1)
	}
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transform: read stdin: %v\n", err)
		os.Exit(1)
	}

	o := optimizer.New(opts, logger)
	defer o.Close()
	if len(externsData) > 0 {
		if err := o.ImportExterns(externsData); err != nil {
			fmt.Fprintf(os.Stderr, "transform: %v\n", err)
			os.Exit(1)
		}
	}
	res, warnings, err := o.Transform(src, flags.moduleType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transform: %v\n", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		logger.Warn(w.Message, "pass", w.Pass)
	}
	printResult(res.Code, warnings, o.ParserStats(), flags.json)
}

// runExplicitTransform runs the module phase (and, if any chunk-phase
// option is enabled, the chunk phase too, as one conceptual "file") over
// an explicit list of paths named on the command line — the non-glob
// counterpart to runBatchTransform, sharing its write-destination logic.
func runExplicitTransform(paths []string, opts optimizer.Options, externsData, propmapData []byte, flags cliFlags, logger *slog.Logger) error {
	o := optimizer.New(opts, logger)
	defer o.Close()
	if len(externsData) > 0 {
		if err := o.ImportExterns(externsData); err != nil {
			return fmt.Errorf("failed to load externs: %w", err)
		}
	}
	if len(propmapData) > 0 {
		if err := o.ImportPropertyMap(propmapData); err != nil {
			return fmt.Errorf("failed to load property map: %w", err)
		}
	}

	chunkPhaseEnabled := opts.Dedupe || opts.Globals.Hoist || opts.Globals.Singletons || opts.RenameProperties.Enabled()
	var failures int
	for _, path := range paths {
		code, err := os.ReadFile(path)
		if err != nil {
			logger.Error("transform: read failed", "path", path, "error", err)
			failures++
			continue
		}
		moduleType := flags.moduleType
		if moduleType == "" {
			moduleType, err = moduleTypeForPath(path)
			if err != nil {
				logger.Error("transform: failed", "path", path, "error", err)
				failures++
				continue
			}
		}
		res, warnings, err := o.Transform(code, moduleType)
		if err != nil {
			logger.Error("transform: failed", "path", path, "error", err)
			failures++
			continue
		}
		for _, w := range warnings {
			logger.Warn(w.Message, "pass", w.Pass, "path", path)
		}

		out := res.Code
		if chunkPhaseEnabled {
			rendered, rwarnings, err := o.RenderChunk([]byte(out))
			if err != nil {
				logger.Error("render-chunk: failed", "path", path, "error", err)
				failures++
				continue
			}
			warnings = append(warnings, rwarnings...)
			for _, w := range rwarnings {
				logger.Warn(w.Message, "pass", w.Pass, "path", path)
			}
			out = rendered.Code
		}

		if len(paths) == 1 && flags.out == "" {
			printResult(out, warnings, o.ParserStats(), flags.json)
			continue
		}
		if err := writeBatchOutput(path, out, flags.out); err != nil {
			logger.Error("transform: write failed", "path", path, "error", err)
			failures++
		}
	}

	if data, ok := o.UpdatePropertyMap(); ok && flags.propmapPath != "" {
		if err := os.WriteFile(flags.propmapPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write property map: %w", err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d file(s) failed", failures)
	}
	return nil
}
