package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oveo-dev/oveo/pkg/optimizer"
	"github.com/oveo-dev/oveo/pkg/parser"
	"github.com/oveo-dev/oveo/pkg/util"
)

// discoverFiles walks the current directory applying the include glob and
// optional exclude glob, mirroring the teacher's doublestar-based workspace
// discovery.
func discoverFiles(includeGlob, excludeGlob string) ([]string, error) {
	if !doublestar.ValidatePattern(includeGlob) {
		return nil, fmt.Errorf("invalid glob pattern: %s", includeGlob)
	}
	if excludeGlob != "" && !doublestar.ValidatePattern(excludeGlob) {
		return nil, fmt.Errorf("invalid exclude pattern: %s", excludeGlob)
	}

	matches, err := doublestar.Glob(os.DirFS("."), includeGlob)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", includeGlob, err)
	}

	var out []string
	for _, m := range matches {
		if excludeGlob != "" {
			if matched, _ := doublestar.Match(excludeGlob, m); matched {
				continue
			}
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

// moduleTypeForPath infers moduleType from a file extension, used by batch
// mode when --type isn't given explicitly. Delegates to pkg/parser, which
// owns the file-extension-to-grammar mapping the parser pool itself keys on.
func moduleTypeForPath(path string) (string, error) {
	moduleType, ok := parser.ModuleTypeForPath(path)
	if !ok {
		return "", fmt.Errorf("cannot infer module type from %q, pass --type", path)
	}
	return moduleType, nil
}

// transformJob is one file to transform in a batch run.
type transformJob struct {
	path string
	idx  int
}

type transformJobResult struct {
	idx  int
	path string
	code string
	err  error
}

// runBatchTransform parses opts once, fans the module-phase Transform pass
// out across a worker pool — one Optimizer per worker, since Transform
// carries no cross-file mutable state — and then, if any chunk-phase option
// (dedupe, globals hoist, singletons, rename-properties) is enabled, runs
// RenderChunk sequentially against a single shared Optimizer so the
// property-map allocator stays consistent across every file. Results
// are written either in place or under --out, mirroring the source tree.
func runBatchTransform(paths []string, opts optimizer.Options, externsData []byte, propmapData []byte, flags cliFlags, logger *slog.Logger) error {
	numWorkers := util.GetOptimalPoolSizeWithOverride(flags.workers)
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	jobs := make(chan transformJob, numWorkers*2)
	results := make(chan transformJobResult, numWorkers)

	// A single shared FileCache, not one per worker: the cache is internally
	// synchronized (sync.RWMutex) and memory-mapping is the expensive part,
	// so sharing it avoids every worker separately mmap'ing a file another
	// worker already mapped.
	cache := util.NewFileCache(util.UnboundedFileCacheConfig())
	defer cache.Close()

	var wg sync.WaitGroup
	var failed atomic.Int64
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := optimizer.New(opts, logger)
			defer o.Close()
			if len(externsData) > 0 {
				if err := o.ImportExterns(externsData); err != nil {
					logger.Error("worker: failed to load externs", "error", err)
				}
			}
			for job := range jobs {
				mf, err := cache.Get(job.path)
				if err != nil {
					results <- transformJobResult{idx: job.idx, path: job.path, err: fmt.Errorf("read %q: %w", job.path, err)}
					failed.Add(1)
					continue
				}
				code := []byte(mf.Data)
				moduleType := flags.moduleType
				if moduleType == "" {
					moduleType, err = moduleTypeForPath(job.path)
					if err != nil {
						results <- transformJobResult{idx: job.idx, path: job.path, err: err}
						failed.Add(1)
						continue
					}
				}
				res, _, err := o.Transform(code, moduleType)
				if err != nil {
					results <- transformJobResult{idx: job.idx, path: job.path, err: fmt.Errorf("transform %q: %w", job.path, err)}
					failed.Add(1)
					continue
				}
				results <- transformJobResult{idx: job.idx, path: job.path, code: res.Code}
			}
		}()
	}

	go func() {
		for i, p := range paths {
			jobs <- transformJob{path: p, idx: i}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]transformJobResult, len(paths))
	for r := range results {
		ordered[r.idx] = r
	}

	renderer := optimizer.New(opts, logger)
	defer renderer.Close()
	if len(externsData) > 0 {
		if err := renderer.ImportExterns(externsData); err != nil {
			return fmt.Errorf("failed to load externs: %w", err)
		}
	}
	if len(propmapData) > 0 {
		if err := renderer.ImportPropertyMap(propmapData); err != nil {
			return fmt.Errorf("failed to load property map: %w", err)
		}
	}

	for _, r := range ordered {
		if r.err != nil {
			logger.Error("batch transform failed", "path", r.path, "error", r.err)
			continue
		}
		code := r.code
		if opts.Dedupe || opts.Globals.Hoist || opts.Globals.Singletons || opts.RenameProperties.Enabled() {
			rendered, _, err := renderer.RenderChunk([]byte(code))
			if err != nil {
				logger.Error("batch render-chunk failed", "path", r.path, "error", err)
				continue
			}
			code = rendered.Code
		}
		if err := writeBatchOutput(r.path, code, flags.out); err != nil {
			logger.Error("failed to write output", "path", r.path, "error", err)
		}
	}

	if data, ok := renderer.UpdatePropertyMap(); ok && flags.propmapPath != "" {
		if err := os.WriteFile(flags.propmapPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write property map: %w", err)
		}
	}

	cs := cache.Stats()
	logger.Debug("batch file cache summary",
		"files_cached", cache.Size(),
		"cache_hits", cs.CacheHits,
		"cache_misses", cs.CacheMisses,
		"mmap_failures", cs.MmapFailures)

	if failed.Load() > 0 {
		return fmt.Errorf("%d file(s) failed", failed.Load())
	}
	return nil
}

func writeBatchOutput(srcPath, code, outDir string) error {
	if outDir == "" {
		return os.WriteFile(srcPath, []byte(code), 0644)
	}
	dest := filepath.Join(outDir, srcPath)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(code), 0644)
}
