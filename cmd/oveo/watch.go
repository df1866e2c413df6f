package main

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce mirrors the teacher's FileWatcher default debounce window:
// editors and formatters commonly fire several write events for one save,
// and re-running a batch transform per event would just waste CPU.
const watchDebounce = 200 * time.Millisecond

// watchAndRun sets up an fsnotify watch over every directory containing a
// path in paths, debounces write/create events, and calls run with the set
// of changed paths (restricted to ones in the original path list) after
// each quiet period. It blocks until the watcher errors or the process is
// killed; logger receives watch-loop diagnostics, run handles its own.
func watchAndRun(paths []string, run func(changed []string), logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	tracked := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		tracked[p] = true
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("watch: failed to add directory", "dir", dir, "error", err)
		}
	}

	run(paths) // initial run before waiting on any event, matching a fresh build

	pending := make(map[string]bool)
	var deadline <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !tracked[event.Name] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[event.Name] = true
			deadline = time.After(watchDebounce)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch: error", "error", werr)

		case <-deadline:
			deadline = nil
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			pending = make(map[string]bool)
			run(changed)
		}
	}
}
