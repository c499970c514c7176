package cli

// This file contains the watch command: a recursive fsnotify watcher feeding
// debounced change batches through the dependency graph.

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/specgo/specgo/depgraph"
)

func (a *App) watch(ctx *cli.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	manifestPath := cfg.Manifest
	if override := ctx.String("manifest"); override != "" {
		manifestPath = override
	}
	manifest, err := depgraph.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	graph := manifest.BuildGraph()

	root := ctx.String("root")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root); err != nil {
		return err
	}

	deb := newDebouncer(cfg.Watch.Debounce, cfg.Watch.MaxBatch, func(paths []string) {
		relevant := filterPatterns(paths, cfg.Patterns)
		if len(relevant) == 0 {
			return
		}
		specs := graph.AffectedSpecs(relevant)
		a.logger.Info().
			Int("changed", len(relevant)).
			Int("affected", len(specs)).
			Msg("Change batch")
		for _, s := range specs {
			fmt.Println(s)
		}
	})
	defer deb.Stop()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info().Str("root", root).Msg("Watching for changes")

	for {
		select {
		case <-runCtx.Done():
			a.logger.Info().Msg("Watch stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need to be watched too.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						a.logger.Warn().Err(err).Str("path", event.Name).Msg("Failed to watch new directory")
					}
					continue
				}
			}
			deb.Add(filepath.ToSlash(event.Name))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// addRecursive watches root and every subdirectory, skipping VCS and
// tool-owned directories.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (name == ".git" || name == ".specgo" || strings.HasPrefix(name, "_")) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// debouncer collapses bursts of file events into one batch per quiet window.
type debouncer struct {
	window   time.Duration
	maxBatch int
	onFlush  func([]string)

	mu      sync.Mutex
	paths   map[string]struct{}
	timer   *time.Timer
	stopped bool
}

func newDebouncer(window time.Duration, maxBatch int, onFlush func([]string)) *debouncer {
	return &debouncer{
		window:   window,
		maxBatch: maxBatch,
		paths:    make(map[string]struct{}),
		onFlush:  onFlush,
	}
}

func (d *debouncer) Add(path string) {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.paths[path] = struct{}{}

	if d.maxBatch > 0 && len(d.paths) >= d.maxBatch {
		d.flushLocked()
		return
	}

	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if !d.stopped {
			d.flushLocked()
		} else {
			d.mu.Unlock()
		}
	})

	d.mu.Unlock()
}

// flushLocked is called with the mutex held and releases it.
func (d *debouncer) flushLocked() {
	paths := make([]string, 0, len(d.paths))
	for p := range d.paths {
		paths = append(paths, p)
	}
	d.paths = make(map[string]struct{})

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.mu.Unlock()

	if len(paths) > 0 && d.onFlush != nil {
		d.onFlush(paths)
	}
}

func (d *debouncer) Stop() {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if len(d.paths) > 0 {
		d.flushLocked()
	} else {
		d.mu.Unlock()
	}
}
