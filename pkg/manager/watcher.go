package manager

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a rules directory tree and reports which rule
// documents changed. Bursts of events within the debounce interval
// collapse into a single notification carrying every path touched during
// the burst. The watcher takes its extension and hidden-file policy from
// the loader configuration, so it can never disagree with the loader
// about which files carry rules.
type FileWatcher struct {
	dir      string
	config   *LoaderConfig
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFileWatcher creates a watcher over the given rules directory.
func NewFileWatcher(dir string, config *LoaderConfig, debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		dir:      dir,
		config:   config,
		debounce: debounce,
		watcher:  watcher,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until the context is cancelled or Stop is called,
// invoking onChange with the sorted set of rule document paths touched
// in each debounced burst. A path in the set may no longer exist; a
// removed document is still a change the caller must apply.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func(changed []string) error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		close(fw.doneCh)
	}()

	if err := fw.watchTree(fw.dir); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	fw.logger.Info("File watcher started",
		"dir", fw.dir,
		"debounce_ms", fw.debounce.Milliseconds(),
	)

	// The pending burst: paths touched since the last notification. The
	// timer fires once the tree has been quiet for the debounce
	// interval; every new event pushes it back.
	pending := make(map[string]struct{})
	timer := time.NewTimer(fw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("File watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("File watcher stopped")
			return nil

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})

			fw.logger.Info("Applying rule file changes", "changed", changed)
			if err := onChange(changed); err != nil {
				fw.logger.Error("Rule reload failed", "error", err)
			}

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// Rule trees nest. A directory created under the watched
			// root joins the watch so its documents are seen too.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.watchTree(event.Name); err != nil {
						fw.logger.Error("Failed to watch new directory",
							"path", event.Name,
							"error", err,
						)
					}
					continue
				}
			}

			if !fw.relevant(event) {
				continue
			}

			fw.logger.Debug("File event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)

			pending[event.Name] = struct{}{}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(fw.debounce)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}

			fw.logger.Error("File watcher error", "error", err)
			// Keep watching; fsnotify errors are per event.
		}
	}
}

// Stop stops the file watcher.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	return nil
}

// watchTree registers a directory and all of its visible subdirectories.
func (fw *FileWatcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if fw.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		fw.logger.Debug("Watching directory", "path", path)
		return nil
	})
}

// relevant reports whether an event concerns a rule document. Chmod-only
// events never change document content.
func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return fw.config.IsRuleFile(event.Name)
}
