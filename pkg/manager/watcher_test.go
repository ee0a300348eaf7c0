package manager

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevantEvents(t *testing.T) {
	fw := &FileWatcher{config: DefaultLoaderConfig()}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"yaml write", fsnotify.Event{Name: "rules/a.yaml", Op: fsnotify.Write}, true},
		{"yml create", fsnotify.Event{Name: "rules/a.yml", Op: fsnotify.Create}, true},
		{"yaml remove", fsnotify.Event{Name: "rules/a.yaml", Op: fsnotify.Remove}, true},
		{"wrong extension", fsnotify.Event{Name: "rules/a.txt", Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: "rules/a.yaml", Op: fsnotify.Chmod}, false},
		{"hidden file", fsnotify.Event{Name: "rules/.a.yaml", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fw.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

// changeCollector accumulates notified paths across bursts.
type changeCollector struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	burst chan []string
}

func newChangeCollector() *changeCollector {
	return &changeCollector{
		seen:  make(map[string]struct{}),
		burst: make(chan []string, 16),
	}
}

func (c *changeCollector) onChange(changed []string) error {
	c.mu.Lock()
	for _, path := range changed {
		c.seen[path] = struct{}{}
	}
	c.mu.Unlock()
	c.burst <- changed
	return nil
}

func (c *changeCollector) waitFor(t *testing.T, paths ...string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		c.mu.Lock()
		missing := 0
		for _, path := range paths {
			if _, ok := c.seen[path]; !ok {
				missing++
			}
		}
		c.mu.Unlock()
		if missing == 0 {
			return
		}
		select {
		case <-c.burst:
		case <-deadline:
			t.Fatalf("Timed out waiting for change notifications, have %v", c.seen)
		}
	}
}

func startWatcher(t *testing.T, dir string, onChange func([]string) error) *FileWatcher {
	t.Helper()

	fw, err := NewFileWatcher(dir, DefaultLoaderConfig(), 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = fw.Watch(ctx, onChange)
	}()
	t.Cleanup(func() {
		cancel()
		_ = fw.Stop()
	})

	// Give the watcher time to register the directory tree.
	time.Sleep(100 * time.Millisecond)

	return fw
}

func TestWatchReportsChangedPaths(t *testing.T) {
	dir := t.TempDir()
	collector := newChangeCollector()
	startWatcher(t, dir, collector.onChange)

	path := writeRuleFile(t, dir, "trigger.yaml", validDoc)
	collector.waitFor(t, path)
}

func TestWatchCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	collector := newChangeCollector()
	startWatcher(t, dir, collector.onChange)

	a := writeRuleFile(t, dir, "a.yaml", validDoc)
	b := writeRuleFile(t, dir, "b.yaml", validDoc)
	c := writeRuleFile(t, dir, "c.yaml", validDoc)
	collector.waitFor(t, a, b, c)

	// Each burst arrives sorted and without duplicates.
	for {
		select {
		case changed := <-collector.burst:
			if !sort.StringsAreSorted(changed) {
				t.Errorf("burst not sorted: %v", changed)
			}
			seen := make(map[string]struct{}, len(changed))
			for _, path := range changed {
				if _, dup := seen[path]; dup {
					t.Errorf("duplicate path in burst: %v", changed)
				}
				seen[path] = struct{}{}
			}
		default:
			return
		}
	}
}

func TestWatchSeesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	collector := newChangeCollector()
	startWatcher(t, dir, collector.onChange)

	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	// Let the watcher pick up the new directory before writing into it.
	time.Sleep(200 * time.Millisecond)

	path := writeRuleFile(t, sub, "deep.yaml", validDoc)
	collector.waitFor(t, path)
}

func TestWatchSkipsIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	collector := newChangeCollector()
	startWatcher(t, dir, collector.onChange)

	writeRuleFile(t, dir, "notes.txt", "not a rule")
	writeRuleFile(t, dir, ".hidden.yaml", validDoc)
	path := writeRuleFile(t, dir, "real.yaml", validDoc)

	collector.waitFor(t, path)

	collector.mu.Lock()
	defer collector.mu.Unlock()
	if len(collector.seen) != 1 {
		t.Errorf("Expected only the rule file to be reported, got %v", collector.seen)
	}
}

func TestFileWatcherStopBeforeWatch(t *testing.T) {
	fw, err := NewFileWatcher(t.TempDir(), nil, 0, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	if err := fw.Stop(); err != nil {
		t.Errorf("Stop on idle watcher failed: %v", err)
	}
}
