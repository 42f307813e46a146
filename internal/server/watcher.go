package server

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cyclomap/cyclo/internal/debug"
)

// TreeWatcher watches the analysis root and triggers a full re-run after
// a quiet period. Every trigger is a complete fresh analysis; nothing is
// patched incrementally.
type TreeWatcher struct {
	watcher  *fsnotify.Watcher
	root     string
	skip     string // the output dir, never watched to avoid rebuild loops
	debounce time.Duration
	rebuild  func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// NewTreeWatcher creates a watcher over root. skipDir (usually the output
// bundle) is excluded so rendering does not retrigger analysis. rebuild
// runs on the watcher goroutine after the debounce window closes.
func NewTreeWatcher(root, skipDir string, debounceMs int, rebuild func()) (*TreeWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounceMs <= 0 {
		debounceMs = 300
	}

	ctx, cancel := context.WithCancel(context.Background())
	tw := &TreeWatcher{
		watcher:  watcher,
		root:     filepath.Clean(root),
		skip:     filepath.Clean(skipDir),
		debounce: time.Duration(debounceMs) * time.Millisecond,
		rebuild:  rebuild,
		ctx:      ctx,
		cancel:   cancel,
	}
	return tw, nil
}

// Start registers the directory tree and begins processing events.
func (tw *TreeWatcher) Start() error {
	if err := tw.addTree(tw.root); err != nil {
		return err
	}

	tw.wg.Add(1)
	go tw.loop()
	return nil
}

// Close stops the watcher and waits for the event loop to exit. No
// rebuild can start after Close returns: fire runs the rebuild under
// tw.mu, so taking the lock here waits out an in-flight rebuild and the
// closed flag turns away any timer that fires later.
func (tw *TreeWatcher) Close() error {
	tw.cancel()
	err := tw.watcher.Close()
	tw.wg.Wait()

	tw.mu.Lock()
	tw.closed = true
	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.mu.Unlock()
	return err
}

// addTree watches dir and every non-hidden subdirectory under it.
func (tw *TreeWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.LogServe("watch: skipping %s: %v\n", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if path == tw.skip {
			return fs.SkipDir
		}
		if err := tw.watcher.Add(path); err != nil {
			debug.LogServe("watch: cannot watch %s: %v\n", path, err)
		}
		return nil
	})
}

func (tw *TreeWatcher) loop() {
	defer tw.wg.Done()

	for {
		select {
		case <-tw.ctx.Done():
			return

		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if tw.ignore(event.Name) {
				continue
			}
			// New directories must be added to the watch set before their
			// contents generate events we would miss.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					tw.addTree(event.Name) //nolint:errcheck
				}
			}
			debug.LogServe("watch: %s %s\n", event.Op, event.Name)
			tw.schedule()

		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			debug.LogServe("watch error: %v\n", err)
		}
	}
}

// ignore filters events from hidden entries and the output dir.
func (tw *TreeWatcher) ignore(path string) bool {
	clean := filepath.Clean(path)
	if clean == tw.skip || strings.HasPrefix(clean, tw.skip+string(filepath.Separator)) {
		return true
	}
	base := filepath.Base(clean)
	return strings.HasPrefix(base, ".")
}

// schedule resets the debounce timer; the rebuild fires once after the
// last event in a burst.
func (tw *TreeWatcher) schedule() {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return
	}
	if tw.timer != nil {
		tw.timer.Stop()
	}
	tw.timer = time.AfterFunc(tw.debounce, tw.fire)
}

// fire runs the debounced rebuild. Holding tw.mu for the duration lets
// Close serialize against it.
func (tw *TreeWatcher) fire() {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return
	}
	debug.LogServe("watch: rebuilding\n")
	tw.rebuild()
}
