package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root, skip string, rebuilds chan struct{}) *TreeWatcher {
	t.Helper()
	tw, err := NewTreeWatcher(root, skip, 50, func() {
		select {
		case rebuilds <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	require.NoError(t, tw.Start())
	t.Cleanup(func() {
		_ = tw.Close()
	})
	return tw
}

func expectRebuild(t *testing.T, rebuilds chan struct{}) {
	t.Helper()
	select {
	case <-rebuilds:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a rebuild after a tree change")
	}
}

func expectNoRebuild(t *testing.T, rebuilds chan struct{}) {
	t.Helper()
	select {
	case <-rebuilds:
		t.Fatal("unexpected rebuild")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherTriggersRebuildOnChange(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "html")
	rebuilds := make(chan struct{}, 1)
	startWatcher(t, root, out, rebuilds)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.c"), []byte("int x;\n"), 0644))
	expectRebuild(t, rebuilds)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "html")
	rebuilds := make(chan struct{}, 16)
	startWatcher(t, root, out, rebuilds)

	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "burst.c")
		require.NoError(t, os.WriteFile(name, []byte("int x;\n"), 0644))
	}

	expectRebuild(t, rebuilds)
	// The burst collapses into one rebuild
	expectNoRebuild(t, rebuilds)
}

func TestWatcherIgnoresOutputDir(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "html")
	require.NoError(t, os.MkdirAll(out, 0755))
	rebuilds := make(chan struct{}, 1)
	startWatcher(t, root, out, rebuilds)

	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("x"), 0644))
	expectNoRebuild(t, rebuilds)
}

func TestWatcherIgnoresHiddenEntries(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "html")
	rebuilds := make(chan struct{}, 1)
	startWatcher(t, root, out, rebuilds)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".swapfile"), []byte("x"), 0644))
	expectNoRebuild(t, rebuilds)
}

func TestWatcherCloseStopsPendingRebuild(t *testing.T) {
	root := t.TempDir()
	rebuilds := make(chan struct{}, 1)
	tw, err := NewTreeWatcher(root, filepath.Join(t.TempDir(), "html"), 500, func() {
		rebuilds <- struct{}{}
	})
	require.NoError(t, err)
	require.NoError(t, tw.Start())

	// Queue a change, then close well inside the debounce window
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.c"), []byte("int x;\n"), 0644))
	require.NoError(t, tw.Close())

	select {
	case <-rebuilds:
		t.Fatal("rebuild fired after Close")
	case <-time.After(700 * time.Millisecond):
	}
}

func TestWatcherNoRebuildStartsAfterClose(t *testing.T) {
	root := t.TempDir()
	rebuilds := make(chan struct{}, 16)
	tw, err := NewTreeWatcher(root, filepath.Join(t.TempDir(), "html"), 1, func() {
		rebuilds <- struct{}{}
	})
	require.NoError(t, err)
	require.NoError(t, tw.Start())

	// Race the debounce timer against shutdown
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.c"), []byte("int x;\n"), 0644))
	require.NoError(t, tw.Close())

	// A rebuild may have completed before Close returned; none may start
	// afterwards.
	for len(rebuilds) > 0 {
		<-rebuilds
	}
	select {
	case <-rebuilds:
		t.Fatal("rebuild started after Close returned")
	case <-time.After(200 * time.Millisecond):
	}
}
