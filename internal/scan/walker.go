package scan

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cyclomap/cyclo/internal/debug"
	"github.com/cyclomap/cyclo/internal/lang"
)

// Entry is one analyzable file found under the walk root.
type Entry struct {
	// Path is the filesystem path as walked, suitable for opening.
	Path string

	// Rel is the slash-separated path relative to the root's parent, so it
	// always begins with the root's own name ("proj/sub/b.py"). This is
	// the component sequence the hierarchy builder consumes; the file's
	// depth under the root is its component count minus one.
	Rel string
}

// Walker enumerates analyzable files depth-first under a root.
type Walker struct {
	root     string
	excludes []string
}

// NewWalker creates a walker for root. Exclude patterns are doublestar
// globs matched against the root-relative slash path.
func NewWalker(root string, excludes []string) *Walker {
	return &Walker{root: filepath.Clean(root), excludes: excludes}
}

// Walk calls fn for every entry that survives filtering, in depth-first
// order. Sibling order is filesystem-dependent; callers must not rely on
// it. Filters, in order:
//
//   - entries whose own name begins with "." are skipped, pruning whole
//     hidden subtrees (the root itself is exempt so "." works as a root)
//   - files whose name does not end in a recognized extension
//   - files matching a configured exclude pattern
//
// Unreadable directories are logged and skipped rather than aborting the
// walk.
func (w *Walker) Walk(fn func(Entry) error) error {
	rootBase := filepath.Base(w.root)

	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.LogScan("skipping unreadable entry %s: %v\n", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !lang.ValidExtension(d.Name()) {
			return nil
		}

		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			debug.LogScan("cannot relativize %s: %v\n", path, relErr)
			return nil
		}
		rel = filepath.ToSlash(rel)

		if w.excluded(rel) {
			debug.LogScan("excluded by pattern: %s\n", rel)
			return nil
		}

		entry := Entry{
			Path: path,
			Rel:  rootBase + "/" + rel,
		}
		return fn(entry)
	})
}

// excluded checks the root-relative path against the exclude globs.
func (w *Walker) excluded(rel string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			// Invalid pattern never matches
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
