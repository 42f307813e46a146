// Package loc is the line-statistics service: given a file and its
// classified language it returns the authoritative count of code lines
// (non-blank, non-comment). The pipeline depends only on the Service
// interface so tests can substitute a canned implementation.
package loc

import (
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cyclomap/cyclo/internal/errors"
	"github.com/cyclomap/cyclo/internal/lang"
)

// Service returns the code-line count attributed to one file under its
// classified language.
type Service interface {
	CodeLines(path string, language lang.Language) (int, error)
}

// commentSyntax describes how a language writes comments for line
// counting purposes. Distinct from lang.Profile: the estimator's comment
// markers are an intentionally coarse discard filter, while counting needs
// block-comment state to attribute lines correctly.
type commentSyntax struct {
	line       string
	blockStart string
	blockEnd   string
}

var syntaxes = map[lang.Language]commentSyntax{
	lang.C:          {line: "//", blockStart: "/*", blockEnd: "*/"},
	lang.Cpp:        {line: "//", blockStart: "/*", blockEnd: "*/"},
	lang.JavaScript: {line: "//", blockStart: "/*", blockEnd: "*/"},
	lang.Python:     {line: "#"},
}

// DefaultCacheSize bounds the per-run result cache. Watch-mode re-runs
// re-read every file; unchanged content hits the cache instead of being
// recounted.
const DefaultCacheSize = 4096

// Counter is the default Service implementation. Results are cached by a
// hash of language and file content, so the cache stays correct when a
// file is rewritten between runs.
type Counter struct {
	cache *lru.Cache[uint64, int]
}

// NewCounter creates a counter with the default cache size.
func NewCounter() *Counter {
	return NewCounterWithSize(DefaultCacheSize)
}

// NewCounterWithSize creates a counter with a bounded result cache.
func NewCounterWithSize(size int) *Counter {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails on a non-positive size
	cache, _ := lru.New[uint64, int](size)
	return &Counter{cache: cache}
}

// CodeLines implements Service.
func (c *Counter) CodeLines(path string, language lang.Language) (int, error) {
	syntax, ok := syntaxes[language]
	if !ok {
		return 0, errors.NewStatsUnavailableError(path, string(language), nil)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.NewFileReadError("read", path, err)
	}

	key := cacheKey(language, content)
	if n, ok := c.cache.Get(key); ok {
		return n, nil
	}

	n := countCode(string(content), syntax)
	c.cache.Add(key, n)
	return n, nil
}

func cacheKey(language lang.Language, content []byte) uint64 {
	d := xxhash.New()
	d.WriteString(string(language))
	d.WriteString("\x00")
	d.Write(content)
	return d.Sum64()
}

// countCode counts non-blank lines that contain something other than
// comment text. Block comments carry state across lines; a line holding
// both code and a comment counts as code.
func countCode(content string, syntax commentSyntax) int {
	count := 0
	inBlock := false

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if inBlock {
			end := strings.Index(line, syntax.blockEnd)
			if end < 0 {
				continue
			}
			inBlock = false
			line = strings.TrimSpace(line[end+len(syntax.blockEnd):])
			if line == "" {
				continue
			}
		}

		code, opensBlock := stripComments(line, syntax)
		inBlock = opensBlock
		if code != "" {
			count++
		}
	}

	return count
}

// stripComments removes comment text from a single line and reports
// whether the line opens a block comment that continues past it.
func stripComments(line string, syntax commentSyntax) (code string, inBlock bool) {
	var b strings.Builder

	for line != "" {
		lineIdx := -1
		if syntax.line != "" {
			lineIdx = strings.Index(line, syntax.line)
		}
		blockIdx := -1
		if syntax.blockStart != "" {
			blockIdx = strings.Index(line, syntax.blockStart)
		}

		// No comment markers left
		if lineIdx < 0 && blockIdx < 0 {
			b.WriteString(line)
			break
		}

		// Line comment comes first: the rest of the line is comment
		if lineIdx >= 0 && (blockIdx < 0 || lineIdx < blockIdx) {
			b.WriteString(line[:lineIdx])
			break
		}

		// Block comment comes first
		b.WriteString(line[:blockIdx])
		rest := line[blockIdx+len(syntax.blockStart):]
		end := strings.Index(rest, syntax.blockEnd)
		if end < 0 {
			return strings.TrimSpace(b.String()), true
		}
		line = rest[end+len(syntax.blockEnd):]
	}

	return strings.TrimSpace(b.String()), false
}
