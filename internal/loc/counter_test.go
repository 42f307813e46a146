package loc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cycloerrors "github.com/cyclomap/cyclo/internal/errors"
	"github.com/cyclomap/cyclo/internal/lang"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCodeLinesC(t *testing.T) {
	src := `// header
/* block
   comment */
int main(void)
{
    int x = 0; /* inline */

    return x;
}
`
	path := writeFile(t, "main.c", src)
	n, err := NewCounter().CodeLines(path, lang.C)
	require.NoError(t, err)
	// main, {, int x (code before inline comment), return, }
	assert.Equal(t, 5, n)
}

func TestCodeLinesPython(t *testing.T) {
	src := `# comment
def f():

    return 1  # trailing
`
	path := writeFile(t, "f.py", src)
	n, err := NewCounter().CodeLines(path, lang.Python)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCodeLinesBlockCommentSpanningLines(t *testing.T) {
	src := `a = 1; /* starts here
still comment
ends */ b = 2;
c = 3;
`
	path := writeFile(t, "a.js", src)
	n, err := NewCounter().CodeLines(path, lang.JavaScript)
	require.NoError(t, err)
	// a = 1, b = 2 (after the block ends), c = 3
	assert.Equal(t, 3, n)
}

func TestCodeLinesUnknownLanguage(t *testing.T) {
	path := writeFile(t, "x.c", "int x;\n")
	_, err := NewCounter().CodeLines(path, lang.Unknown)
	require.Error(t, err)

	var stats *cycloerrors.StatsUnavailableError
	assert.ErrorAs(t, err, &stats)
}

func TestCodeLinesMissingFile(t *testing.T) {
	_, err := NewCounter().CodeLines(filepath.Join(t.TempDir(), "missing.c"), lang.C)
	require.Error(t, err)

	var readErr *cycloerrors.FileReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestCodeLinesCacheHitsOnUnchangedContent(t *testing.T) {
	counter := NewCounterWithSize(8)
	path := writeFile(t, "main.c", "int x;\nint y;\n")

	first, err := counter.CodeLines(path, lang.C)
	require.NoError(t, err)
	second, err := counter.CodeLines(path, lang.C)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, counter.cache.Len())
}

func TestCodeLinesCacheKeyedByContent(t *testing.T) {
	counter := NewCounterWithSize(8)
	path := writeFile(t, "main.c", "int x;\n")

	n, err := counter.CodeLines(path, lang.C)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Rewriting the file changes the key, so the stale count is not
	// served.
	require.NoError(t, os.WriteFile(path, []byte("int x;\nint y;\nint z;\n"), 0644))
	n, err = counter.CodeLines(path, lang.C)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCountCodePureCommentFileIsZero(t *testing.T) {
	path := writeFile(t, "doc.c", "// one\n// two\n\n")
	n, err := NewCounter().CodeLines(path, lang.C)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
