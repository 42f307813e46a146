package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyclomap/cyclo/internal/tree"
)

func sampleArrays() *tree.Arrays {
	return &tree.Arrays{
		Lines:          []int{42, 0, 7},
		Complexity:     []float64{10, 0, 4},
		Labels:         []string{"proj/a.c", "proj", "proj/sub/b.py"},
		Parents:        []string{"proj", "", "proj/sub"},
		MeanComplexity: 14.0 / 3.0,
	}
}

func TestWriteTreemap(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "html")
	require.NoError(t, WriteTreemap(dir, sampleArrays()))

	data, err := os.ReadFile(filepath.Join(dir, DataFile))
	require.NoError(t, err)
	js := string(data)

	assert.Contains(t, js, "var jsondata = [{")
	assert.Contains(t, js, `type: "treemap"`)
	assert.Contains(t, js, `values: [42,0,7]`)
	assert.Contains(t, js, `labels: ["proj/a.c","proj","proj/sub/b.py"]`)
	assert.Contains(t, js, `parents: ["proj","","proj/sub"]`)
	assert.Contains(t, js, `colors: [10,0,4]`)
	assert.Contains(t, js, "cmid: 4.67")
	assert.Contains(t, js, `colorscale: "Blues"`)

	index, err := os.ReadFile(filepath.Join(dir, IndexFile))
	require.NoError(t, err)
	assert.Contains(t, string(index), "scripts/cyclo.js")
	assert.Contains(t, string(index), "treemap")
}

func TestWriteTreemapCreatesNestedDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deeply", "nested", "out")
	require.NoError(t, WriteTreemap(dir, sampleArrays()))

	_, err := os.Stat(filepath.Join(dir, "scripts", "cyclo.js"))
	assert.NoError(t, err)
}

func TestWriteDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.txt")
	require.NoError(t, WriteDebug(path, sampleArrays()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	expected := `file: "proj/a.c", nloc: 42, cc: 10
file: "proj", nloc: 0, cc: 0
file: "proj/sub/b.py", nloc: 7, cc: 4
`
	assert.Equal(t, expected, string(data))
}
