// Package render serializes analysis results into the static treemap
// bundle: a Plotly data file, an HTML shell that loads it, and an optional
// plain-text debug dump.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyclomap/cyclo/internal/tree"
)

// DataFile is the treemap data artifact, relative to the bundle dir.
const DataFile = "scripts/cyclo.js"

// IndexFile is the HTML shell, relative to the bundle dir.
const IndexFile = "index.html"

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>cyclo</title>
    <script src="https://cdn.plot.ly/plotly-2.32.0.min.js"></script>
</head>
<body>
    <div id="treemap"></div>
    <script src="scripts/cyclo.js"></script>
    <script>
        Plotly.newPlot("treemap", jsondata, {margin: {t: 30, l: 10, r: 10, b: 10}});
    </script>
</body>
</html>
`

// WriteTreemap writes the declarative chart description and the HTML
// shell into dir, creating it as needed. The data file declares a global
// jsondata variable in the exact shape Plotly's treemap trace expects,
// with the mean complexity as the color-scale midpoint.
func WriteTreemap(dir string, a *tree.Arrays) error {
	data, err := treemapJS(a)
	if err != nil {
		return err
	}

	scriptsDir := filepath.Join(dir, filepath.Dir(DataFile))
	if err := os.MkdirAll(scriptsDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", scriptsDir, err)
	}

	if err := os.WriteFile(filepath.Join(dir, DataFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write treemap data: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, IndexFile), []byte(indexHTML), 0644); err != nil {
		return fmt.Errorf("failed to write index page: %w", err)
	}
	return nil
}

// treemapJS renders the jsondata declaration.
func treemapJS(a *tree.Arrays) ([]byte, error) {
	values, err := json.Marshal(a.Lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode values: %w", err)
	}
	labels, err := json.Marshal(a.Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to encode labels: %w", err)
	}
	parents, err := json.Marshal(a.Parents)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parents: %w", err)
	}
	colors, err := json.Marshal(a.Complexity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode colors: %w", err)
	}

	var b strings.Builder
	b.WriteString("var jsondata = [{\n")
	b.WriteString("        type: \"treemap\",\n")
	fmt.Fprintf(&b, "        values: %s,\n", values)
	fmt.Fprintf(&b, "        labels: %s,\n", labels)
	fmt.Fprintf(&b, "        parents: %s,\n", parents)
	fmt.Fprintf(&b, "        marker: {colors: %s, cmid: %.2f, colorscale: \"Blues\"}\n", colors, a.MeanComplexity)
	b.WriteString("}]\n")
	return []byte(b.String()), nil
}

// WriteDebug writes one line per node, in array order, to path.
func WriteDebug(path string, a *tree.Arrays) error {
	var b strings.Builder
	for i := range a.Labels {
		fmt.Fprintf(&b, "file: %q, nloc: %d, cc: %g\n", a.Labels[i], a.Lines[i], a.Complexity[i])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write debug dump: %w", err)
	}
	return nil
}
