package analysis

import (
	"bufio"
	"io"
	"strings"

	"github.com/cyclomap/cyclo/internal/lang"
)

// Result holds the heuristic complexity signal for a single file.
type Result struct {
	// Complexity is the raw score: statement-keyword lines plus logical
	// operator occurrences. It is the value shown on the treemap.
	Complexity float64

	// Functions is the estimated number of function definitions, counted
	// as lines containing the profile's function marker. It is reported
	// for diagnostics but does not normalize Complexity.
	Functions int
}

// MeanPerFunction returns Complexity divided by the function estimate, or
// 0 when no functions were detected. The treemap uses the raw score; this
// derived mean exists for the debug dump and future tooling.
func (r Result) MeanPerFunction() float64 {
	if r.Functions == 0 {
		return 0
	}
	return r.Complexity / float64(r.Functions)
}

// Estimate scans the file's lines with the language profile and produces
// an approximate complexity score. The scan works line by line:
//
//  1. Lines containing any comment marker as a literal substring are
//     discarded entirely. This intentionally misclassifies code lines
//     that merely contain a marker.
//  2. Surviving lines contribute one count per logical-operator marker
//     they contain, and one function count if they contain the function
//     marker.
//  3. Surviving lines containing at least one statement keyword count
//     once toward the score.
//
// The score is the statement-line count plus the operator count.
func Estimate(r io.Reader, p lang.Profile) (Result, error) {
	var (
		statementLines int
		operatorCount  int
		functionCount  int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if containsAny(line, p.Comments) {
			continue
		}

		// One count per marker per line, not per occurrence. A line with
		// both "&&" and "||" contributes to both markers.
		for _, op := range p.LogicalOps {
			if strings.Contains(line, op) {
				operatorCount++
			}
		}

		if strings.Contains(line, p.FunctionDef) {
			functionCount++
		}

		if containsAny(line, p.Statements) {
			statementLines++
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, err
	}

	return Result{
		Complexity: float64(statementLines + operatorCount),
		Functions:  functionCount,
	}, nil
}

func containsAny(line string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}
