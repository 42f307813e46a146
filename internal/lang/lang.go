package lang

import (
	"path/filepath"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/cyclomap/cyclo/internal/errors"
)

// Language is the tag a file is classified under
type Language string

const (
	C          Language = "c"
	Cpp        Language = "cpp"
	Python     Language = "py"
	JavaScript Language = "js"
	Unknown    Language = ""
)

// Profile holds the marker strings used to heuristically scan one
// language's source files. Profiles are values: copy freely, never mutate.
type Profile struct {
	// Comments are markers that cause a whole line to be discarded before
	// keyword scanning. Substring matching can misfire on code that merely
	// contains a marker (a string literal with "//" in it); that
	// approximation is deliberate.
	Comments []string

	// Statements are decision/branch keywords. A retained line containing
	// any of them counts once toward the complexity score.
	Statements []string

	// LogicalOps are markers counted once per marker per line.
	LogicalOps []string

	// FunctionDef is the single marker used to estimate the number of
	// function definitions in a file.
	FunctionDef string
}

// profiles maps each supported language to its immutable marker sets.
// The C and C++ profiles are identical; Python counts word operators.
var profiles = map[Language]Profile{
	C: {
		Comments:    []string{"//", "/*", "*/", "*", "///"},
		Statements:  []string{"if(", "if (", "for(", "for (", "while(", "while (", "switch", "break", "goto"},
		LogicalOps:  []string{"&&", "||"},
		FunctionDef: "return",
	},
	Cpp: {
		Comments:    []string{"//", "/*", "*/", "*", "///"},
		Statements:  []string{"if(", "if (", "for(", "for (", "while(", "while (", "switch", "break", "goto"},
		LogicalOps:  []string{"&&", "||"},
		FunctionDef: "return",
	},
	Python: {
		Comments:    []string{"#"},
		Statements:  []string{"if", "for", "while", "break"},
		LogicalOps:  []string{"and", "or", "not"},
		FunctionDef: "def ",
	},
	JavaScript: {
		Comments:    []string{"//", "*/", "/*"},
		Statements:  []string{"if", "for", "while"},
		LogicalOps:  []string{"&&", "||"},
		FunctionDef: "function",
	},
}

// extensions maps recognized file extensions (case-sensitive, exact suffix
// match) to language tags. The three C++ spellings all map to one profile.
var extensions = map[string]Language{
	".c":   C,
	".cpp": Cpp,
	".cc":  Cpp,
	".cxx": Cpp,
	".py":  Python,
	".js":  JavaScript,
}

// suggestionThreshold is the minimum Jaro-Winkler similarity before an
// unknown extension gets a "did you mean" suggestion.
const suggestionThreshold = 0.80

// ValidExtension reports whether a filename ends with one of the
// recognized extensions. This is the coarse filter the walker applies;
// Classify performs the authoritative lookup.
func ValidExtension(name string) bool {
	for ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Extensions returns the recognized extension set, sorted order not
// guaranteed.
func Extensions() []string {
	out := make([]string, 0, len(extensions))
	for ext := range extensions {
		out = append(out, ext)
	}
	return out
}

// Classify maps a filename to its language tag. Unrecognized extensions
// return a BadExtensionError; because the walker filters on the same
// extension set, hitting one signals an internal inconsistency and the
// caller is expected to skip the file and continue.
func Classify(filename string) (Language, error) {
	ext := filepath.Ext(filename)
	if language, ok := extensions[ext]; ok {
		return language, nil
	}

	badExt := errors.NewBadExtensionError(filename, ext)
	if suggestion := closestExtension(ext); suggestion != "" {
		badExt = badExt.WithSuggestion(suggestion)
	}
	return Unknown, badExt
}

// ProfileFor returns the marker profile for a language. The second result
// is false for Unknown or unsupported tags.
func ProfileFor(language Language) (Profile, bool) {
	p, ok := profiles[language]
	return p, ok
}

// closestExtension returns the recognized extension most similar to ext,
// or "" when nothing clears the similarity threshold.
func closestExtension(ext string) string {
	if ext == "" {
		return ""
	}

	best := ""
	bestScore := float32(0)
	for known := range extensions {
		score, err := edlib.StringsSimilarity(ext, known, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = known
		}
	}

	if bestScore < suggestionThreshold {
		return ""
	}
	return best
}
