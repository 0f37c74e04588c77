// # internal/extract/types.go
package extract

import "depmap/internal/classify"

// Module is one analyzed source file and its extracted metadata.
type Module struct {
	AbsolutePath string
	RelativePath string
	FileName     string
	LanguageID   string

	// Category is assigned once at creation and never changes.
	Category classify.Category

	// Dependencies preserve source-text order and may contain duplicates when
	// the same path is matched by both the import and require scans.
	Dependencies []Dependency

	// Dependents holds absolute paths of modules that import this one. It is
	// populated by the linking pass, never during extraction.
	Dependents []string

	// Functions and Exports are best-effort identifier lists; informational
	// only, never used for resolution or edges.
	Functions []string
	Exports   []string
}

// Dependency is one discovered import/require occurrence.
type Dependency struct {
	Raw          string
	ResolvedPath string
	Kind         string
	IsValid      bool
}

// languageByExtension is the fixed extension table. Extensions absent from the
// table map to "unknown".
var languageByExtension = map[string]string{
	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".ts":  "typescript",
	".tsx": "typescript",
	".py":  "python",
	".java": "java",
	".cpp": "cpp",
	".cxx": "cpp",
	".cc":  "cpp",
	".c":   "c",
	".h":   "c",
	".hpp": "cpp",
	".rs":  "rust",
	".go":  "go",
}

// SupportedExtensions returns the extension set eligible for analysis.
func SupportedExtensions() map[string]bool {
	out := make(map[string]bool, len(languageByExtension))
	for ext := range languageByExtension {
		out[ext] = true
	}
	return out
}

// LanguageForExtension maps a file extension (with leading dot) to a language id.
func LanguageForExtension(ext string) string {
	if lang, ok := languageByExtension[ext]; ok {
		return lang
	}
	return "unknown"
}
