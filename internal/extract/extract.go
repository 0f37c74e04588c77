// # internal/extract/extract.go
package extract

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"depmap/internal/classify"
	"depmap/internal/resolve"
	"depmap/internal/shared/observability"
)

// Pattern tables per language. These act as a lightweight parser: best-effort
// by design, so dynamic import(), computed paths and conditional requires are
// not captured. Downstream dedup and ordering depend on match order, so the
// scans stay regex-based.
var (
	// Named, default, namespace and side-effect ES import forms.
	jsImportRe  = regexp.MustCompile(`(?m)^\s*import\s+(?:[\w$*{}\s,]+\s+from\s+)?["']([^"']+)["']`)
	jsRequireRe = regexp.MustCompile(`require\s*\(\s*["']([^"']+)["']\s*\)`)

	// Statement-start import/from forms; the first dotted token is the candidate.
	pyImportRe = regexp.MustCompile(`(?m)^\s*(?:import\s+([A-Za-z_][\w.]*)|from\s+(\.*[A-Za-z_][\w.]*|\.+)\s+import)`)

	jsFunctionRe = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_$][\w$]*)`)
	jsArrowRe    = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s*)?\(`)
	jsMethodRe   = regexp.MustCompile(`(?m)^\s+(?:async\s+)?([A-Za-z_$][\w$]*)\s*\([^)]*\)\s*\{`)
	jsExportRe   = regexp.MustCompile(`(?m)^\s*export\s+(?:default\s+)?(?:async\s+)?(?:function|class|const|let|var)\s+([A-Za-z_$][\w$]*)`)
	jsCJSExportRe = regexp.MustCompile(`(?:module\.)?exports\.([A-Za-z_$][\w$]*)\s*=`)

	pyFunctionRe = regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)`)
	pyClassRe    = regexp.MustCompile(`(?m)^\s*class\s+([A-Za-z_]\w*)`)
)

// jsMethodKeywords are control-flow words the method pattern would otherwise
// pick up as names.
var jsMethodKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"function": true, "return": true,
}

// Extractor turns a source file into a Module. It owns no state beyond the
// workspace root used for resolution and classification.
type Extractor struct {
	workspaceRoot string
	resolver      *resolve.Resolver
}

func NewExtractor(workspaceRoot string) *Extractor {
	return &Extractor{
		workspaceRoot: workspaceRoot,
		resolver:      resolve.NewResolver(workspaceRoot),
	}
}

// AnalyzeFile reads and extracts one file. An unreadable file is logged and
// skipped (nil, nil) — never fatal to the batch.
func (e *Extractor) AnalyzeFile(path string) (*Module, error) {
	start := time.Now()

	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("skipping unreadable file", "path", path, "error", err)
		return nil, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(e.workspaceRoot, abs)
	if err != nil {
		rel = filepath.Base(abs)
	}
	rel = filepath.ToSlash(rel)

	fileName := filepath.Base(abs)
	lang := LanguageForExtension(strings.ToLower(filepath.Ext(fileName)))

	mod := &Module{
		AbsolutePath: abs,
		RelativePath: rel,
		FileName:     fileName,
		LanguageID:   lang,
		Category:     classify.ClassifyFile(rel, fileName),
	}

	src := string(content)
	switch lang {
	case "javascript", "typescript":
		mod.Dependencies = e.extractJSDependencies(src, abs)
		mod.Functions = extractJSFunctions(src)
		mod.Exports = extractJSExports(src)
	case "python":
		mod.Dependencies = e.extractPythonDependencies(src, abs)
		mod.Functions = extractPythonFunctions(src)
		mod.Exports = extractPythonExports(src)
	default:
		// Java, C/C++, Rust and Go are inventoried and classified but never
		// import-extracted by this engine.
	}

	observability.ExtractDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	return mod, nil
}

// extractJSDependencies runs the import scan and the require scan
// independently; a path present in both source forms yields two records.
func (e *Extractor) extractJSDependencies(src, fromFile string) []Dependency {
	var deps []Dependency

	for _, m := range jsImportRe.FindAllStringSubmatch(src, -1) {
		deps = append(deps, e.makeJSDependency(m[1], "import", fromFile))
	}
	for _, m := range jsRequireRe.FindAllStringSubmatch(src, -1) {
		deps = append(deps, e.makeJSDependency(m[1], "require", fromFile))
	}

	return deps
}

func (e *Extractor) makeJSDependency(raw, kind, fromFile string) Dependency {
	resolved := e.resolver.ResolveJS(raw, fromFile)
	return Dependency{
		Raw:          raw,
		ResolvedPath: resolved,
		Kind:         kind,
		IsValid:      resolved != "",
	}
}

func (e *Extractor) extractPythonDependencies(src, fromFile string) []Dependency {
	var deps []Dependency

	for _, m := range pyImportRe.FindAllStringSubmatch(src, -1) {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		resolved := e.resolver.ResolvePython(raw, fromFile)
		deps = append(deps, Dependency{
			Raw:          raw,
			ResolvedPath: resolved,
			Kind:         "import",
			IsValid:      resolved != "",
		})
	}

	return deps
}

func extractJSFunctions(src string) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(name string) {
		if name == "" || seen[name] || jsMethodKeywords[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	for _, m := range jsFunctionRe.FindAllStringSubmatch(src, -1) {
		add(m[1])
	}
	for _, m := range jsArrowRe.FindAllStringSubmatch(src, -1) {
		add(m[1])
	}
	for _, m := range jsMethodRe.FindAllStringSubmatch(src, -1) {
		add(m[1])
	}

	return out
}

func extractJSExports(src string) []string {
	seen := make(map[string]bool)
	var out []string

	for _, m := range jsExportRe.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	for _, m := range jsCJSExportRe.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}

	return out
}

func extractPythonFunctions(src string) []string {
	seen := make(map[string]bool)
	var out []string

	for _, m := range pyFunctionRe.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	for _, m := range pyClassRe.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}

	return out
}

// extractPythonExports treats top-level non-underscore defs and classes as the
// public surface.
func extractPythonExports(src string) []string {
	var out []string
	seen := make(map[string]bool)

	topDef := regexp.MustCompile(`(?m)^(?:async\s+)?def\s+([A-Za-z]\w*)`)
	topClass := regexp.MustCompile(`(?m)^class\s+([A-Za-z]\w*)`)

	for _, m := range topDef.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	for _, m := range topClass.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}

	return out
}
