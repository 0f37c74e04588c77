// # internal/resolve/resolve.go
package resolve

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps raw import strings to concrete files on disk. All probing is
// best-effort: a filesystem error is "not found", never a hard failure.
type Resolver struct {
	workspaceRoot string
}

// Probing order is fixed; tests assert the winning candidate, not just non-nil.
var jsExtensions = []string{".js", ".ts", ".jsx", ".tsx", ".mjs", ".cjs"}
var jsIndexFiles = []string{"index.js", "index.ts", "index.jsx", "index.tsx"}

func NewResolver(workspaceRoot string) *Resolver {
	return &Resolver{workspaceRoot: workspaceRoot}
}

// ResolveJS resolves a JS/TS import path relative to the importing file.
// Returns "" for external packages and unresolvable paths.
func (r *Resolver) ResolveJS(raw, fromFile string) string {
	// Bare specifiers ("lodash", "react/dom") are external packages; no
	// filesystem access.
	if !strings.HasPrefix(raw, ".") && !strings.HasPrefix(raw, "/") {
		return ""
	}

	var base string
	if strings.HasPrefix(raw, "/") {
		base = filepath.Join(r.workspaceRoot, raw)
	} else {
		base = filepath.Join(filepath.Dir(fromFile), raw)
	}

	if p := probeFile(base); p != "" {
		return p
	}
	for _, ext := range jsExtensions {
		if p := probeFile(base + ext); p != "" {
			return p
		}
	}

	// Directory import: probe for an index file.
	if isDir(base) {
		for _, index := range jsIndexFiles {
			if p := probeFile(filepath.Join(base, index)); p != "" {
				return p
			}
		}
	}

	return ""
}

// ResolvePython resolves a Python module name relative to the importing file.
// Dots convert to path separators before probing; names whose candidates do not
// exist are standard-library or external modules and resolve to "".
func (r *Resolver) ResolvePython(raw, fromFile string) string {
	name := raw

	// Relative imports: each leading dot climbs one directory, the first one
	// meaning "current package".
	dir := filepath.Dir(fromFile)
	for strings.HasPrefix(name, ".") {
		name = strings.TrimPrefix(name, ".")
		if strings.HasPrefix(name, ".") {
			dir = filepath.Dir(dir)
		}
	}
	if name == "" {
		return probeFile(filepath.Join(dir, "__init__.py"))
	}

	base := filepath.Join(dir, strings.ReplaceAll(name, ".", string(filepath.Separator)))
	if p := probeFile(base + ".py"); p != "" {
		return p
	}
	return probeFile(filepath.Join(base, "__init__.py"))
}

// probeFile returns the candidate when it exists as a regular file.
func probeFile(path string) string {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	return abs
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
