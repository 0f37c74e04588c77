// # internal/extract/extract_test.go
package extract

import (
	"os"
	"path/filepath"
	"testing"

	"depmap/internal/classify"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeFileJavaScript(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/utils/helpers.js", "export function helper() {}\n")
	path := writeFile(t, root, "src/app.js", `
import { helper } from './utils/helpers'
import 'dotenv/config'
const fs = require('fs')
const local = require('./utils/helpers')

export function run() {}
export const start = () => {}
function internalOnly() {}
`)

	e := NewExtractor(root)
	mod, err := e.AnalyzeFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if mod == nil {
		t.Fatal("expected a module")
	}

	if mod.RelativePath != "src/app.js" {
		t.Errorf("unexpected relative path %q", mod.RelativePath)
	}
	if mod.LanguageID != "javascript" {
		t.Errorf("unexpected language %q", mod.LanguageID)
	}
	if mod.Category != classify.CategoryEntry {
		t.Errorf("app.js should classify as entry, got %s", mod.Category)
	}

	// Two import records plus two require records, duplicates kept.
	if len(mod.Dependencies) != 4 {
		t.Fatalf("expected 4 dependencies, got %d: %+v", len(mod.Dependencies), mod.Dependencies)
	}
	if mod.Dependencies[0].Raw != "./utils/helpers" || mod.Dependencies[0].Kind != "import" {
		t.Errorf("unexpected first dependency %+v", mod.Dependencies[0])
	}
	if !mod.Dependencies[0].IsValid {
		t.Error("relative import to existing file should resolve")
	}
	if mod.Dependencies[1].Raw != "dotenv/config" || mod.Dependencies[1].IsValid {
		t.Errorf("external import should stay unresolved: %+v", mod.Dependencies[1])
	}
	if mod.Dependencies[2].Kind != "require" || mod.Dependencies[2].IsValid {
		t.Errorf("bare require should stay unresolved: %+v", mod.Dependencies[2])
	}
	if mod.Dependencies[3].Raw != "./utils/helpers" || mod.Dependencies[3].Kind != "require" {
		t.Errorf("require record for the same target missing: %+v", mod.Dependencies[3])
	}

	wantFuncs := []string{"run", "internalOnly", "start"}
	if len(mod.Functions) != len(wantFuncs) {
		t.Fatalf("expected functions %v, got %v", wantFuncs, mod.Functions)
	}
	for i, name := range wantFuncs {
		if mod.Functions[i] != name {
			t.Errorf("function %d: expected %q, got %q", i, name, mod.Functions[i])
		}
	}

	if len(mod.Exports) != 2 || mod.Exports[0] != "run" || mod.Exports[1] != "start" {
		t.Errorf("unexpected exports %v", mod.Exports)
	}
}

func TestAnalyzeFilePython(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/utils.py", "def helper():\n    pass\n")
	writeFile(t, root, "pkg/sub/__init__.py", "")
	path := writeFile(t, root, "pkg/main.py", `
import os
import utils
from sub import thing
from . import sibling

def run():
    pass

def _private():
    pass

class Engine:
    def method(self):
        pass
`)

	e := NewExtractor(root)
	mod, err := e.AnalyzeFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if mod.LanguageID != "python" {
		t.Errorf("unexpected language %q", mod.LanguageID)
	}
	if mod.FileName != "main.py" || mod.Category != classify.CategoryEntry {
		t.Errorf("main.py should classify as entry, got %s", mod.Category)
	}

	if len(mod.Dependencies) != 4 {
		t.Fatalf("expected 4 dependencies, got %d: %+v", len(mod.Dependencies), mod.Dependencies)
	}
	if mod.Dependencies[0].Raw != "os" || mod.Dependencies[0].IsValid {
		t.Errorf("stdlib import should stay unresolved: %+v", mod.Dependencies[0])
	}
	if mod.Dependencies[1].Raw != "utils" || !mod.Dependencies[1].IsValid {
		t.Errorf("sibling module import should resolve: %+v", mod.Dependencies[1])
	}
	if mod.Dependencies[2].Raw != "sub" || !mod.Dependencies[2].IsValid {
		t.Errorf("package __init__ import should resolve: %+v", mod.Dependencies[2])
	}
	if mod.Dependencies[3].Raw != "." {
		t.Errorf("bare relative import should record the dots: %+v", mod.Dependencies[3])
	}

	wantFuncs := []string{"run", "_private", "method", "Engine"}
	if len(mod.Functions) != len(wantFuncs) {
		t.Fatalf("expected functions %v, got %v", wantFuncs, mod.Functions)
	}

	// Underscore-prefixed and indented names are not exported.
	if len(mod.Exports) != 2 || mod.Exports[0] != "run" || mod.Exports[1] != "Engine" {
		t.Errorf("unexpected exports %v", mod.Exports)
	}
}

func TestAnalyzeFileInventoriedLanguages(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "native/engine.rs", "use std::io;\nfn main() {}\n")

	mod, err := NewExtractor(root).AnalyzeFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if mod.LanguageID != "rust" {
		t.Errorf("unexpected language %q", mod.LanguageID)
	}
	if len(mod.Dependencies) != 0 || len(mod.Functions) != 0 || len(mod.Exports) != 0 {
		t.Errorf("inventoried-only language should carry no extraction results: %+v", mod)
	}
}

func TestAnalyzeFileUnreadable(t *testing.T) {
	root := t.TempDir()
	mod, err := NewExtractor(root).AnalyzeFile(filepath.Join(root, "missing.ts"))
	if err != nil {
		t.Fatalf("unreadable files must not error: %v", err)
	}
	if mod != nil {
		t.Fatal("unreadable files must yield no module")
	}
}

func TestExtractJSFunctionsFiltersKeywords(t *testing.T) {
	src := `
class Runner {
  async start() {
    if (x) {
      return
    }
  }
  for (a) {
  }
}
`
	funcs := extractJSFunctions(src)
	for _, name := range funcs {
		if jsMethodKeywords[name] {
			t.Errorf("keyword %q leaked into functions", name)
		}
	}
	found := false
	for _, name := range funcs {
		if name == "start" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected method start in %v", funcs)
	}
}

func TestLanguageForExtension(t *testing.T) {
	cases := map[string]string{
		".ts":  "typescript",
		".tsx": "typescript",
		".mjs": "javascript",
		".py":  "python",
		".rs":  "rust",
		".hpp": "cpp",
		".wat": "unknown",
		"":     "unknown",
	}
	for ext, want := range cases {
		if got := LanguageForExtension(ext); got != want {
			t.Errorf("LanguageForExtension(%q) = %q, want %q", ext, got, want)
		}
	}
}
