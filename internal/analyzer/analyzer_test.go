// # internal/analyzer/analyzer_test.go
package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
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
	abs, _ := filepath.Abs(path)
	return abs
}

func TestNewRequiresWorkspace(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error for empty workspace root")
	}
	if _, err := New(Options{WorkspaceRoot: "/definitely/not/a/dir"}); err == nil {
		t.Error("expected error for missing workspace root")
	}
}

func TestAnalyzeBuildsModuleMap(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "src/a.ts", `import {x} from "./b"`+"\n")
	b := writeFile(t, root, "src/b.ts", "export const x = 1\n")

	an, err := New(Options{WorkspaceRoot: root})
	if err != nil {
		t.Fatal(err)
	}
	g, err := an.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if g.ModuleCount() != 2 {
		t.Fatalf("expected 2 modules, got %d", g.ModuleCount())
	}

	modA, ok := g.GetModule(a)
	if !ok {
		t.Fatal("module a missing")
	}
	if len(modA.Dependencies) != 1 || modA.Dependencies[0].ResolvedPath != b {
		t.Errorf("a should depend on b, got %+v", modA.Dependencies)
	}

	modB, _ := g.GetModule(b)
	if len(modB.Dependents) != 1 || modB.Dependents[0] != a {
		t.Errorf("b.Dependents should contain a, got %v", modB.Dependents)
	}
}

func TestAnalyzeSkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", "")
	writeFile(t, root, "node_modules/lodash/index.js", "")
	writeFile(t, root, "dist/bundle.js", "")
	writeFile(t, root, "build/out.js", "")
	writeFile(t, root, ".cache/tmp.ts", "")

	an, err := New(Options{WorkspaceRoot: root})
	if err != nil {
		t.Fatal(err)
	}
	g, err := an.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if g.ModuleCount() != 1 {
		t.Errorf("expected only src/a.ts, got %d modules", g.ModuleCount())
	}
}

func TestAnalyzeUnsupportedExtensionsExcluded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts", "")
	writeFile(t, root, "readme.md", "")
	writeFile(t, root, "data.json", "{}")

	an, _ := New(Options{WorkspaceRoot: root})
	g, err := an.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if g.ModuleCount() != 1 {
		t.Errorf("expected 1 module, got %d", g.ModuleCount())
	}
}

func TestAnalyzeExternalImportHasNoEdge(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "a.ts", `import lodash from "lodash"`+"\n")

	an, _ := New(Options{WorkspaceRoot: root})
	g, err := an.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	mod, _ := g.GetModule(a)
	if len(mod.Dependencies) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(mod.Dependencies))
	}
	d := mod.Dependencies[0]
	if d.IsValid || d.ResolvedPath != "" {
		t.Errorf("external import must stay unresolved: %+v", d)
	}
	if g.ValidEdgeCount() != 0 {
		t.Error("no valid edges expected")
	}
}

func TestExplicitPathsRestrictAnalysis(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", "")
	writeFile(t, root, "src/b.ts", "")
	writeFile(t, root, "other/c.ts", "")

	an, err := New(Options{WorkspaceRoot: root, Paths: []string{"src"}})
	if err != nil {
		t.Fatal(err)
	}
	g, err := an.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if g.ModuleCount() != 2 {
		t.Errorf("expected 2 modules under src, got %d", g.ModuleCount())
	}
}

func TestExplicitFilePath(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "src/a.ts", "")
	writeFile(t, root, "src/b.ts", "")

	an, _ := New(Options{WorkspaceRoot: root, Paths: []string{"src/a.ts"}})
	g, err := an.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if g.ModuleCount() != 1 {
		t.Fatalf("expected 1 module, got %d", g.ModuleCount())
	}
	if _, ok := g.GetModule(a); !ok {
		t.Error("explicit file missing from map")
	}
}

func TestExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", "")
	writeFile(t, root, "src/a.spec.ts", "")
	writeFile(t, root, "vendor/lib.ts", "")

	an, err := New(Options{
		WorkspaceRoot: root,
		ExcludeDirs:   []string{"vendor"},
		ExcludeFiles:  []string{"*.spec.ts"},
	})
	if err != nil {
		t.Fatal(err)
	}
	g, err := an.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if g.ModuleCount() != 1 {
		t.Errorf("expected 1 module after excludes, got %d", g.ModuleCount())
	}
}

func TestBadExcludePattern(t *testing.T) {
	root := t.TempDir()
	if _, err := New(Options{WorkspaceRoot: root, ExcludeDirs: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for invalid glob")
	}
}

func TestReanalyzeFiles(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "a.ts", `import "./b"`+"\n")
	b := writeFile(t, root, "b.ts", "")

	an, _ := New(Options{WorkspaceRoot: root})
	g, err := an.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// b is deleted; reanalysis drops its module and a's edge goes invalid-target.
	if err := os.Remove(b); err != nil {
		t.Fatal(err)
	}
	if err := an.ReanalyzeFiles(context.Background(), g, []string{b}); err != nil {
		t.Fatal(err)
	}

	if _, ok := g.GetModule(b); ok {
		t.Error("deleted file should fall out of the map")
	}
	if g.ValidEdgeCount() != 0 {
		t.Error("edge to a removed module must not count")
	}

	modA, _ := g.GetModule(a)
	if len(modA.Dependents) != 0 {
		t.Errorf("a should have no dependents, got %v", modA.Dependents)
	}
}

func TestAnalyzeConcurrentWorkers(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 40; i++ {
		writeFile(t, root, filepath.Join("src", string(rune('a'+i%26))+"x"+string(rune('0'+i/26))+".ts"), "export const v = 1\n")
	}

	an, _ := New(Options{WorkspaceRoot: root, Workers: 4})
	g, err := an.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if g.ModuleCount() != 40 {
		t.Errorf("expected 40 modules from concurrent extraction, got %d", g.ModuleCount())
	}
}
