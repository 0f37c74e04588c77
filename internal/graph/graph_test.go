// # internal/graph/graph_test.go
package graph

import (
	"testing"

	"depmap/internal/classify"
	"depmap/internal/extract"
)

func mod(abs, rel string, deps ...extract.Dependency) *extract.Module {
	return &extract.Module{
		AbsolutePath: abs,
		RelativePath: rel,
		FileName:     rel,
		LanguageID:   "typescript",
		Category:     classify.CategoryCore,
		Dependencies: deps,
	}
}

func dep(resolved string) extract.Dependency {
	return extract.Dependency{
		Raw:          "./" + resolved,
		ResolvedPath: resolved,
		Kind:         "import",
		IsValid:      resolved != "",
	}
}

func TestAddModuleUniqueKeys(t *testing.T) {
	g := NewGraph()
	g.AddModule(mod("/ws/a.ts", "a.ts"))
	g.AddModule(mod("/ws/a.ts", "a.ts", dep("/ws/b.ts")))

	if g.ModuleCount() != 1 {
		t.Fatalf("expected 1 module after duplicate insert, got %d", g.ModuleCount())
	}
	m, _ := g.GetModule("/ws/a.ts")
	if len(m.Dependencies) != 1 {
		t.Error("second insert should fully replace the first")
	}
}

func TestLinkDependents(t *testing.T) {
	g := NewGraph()
	g.AddModule(mod("/ws/src/a.ts", "src/a.ts", dep("/ws/src/b.ts")))
	g.AddModule(mod("/ws/src/b.ts", "src/b.ts"))

	g.LinkDependents()

	b, _ := g.GetModule("/ws/src/b.ts")
	if len(b.Dependents) != 1 || b.Dependents[0] != "/ws/src/a.ts" {
		t.Errorf("expected b.Dependents = [/ws/src/a.ts], got %v", b.Dependents)
	}
}

func TestLinkDependentsNoDanglingBacklinks(t *testing.T) {
	g := NewGraph()
	// a resolved against a file that was later filtered out of the map.
	g.AddModule(mod("/ws/a.ts", "a.ts", dep("/ws/excluded.ts")))
	g.AddModule(mod("/ws/b.ts", "b.ts"))

	g.LinkDependents()

	for path, m := range g.Modules() {
		for _, d := range m.Dependents {
			if _, ok := g.Modules()[d]; !ok {
				t.Errorf("module %s has dangling backlink %s", path, d)
			}
		}
	}
}

func TestLinkDependentsDedup(t *testing.T) {
	g := NewGraph()
	// Same target imported twice (import + require).
	g.AddModule(mod("/ws/a.ts", "a.ts", dep("/ws/b.ts"), dep("/ws/b.ts")))
	g.AddModule(mod("/ws/b.ts", "b.ts"))

	g.LinkDependents()

	b, _ := g.GetModule("/ws/b.ts")
	if len(b.Dependents) != 1 {
		t.Errorf("dependents must be a set, got %v", b.Dependents)
	}
}

func TestLinkDependentsRelinkDiscardsStale(t *testing.T) {
	g := NewGraph()
	g.AddModule(mod("/ws/a.ts", "a.ts", dep("/ws/b.ts")))
	g.AddModule(mod("/ws/b.ts", "b.ts"))
	g.LinkDependents()

	// a no longer imports b after a rescan.
	g.AddModule(mod("/ws/a.ts", "a.ts"))
	g.LinkDependents()

	b, _ := g.GetModule("/ws/b.ts")
	if len(b.Dependents) != 0 {
		t.Errorf("stale backlink survived relink: %v", b.Dependents)
	}
}

func TestValidEdgeCount(t *testing.T) {
	g := NewGraph()
	g.AddModule(mod("/ws/a.ts", "a.ts", dep("/ws/b.ts"), dep("/ws/b.ts"), dep("")))
	g.AddModule(mod("/ws/b.ts", "b.ts", dep("/ws/gone.ts")))

	if got := g.ValidEdgeCount(); got != 1 {
		t.Errorf("ValidEdgeCount = %d, expected 1 (dedup + skip missing)", got)
	}
}

func TestDetectCycles(t *testing.T) {
	g := NewGraph()
	g.AddModule(mod("/ws/a.ts", "a.ts", dep("/ws/b.ts")))
	g.AddModule(mod("/ws/b.ts", "b.ts", dep("/ws/a.ts")))
	g.AddModule(mod("/ws/c.ts", "c.ts", dep("/ws/a.ts")))

	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if len(cycles[0]) != 2 {
		t.Errorf("expected a 2-node cycle, got %v", cycles[0])
	}
}

func TestComputeMetrics(t *testing.T) {
	g := NewGraph()
	g.AddModule(mod("/ws/a.ts", "a.ts", dep("/ws/b.ts")))
	g.AddModule(mod("/ws/b.ts", "b.ts", dep("/ws/c.ts")))
	g.AddModule(mod("/ws/c.ts", "c.ts"))

	metrics := g.ComputeMetrics()
	if m := metrics["a.ts"]; m.Depth != 2 || m.FanOut != 1 || m.FanIn != 0 {
		t.Errorf("a.ts metrics = %+v", m)
	}
	if m := metrics["c.ts"]; m.Depth != 0 || m.FanIn != 1 {
		t.Errorf("c.ts metrics = %+v", m)
	}
}

func TestUnresolvedDependencies(t *testing.T) {
	g := NewGraph()
	g.AddModule(mod("/ws/a.ts", "a.ts",
		extract.Dependency{Raw: "lodash", Kind: "import"},
		dep("/ws/b.ts")))
	g.AddModule(mod("/ws/b.ts", "b.ts"))

	unresolved := g.UnresolvedDependencies()
	if len(unresolved) != 1 {
		t.Fatalf("expected 1 unresolved dependency, got %d", len(unresolved))
	}
	if unresolved[0].Raw != "lodash" || unresolved[0].FromRelativePath != "a.ts" {
		t.Errorf("unexpected unresolved entry: %+v", unresolved[0])
	}
}

func TestReadsReturnClones(t *testing.T) {
	g := NewGraph()
	g.AddModule(mod("/ws/a.ts", "a.ts", dep("/ws/b.ts")))

	m, _ := g.GetModule("/ws/a.ts")
	m.Dependencies[0].ResolvedPath = "/ws/tampered.ts"

	fresh, _ := g.GetModule("/ws/a.ts")
	if fresh.Dependencies[0].ResolvedPath != "/ws/b.ts" {
		t.Error("mutating a returned module must not affect the graph")
	}
}
