// # internal/graph/graph.go
package graph

import (
	"sort"
	"sync"

	"depmap/internal/extract"
)

// Graph is the module map: one entry per successfully extracted source file,
// keyed by absolute path. Insertion is mutex-protected because extraction tasks
// complete concurrently; after LinkDependents the map is read-only.
type Graph struct {
	mu      sync.RWMutex
	modules map[string]*extract.Module
}

func NewGraph() *Graph {
	return &Graph{
		modules: make(map[string]*extract.Module),
	}
}

// AddModule inserts a module keyed by its absolute path. A later insert for the
// same path replaces the earlier one, so a file is never partially present.
func (g *Graph) AddModule(mod *extract.Module) {
	if mod == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modules[mod.AbsolutePath] = cloneModule(mod)
}

func (g *Graph) RemoveModule(absolutePath string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.modules, absolutePath)
}

func (g *Graph) GetModule(absolutePath string) (*extract.Module, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	mod, ok := g.modules[absolutePath]
	if !ok {
		return nil, false
	}
	return cloneModule(mod), true
}

// Modules returns a deep copy of the module map.
func (g *Graph) Modules() map[string]*extract.Module {
	g.mu.RLock()
	defer g.mu.RUnlock()

	res := make(map[string]*extract.Module, len(g.modules))
	for path, mod := range g.modules {
		res[path] = cloneModule(mod)
	}
	return res
}

func (g *Graph) ModuleCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.modules)
}

// SortedPaths returns the map keys in sorted order; every deterministic
// traversal (linking, rendering, cycle detection) starts here.
func (g *Graph) SortedPaths() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	paths := make([]string, 0, len(g.modules))
	for path := range g.modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// LinkDependents runs the second pass: for every dependency whose resolved path
// is a key in the map, the importing module's path is appended to the target's
// Dependents once. A dependency that resolved to a file excluded from the map
// produces no backlink. Previous backlinks are discarded first so relinking
// after a rescan never accumulates stale entries.
func (g *Graph) LinkDependents() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, mod := range g.modules {
		mod.Dependents = nil
	}

	paths := make([]string, 0, len(g.modules))
	for path := range g.modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, from := range paths {
		mod := g.modules[from]
		for _, dep := range mod.Dependencies {
			if dep.ResolvedPath == "" {
				continue
			}
			target, ok := g.modules[dep.ResolvedPath]
			if !ok {
				continue
			}
			if !containsString(target.Dependents, from) {
				target.Dependents = append(target.Dependents, from)
			}
		}
	}
}

// ValidEdgeCount counts deduplicated (source, target) pairs whose target is
// present in the map.
func (g *Graph) ValidEdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	count := 0
	for _, mod := range g.modules {
		seen := make(map[string]bool)
		for _, dep := range mod.Dependencies {
			if dep.ResolvedPath == "" || seen[dep.ResolvedPath] {
				continue
			}
			if _, ok := g.modules[dep.ResolvedPath]; !ok {
				continue
			}
			seen[dep.ResolvedPath] = true
			count++
		}
	}
	return count
}

// CategoryCounts tallies modules per category.
func (g *Graph) CategoryCounts() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	counts := make(map[string]int)
	for _, mod := range g.modules {
		counts[string(mod.Category)]++
	}
	return counts
}

// UnresolvedDependencies lists every dependency that did not resolve to a file,
// with its importing module, in sorted source order.
func (g *Graph) UnresolvedDependencies() []UnresolvedDependency {
	g.mu.RLock()
	defer g.mu.RUnlock()

	paths := make([]string, 0, len(g.modules))
	for path := range g.modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var out []UnresolvedDependency
	for _, path := range paths {
		mod := g.modules[path]
		for _, dep := range mod.Dependencies {
			if dep.IsValid {
				continue
			}
			out = append(out, UnresolvedDependency{
				FromRelativePath: mod.RelativePath,
				Raw:              dep.Raw,
				Kind:             dep.Kind,
			})
		}
	}
	return out
}

// UnresolvedDependency is an import that stayed external or unresolvable; a
// normal outcome, not an error.
type UnresolvedDependency struct {
	FromRelativePath string
	Raw              string
	Kind             string
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func cloneModule(mod *extract.Module) *extract.Module {
	if mod == nil {
		return nil
	}
	c := *mod
	c.Dependencies = append([]extract.Dependency(nil), mod.Dependencies...)
	c.Dependents = append([]string(nil), mod.Dependents...)
	c.Functions = append([]string(nil), mod.Functions...)
	c.Exports = append([]string(nil), mod.Exports...)
	return &c
}
