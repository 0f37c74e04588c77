// # internal/render/tsv.go
package render

import (
	"fmt"
	"sort"
	"strings"

	"depmap/internal/graph"
)

type TSVGenerator struct {
	graph *graph.Graph
}

func NewTSVGenerator(g *graph.Graph) *TSVGenerator {
	return &TSVGenerator{graph: g}
}

// Generate emits one row per recorded dependency, resolved or not. Rows for
// the same source file keep extraction order; files are sorted.
func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("From\tTo\tRaw\tKind\tResolved\n")

	modules := t.graph.Modules()
	relPaths := make([]string, 0, len(modules))
	byRel := make(map[string]string, len(modules))
	for abs, mod := range modules {
		relPaths = append(relPaths, mod.RelativePath)
		byRel[mod.RelativePath] = abs
	}
	sort.Strings(relPaths)

	for _, rel := range relPaths {
		mod := modules[byRel[rel]]
		for _, dep := range mod.Dependencies {
			to := ""
			resolved := "no"
			if dep.ResolvedPath != "" {
				if target, ok := modules[dep.ResolvedPath]; ok {
					to = target.RelativePath
					resolved = "yes"
				}
			}
			buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n", rel, to, dep.Raw, dep.Kind, resolved))
		}
	}

	return buf.String(), nil
}

// GenerateSummary emits one row per module with its structural counts.
func (t *TSVGenerator) GenerateSummary(metrics map[string]graph.ModuleMetrics) (string, error) {
	var buf strings.Builder

	buf.WriteString("File\tCategory\tLanguage\tDependencies\tDependents\tFunctions\tExports\tDepth\n")

	modules := t.graph.Modules()
	relPaths := make([]string, 0, len(modules))
	byRel := make(map[string]string, len(modules))
	for abs, mod := range modules {
		relPaths = append(relPaths, mod.RelativePath)
		byRel[mod.RelativePath] = abs
	}
	sort.Strings(relPaths)

	for _, rel := range relPaths {
		mod := modules[byRel[rel]]
		depth := 0
		if m, ok := metrics[rel]; ok {
			depth = m.Depth
		}
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			rel, mod.Category, mod.LanguageID,
			len(mod.Dependencies), len(mod.Dependents),
			len(mod.Functions), len(mod.Exports), depth))
	}

	return buf.String(), nil
}
