// # internal/render/dot.go
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"depmap/internal/classify"
	"depmap/internal/graph"
	"depmap/internal/shared/observability"
)

type DOTGenerator struct {
	graph *graph.Graph
}

func NewDOTGenerator(g *graph.Graph) *DOTGenerator {
	return &DOTGenerator{graph: g}
}

func (d *DOTGenerator) Generate() (string, error) {
	start := time.Now()
	defer func() {
		observability.RenderDuration.WithLabelValues("dot").Observe(time.Since(start).Seconds())
	}()

	var buf strings.Builder

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.5;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  overlap=false;\n\n")

	modules := d.graph.Modules()
	relPaths := make([]string, 0, len(modules))
	byRel := make(map[string]string, len(modules))
	for abs, mod := range modules {
		relPaths = append(relPaths, mod.RelativePath)
		byRel[mod.RelativePath] = abs
	}
	sort.Strings(relPaths)

	// One cluster per category, in the fixed category order.
	for _, cat := range classify.Categories() {
		names := make([]string, 0)
		for _, rel := range relPaths {
			if modules[byRel[rel]].Category == cat {
				names = append(names, rel)
			}
		}
		if len(names) == 0 {
			continue
		}
		style := classify.StyleForCategory(cat)
		buf.WriteString(fmt.Sprintf("  subgraph cluster_%s {\n", cat))
		buf.WriteString(fmt.Sprintf("    label=\"%s\";\n", cat))
		buf.WriteString("    style=filled;\n")
		buf.WriteString("    color=\"whitesmoke\";\n")
		for _, rel := range names {
			mod := modules[byRel[rel]]
			label := rel
			if len(mod.Exports) > 0 {
				label = fmt.Sprintf("%s\\n(%d exports)", rel, len(mod.Exports))
			}
			buf.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", fillcolor=\"%s\", color=\"%s\"];\n",
				rel, label, style.Fill, style.Stroke))
		}
		buf.WriteString("  }\n\n")
	}

	seen := make(map[string]bool)
	for _, rel := range relPaths {
		mod := modules[byRel[rel]]
		for _, dep := range mod.Dependencies {
			if dep.ResolvedPath == "" {
				continue
			}
			target, ok := modules[dep.ResolvedPath]
			if !ok {
				continue
			}
			pair := rel + "->" + target.RelativePath
			if seen[pair] {
				continue
			}
			seen[pair] = true
			kind := classify.ClassifyEdge(mod.Category, target.Category, mod.RelativePath, target.RelativePath)
			style := classify.StyleForEdge(kind)
			if style.Dashed {
				buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [color=\"%s\", style=dashed];\n",
					rel, target.RelativePath, style.Stroke))
			} else {
				buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [color=\"%s\"];\n",
					rel, target.RelativePath, style.Stroke))
			}
		}
	}

	buf.WriteString("}\n")

	return buf.String(), nil
}
