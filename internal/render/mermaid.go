// # internal/render/mermaid.go
package render

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"depmap/internal/classify"
	"depmap/internal/extract"
	"depmap/internal/graph"
	"depmap/internal/shared/observability"
)

type MermaidGenerator struct {
	graph  *graph.Graph
	minify bool
}

func NewMermaidGenerator(g *graph.Graph, minify bool) *MermaidGenerator {
	return &MermaidGenerator{graph: g, minify: minify}
}

// Generate renders the hierarchical flowchart. The output is byte-identical
// across runs for an unchanged graph: modules are walked in sorted relative
// path order and every derived sequence (IDs, subgraphs, edges, styles)
// follows from that order.
func (m *MermaidGenerator) Generate() (string, error) {
	start := time.Now()
	defer func() {
		observability.RenderDuration.WithLabelValues("mermaid").Observe(time.Since(start).Seconds())
	}()

	modules := m.graph.Modules()
	byRel := make(map[string]*extract.Module, len(modules))
	relPaths := make([]string, 0, len(modules))
	absByRel := make(map[string]string, len(modules))
	for abs, mod := range modules {
		byRel[mod.RelativePath] = mod
		relPaths = append(relPaths, mod.RelativePath)
		absByRel[mod.RelativePath] = abs
	}
	sort.Strings(relPaths)

	ids := newIDTable(m.minify)
	tree := buildTree(relPaths, ids)
	for _, rel := range relPaths {
		id, ok := ids.Lookup(rel)
		if !ok {
			return "", fmt.Errorf("no id assigned for %q", rel)
		}
		ids.Alias(absByRel[rel], id)
	}

	var b strings.Builder
	b.WriteString("%%{init: {'flowchart': {'nodeSpacing': 60, 'rankSpacing': 90, 'curve': 'basis'}}}%%\n")
	b.WriteString("flowchart LR\n")

	for _, cat := range classify.Categories() {
		style := classify.StyleForCategory(cat)
		b.WriteString(fmt.Sprintf("  classDef %s fill:%s,stroke:%s,stroke-width:1px;\n", cat, style.Fill, style.Stroke))
	}
	b.WriteString("\n")

	for _, key := range tree.order {
		m.writeNode(&b, tree.children[key], 1, byRel)
	}

	b.WriteString("\n")
	for _, rel := range relPaths {
		id, _ := ids.Lookup(rel)
		b.WriteString(fmt.Sprintf("  class %s %s;\n", id, byRel[rel].Category))
	}

	b.WriteString("\n")
	type edgeStyle struct {
		kind classify.EdgeKind
	}
	seen := make(map[string]bool)
	styles := make([]edgeStyle, 0)
	for _, rel := range relPaths {
		mod := byRel[rel]
		fromID, _ := ids.Lookup(rel)
		for _, dep := range mod.Dependencies {
			if dep.ResolvedPath == "" {
				continue
			}
			target, ok := modules[dep.ResolvedPath]
			if !ok {
				continue
			}
			toID, lookupOK := ids.Lookup(dep.ResolvedPath)
			if !lookupOK {
				continue
			}
			pair := fromID + "->" + toID
			if seen[pair] {
				continue
			}
			seen[pair] = true
			b.WriteString(fmt.Sprintf("  %s --> %s\n", fromID, toID))
			styles = append(styles, edgeStyle{
				kind: classify.ClassifyEdge(mod.Category, target.Category, mod.RelativePath, target.RelativePath),
			})
		}
	}

	if len(styles) > 0 {
		b.WriteString("\n")
	}
	for i, es := range styles {
		style := classify.StyleForEdge(es.kind)
		if style.Dashed {
			b.WriteString(fmt.Sprintf("  linkStyle %d stroke:%s,stroke-width:1px,stroke-dasharray:5 3;\n", i, style.Stroke))
		} else {
			b.WriteString(fmt.Sprintf("  linkStyle %d stroke:%s,stroke-width:1px;\n", i, style.Stroke))
		}
	}

	return b.String(), nil
}

func (m *MermaidGenerator) writeNode(b *strings.Builder, n *treeNode, depth int, byRel map[string]*extract.Module) {
	indent := strings.Repeat("  ", depth)
	if n.isFile {
		b.WriteString(fmt.Sprintf("%s%s[\"%s\"]\n", indent, n.id, escapeMermaidLabel(m.fileLabel(n, byRel))))
		return
	}
	b.WriteString(fmt.Sprintf("%ssubgraph %s[\"%s\"]\n", indent, n.id, escapeMermaidLabel(n.label)))
	for _, key := range n.order {
		m.writeNode(b, n.children[key], depth+1, byRel)
	}
	b.WriteString(indent + "end\n")
}

func (m *MermaidGenerator) fileLabel(n *treeNode, byRel map[string]*extract.Module) string {
	if m.minify {
		return filepath.Base(n.path)
	}
	mod, ok := byRel[n.path]
	if !ok || len(mod.Exports) == 0 {
		return n.label
	}
	exports := mod.Exports
	if len(exports) > 3 {
		exports = exports[:3]
	}
	return n.label + "\\n" + strings.Join(exports, ", ")
}

func escapeMermaidLabel(label string) string {
	replacer := strings.NewReplacer(
		"\"", "&quot;",
		"<", "&lt;",
		">", "&gt;",
		"\n", "\\n",
	)
	return replacer.Replace(label)
}
