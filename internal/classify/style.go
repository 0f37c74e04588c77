// # internal/classify/style.go
package classify

// NodeStyle carries the mermaid classDef body for a category.
type NodeStyle struct {
	Fill   string
	Stroke string
}

// EdgeStyle carries the stroke color and dash pattern for an edge kind.
type EdgeStyle struct {
	Stroke string
	Dashed bool
}

var nodeStyles = map[Category]NodeStyle{
	CategoryCore:   {Fill: "#f7fbff", Stroke: "#4d6480"},
	CategoryReport: {Fill: "#f0fff4", Stroke: "#2f855a"},
	CategoryConfig: {Fill: "#fffaf0", Stroke: "#b7791f"},
	CategoryTool:   {Fill: "#faf5ff", Stroke: "#6b46c1"},
	CategoryEntry:  {Fill: "#fff5f5", Stroke: "#c53030"},
}

var defaultNodeStyle = NodeStyle{Fill: "#ffffff", Stroke: "#808080"}

var edgeStyles = map[EdgeKind]EdgeStyle{
	EdgeNormal:     {Stroke: "#64748b"},
	EdgeProcessing: {Stroke: "#2b6cb0"},
	EdgeSpecial:    {Stroke: "#6b46c1"},
	EdgeInternal:   {Stroke: "#2f855a"},
	EdgeUtility:    {Stroke: "#8a4f00"},
	EdgeIndirect:   {Stroke: "#a0aec0", Dashed: true},
}

var defaultEdgeStyle = EdgeStyle{Stroke: "#64748b"}

// StyleForCategory never fails to resolve; unmapped categories get the default.
func StyleForCategory(c Category) NodeStyle {
	if s, ok := nodeStyles[c]; ok {
		return s
	}
	return defaultNodeStyle
}

// StyleForEdge never fails to resolve; unmapped kinds get the default.
func StyleForEdge(k EdgeKind) EdgeStyle {
	if s, ok := edgeStyles[k]; ok {
		return s
	}
	return defaultEdgeStyle
}

// Categories lists every category in a fixed emission order.
func Categories() []Category {
	return []Category{CategoryCore, CategoryReport, CategoryConfig, CategoryTool, CategoryEntry}
}
