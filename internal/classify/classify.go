// # internal/classify/classify.go
package classify

import (
	"path/filepath"
	"strings"
)

// Category is the presentation classification of a file.
type Category string

const (
	CategoryCore   Category = "core"
	CategoryReport Category = "report"
	CategoryConfig Category = "config"
	CategoryTool   Category = "tool"
	CategoryEntry  Category = "entry"
)

// EdgeKind is the presentation classification of a dependency edge.
type EdgeKind string

const (
	EdgeNormal     EdgeKind = "normal"
	EdgeProcessing EdgeKind = "processing"
	EdgeSpecial    EdgeKind = "special"
	EdgeInternal   EdgeKind = "internal"
	EdgeUtility    EdgeKind = "utility"
	EdgeIndirect   EdgeKind = "indirect"
)

type categoryRule struct {
	category      Category
	pathParts     []string
	filenameParts []string
}

// Category rules are evaluated top to bottom; the first match wins. Order is
// semantically significant: an "entry" match suppresses every later rule.
var categoryRules = []categoryRule{
	{
		category:      CategoryEntry,
		pathParts:     []string{"/main/", "/entry/", "/cmd/", "/bin/"},
		filenameParts: []string{"index.", "__init__.py", "main.", "app."},
	},
	{
		category:      CategoryReport,
		pathParts:     []string{"report", "output", "export", "render"},
		filenameParts: []string{"report", "formatter", "printer", "diagram"},
	},
	{
		category:      CategoryTool,
		pathParts:     []string{"tools", "scripts", "utils", "helpers"},
		filenameParts: []string{"tool", "util", "helper", "script"},
	},
	{
		category:      CategoryConfig,
		pathParts:     []string{"config", "settings", "cli"},
		filenameParts: []string{"config", "settings", "options", "flags"},
	},
	{
		category:      CategoryCore,
		pathParts:     []string{"src", "lib", "core", "internal", "engine", "pkg"},
		filenameParts: []string{"core", "engine", "analyz", "process"},
	},
}

// ClassifyFile maps a file to its category. Both inputs are lowercased and the
// relative path is normalized to forward slashes before matching, so results are
// identical across platforms.
func ClassifyFile(relativePath, fileName string) Category {
	rel := strings.ToLower(filepath.ToSlash(relativePath))
	name := strings.ToLower(fileName)

	// Match path segments as "/seg/" so "src/main/app.ts" hits "/main/".
	paddedRel := "/" + rel

	for _, rule := range categoryRules {
		for _, part := range rule.pathParts {
			needle := part
			if !strings.Contains(needle, "/") {
				needle = "/" + needle + "/"
			}
			if strings.Contains(paddedRel+"/", needle) {
				return rule.category
			}
		}
		for _, part := range rule.filenameParts {
			if strings.Contains(name, part) {
				return rule.category
			}
		}
	}

	return CategoryEntry
}

// ClassifyEdge maps a dependency edge to its kind. Rules are evaluated top to
// bottom and the first match wins; an edge never carries more than one kind.
func ClassifyEdge(sourceCategory, targetCategory Category, sourcePath, targetPath string) EdgeKind {
	src := strings.ToLower(filepath.ToSlash(sourcePath))
	dst := strings.ToLower(filepath.ToSlash(targetPath))

	switch {
	case sourceCategory == CategoryConfig || targetCategory == CategoryConfig ||
		hasSegment(src, "config") || hasSegment(dst, "config") ||
		hasSegment(src, "cli") || hasSegment(dst, "cli"):
		return EdgeIndirect
	case sourceCategory == CategoryReport && targetCategory == CategoryReport:
		return EdgeInternal
	case (sourceCategory == CategoryCore && targetCategory == CategoryCore) ||
		hasSegment(src, "extract") || hasSegment(dst, "extract") ||
		hasSegment(src, "enrich") || hasSegment(dst, "enrich"):
		return EdgeProcessing
	case sourceCategory == CategoryTool || targetCategory == CategoryTool ||
		hasSegment(src, "utils") || hasSegment(dst, "utils"):
		return EdgeUtility
	case hasSegment(src, "options") || hasSegment(dst, "resolve"):
		return EdgeSpecial
	default:
		return EdgeNormal
	}
}

func hasSegment(path, seg string) bool {
	return strings.Contains("/"+path+"/", "/"+seg+"/")
}
