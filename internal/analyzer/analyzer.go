// # internal/analyzer/analyzer.go
package analyzer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"depmap/internal/extract"
	"depmap/internal/graph"
	"depmap/internal/shared/observability"
	"depmap/internal/shared/util"
)

// ignoredNames are always skipped during the tree walk, in addition to any
// dot-prefixed entry.
var ignoredNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
}

const defaultWorkers = 8

// Options configures one analysis run.
type Options struct {
	WorkspaceRoot string

	// Paths optionally restricts analysis to explicit files/directories.
	Paths []string

	// ExcludeDirs and ExcludeFiles are glob patterns matched against base names.
	ExcludeDirs  []string
	ExcludeFiles []string

	// Workers bounds concurrent extraction; <= 0 means the default.
	Workers int

	// ReadsPerSecond throttles file reads; 0 disables the limiter.
	ReadsPerSecond float64
}

// Analyzer orchestrates discovery, extraction and dependent linking.
type Analyzer struct {
	opts         Options
	extractor    *extract.Extractor
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	limiter      *util.Limiter
	supported    map[string]bool
}

// New validates the workspace precondition and compiles exclude patterns. A
// missing workspace is the only hard failure the engine surfaces up front.
func New(opts Options) (*Analyzer, error) {
	if opts.WorkspaceRoot == "" {
		return nil, fmt.Errorf("workspace root is required")
	}
	abs, err := filepath.Abs(opts.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}
	opts.WorkspaceRoot = abs

	a := &Analyzer{
		opts:      opts,
		extractor: extract.NewExtractor(abs),
		supported: extract.SupportedExtensions(),
	}

	for _, pattern := range opts.ExcludeDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", pattern, err)
		}
		a.excludeDirs = append(a.excludeDirs, g)
	}
	for _, pattern := range opts.ExcludeFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", pattern, err)
		}
		a.excludeFiles = append(a.excludeFiles, g)
	}

	if opts.ReadsPerSecond > 0 {
		a.limiter = util.NewLimiter(opts.ReadsPerSecond, int(opts.ReadsPerSecond)+1)
	}

	return a, nil
}

// Analyze runs both phases and returns the finalized module map. All files are
// extracted and inserted before any backlink is computed; after linking, the
// returned graph is read-only by convention.
func (a *Analyzer) Analyze(ctx context.Context) (*graph.Graph, error) {
	ctx, span := observability.Tracer.Start(ctx, "analyzer.Analyze", trace.WithAttributes(
		attribute.String("workspace", a.opts.WorkspaceRoot),
	))
	defer span.End()

	files, err := a.Discover()
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("files.discovered", len(files)))

	g := graph.NewGraph()

	extractStart := time.Now()
	if err := a.extractAll(ctx, g, files); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.AnalysisDuration.WithLabelValues("extract").Observe(time.Since(extractStart).Seconds())

	// Barrier: every insertion above completed before linking starts.
	linkStart := time.Now()
	g.LinkDependents()
	observability.AnalysisDuration.WithLabelValues("link").Observe(time.Since(linkStart).Seconds())

	observability.GraphModules.Set(float64(g.ModuleCount()))
	observability.GraphEdges.Set(float64(g.ValidEdgeCount()))

	slog.Info("analysis complete",
		"files", len(files),
		"modules", g.ModuleCount(),
		"edges", g.ValidEdgeCount())

	return g, nil
}

// ReanalyzeFiles re-extracts changed files into an existing graph and relinks.
// Deleted files fall out of the map. Used by watch mode.
func (a *Analyzer) ReanalyzeFiles(ctx context.Context, g *graph.Graph, paths []string) error {
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		if _, err := os.Stat(abs); err != nil {
			g.RemoveModule(abs)
			continue
		}
		if !a.isSupportedFile(abs) {
			continue
		}
		a.extractInto(ctx, g, abs)
	}
	g.LinkDependents()

	observability.GraphModules.Set(float64(g.ModuleCount()))
	observability.GraphEdges.Set(float64(g.ValidEdgeCount()))
	return nil
}

// Discover enumerates candidate files. With explicit paths, files are resolved
// directly and directories restrict the walk to entries under their prefix.
func (a *Analyzer) Discover() ([]string, error) {
	if len(a.opts.Paths) == 0 {
		return a.walk()
	}

	var files []string
	seen := make(map[string]bool)
	var dirPrefixes []string

	for _, p := range a.opts.Paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(a.opts.WorkspaceRoot, p)
		}
		info, err := os.Stat(abs)
		if err != nil {
			slog.Warn("skipping unknown path", "path", p, "error", err)
			continue
		}
		if info.IsDir() {
			dirPrefixes = append(dirPrefixes, abs)
			continue
		}
		if a.isSupportedFile(abs) && !seen[abs] {
			seen[abs] = true
			files = append(files, abs)
		}
	}

	if len(dirPrefixes) > 0 {
		walked, err := a.walk()
		if err != nil {
			return nil, err
		}
		for _, f := range walked {
			for _, prefix := range dirPrefixes {
				if util.HasPathPrefix(f, prefix) && !seen[f] {
					seen[f] = true
					files = append(files, f)
					break
				}
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func (a *Analyzer) walk() ([]string, error) {
	var files []string

	err := filepath.WalkDir(a.opts.WorkspaceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission denied or a race with deletion: skip, never abort.
			slog.Debug("walk error, skipping", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if path != a.opts.WorkspaceRoot && a.shouldSkipDir(base) {
				return filepath.SkipDir
			}
			return nil
		}

		if !a.isSupportedFile(path) {
			return nil
		}
		for _, g := range a.excludeFiles {
			if g.Match(base) {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (a *Analyzer) shouldSkipDir(base string) bool {
	if strings.HasPrefix(base, ".") || ignoredNames[base] {
		return true
	}
	for _, g := range a.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (a *Analyzer) isSupportedFile(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return a.supported[strings.ToLower(filepath.Ext(path))]
}

// extractAll fans files out to a bounded worker pool. Insertion into the graph
// is the only shared mutation and the graph serializes it internally.
func (a *Analyzer) extractAll(ctx context.Context, g *graph.Graph, files []string) error {
	workers := a.opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(path string) {
			defer wg.Done()
			defer func() { <-sem }()
			a.extractInto(ctx, g, path)
		}(file)
	}

	wg.Wait()
	return ctx.Err()
}

func (a *Analyzer) extractInto(ctx context.Context, g *graph.Graph, path string) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, 1); err != nil {
			return
		}
	}

	mod, err := a.extractor.AnalyzeFile(path)
	if err != nil {
		slog.Warn("failed to extract file", "path", path, "error", err)
		observability.FilesSkippedTotal.Inc()
		return
	}
	if mod == nil {
		observability.FilesSkippedTotal.Inc()
		return
	}
	g.AddModule(mod)
}
