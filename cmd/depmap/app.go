// # cmd/depmap/app.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"depmap/internal/analyzer"
	"depmap/internal/config"
	"depmap/internal/graph"
	"depmap/internal/history"
	"depmap/internal/render"
	"depmap/internal/shared/observability"
	"depmap/internal/shared/util"
	"depmap/internal/watcher"
)

type App struct {
	Config   *config.Config
	Analyzer *analyzer.Analyzer
	Graph    *graph.Graph

	store      *history.Store
	obsServer  *observability.Server
	teaProgram *tea.Program
}

func NewApp(cfg *config.Config) (*App, error) {
	an, err := analyzer.New(analyzer.Options{
		WorkspaceRoot:  cfg.WorkspaceRoot,
		Paths:          cfg.Paths,
		ExcludeDirs:    cfg.Exclude.Dirs,
		ExcludeFiles:   cfg.Exclude.Files,
		Workers:        cfg.Scan.Workers,
		ReadsPerSecond: cfg.Scan.ReadsPerSecond,
	})
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Analyzer: an,
		Graph:    graph.NewGraph(),
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		app.store = store
	}

	return app, nil
}

func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("failed to close history store", "error", err)
		}
	}
	if a.obsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.obsServer.Stop(ctx); err != nil {
			slog.Warn("failed to stop observability server", "error", err)
		}
	}
}

// Scan runs a full analysis and swaps in the fresh graph.
func (a *App) Scan(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	g, err := a.Analyzer.Analyze(ctx)
	if err != nil {
		return 0, err
	}
	a.Graph = g
	return time.Since(start), nil
}

func (a *App) GenerateOutputs() error {
	if a.Config.Output.Mermaid != "" {
		gen := render.NewMermaidGenerator(a.Graph, a.Config.Output.Minify)
		diagram, err := gen.Generate()
		if err != nil {
			return err
		}
		if err := util.WriteStringWithDirs(a.Config.Output.Mermaid, diagram, 0644); err != nil {
			return err
		}
	}

	if a.Config.Output.DOT != "" {
		dot, err := render.NewDOTGenerator(a.Graph).Generate()
		if err != nil {
			return err
		}
		if err := util.WriteStringWithDirs(a.Config.Output.DOT, dot, 0644); err != nil {
			return err
		}
	}

	if a.Config.Output.TSV != "" {
		gen := render.NewTSVGenerator(a.Graph)
		depsTSV, err := gen.Generate()
		if err != nil {
			return err
		}
		summaryTSV, err := gen.GenerateSummary(a.Graph.ComputeMetrics())
		if err != nil {
			return err
		}
		tsv := strings.TrimRight(depsTSV, "\n") + "\n\n" + strings.TrimRight(summaryTSV, "\n") + "\n"
		if err := util.WriteStringWithDirs(a.Config.Output.TSV, tsv, 0644); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) RecordSnapshot() {
	if a.store == nil {
		return
	}
	snap := history.BuildSnapshot(a.Graph)
	if err := a.store.SaveSnapshot(snap); err != nil {
		slog.Warn("failed to record snapshot", "scan_id", snap.ScanID, "error", err)
		return
	}
	slog.Debug("snapshot recorded", "scan_id", snap.ScanID, "modules", snap.ModuleCount, "edges", snap.EdgeCount)
}

func (a *App) TrendReport() (string, error) {
	if a.store == nil {
		return "", fmt.Errorf("history is disabled, enable [history] in the config")
	}
	snapshots, err := a.store.LoadSnapshots(time.Time{})
	if err != nil {
		return "", err
	}
	report, err := history.BuildTrendReport(snapshots)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Trend: %d scans from %s to %s\n",
		report.ScanCount,
		report.Since.Format(time.RFC3339),
		report.Until.Format(time.RFC3339)))
	for _, p := range report.Points {
		b.WriteString(fmt.Sprintf("%s  modules=%d (%+d)  edges=%d (%+d)  cycles=%d (%+d)  unresolved=%d (%+d)\n",
			p.Timestamp.Format(time.RFC3339),
			p.ModuleCount, p.DeltaModules,
			p.EdgeCount, p.DeltaEdges,
			p.CycleCount, p.DeltaCycles,
			p.UnresolvedCount, p.DeltaUnresolved))
	}
	return b.String(), nil
}

func (a *App) HandleChanges(ctx context.Context) func([]string) {
	return func(paths []string) {
		slog.Info("detected changes", "count", len(paths))
		start := time.Now()

		if err := a.Analyzer.ReanalyzeFiles(ctx, a.Graph, paths); err != nil {
			slog.Warn("failed to re-analyze changed files", "error", err)
		}

		if err := a.GenerateOutputs(); err != nil {
			slog.Error("failed to generate outputs", "error", err)
		}
		a.RecordSnapshot()

		a.PrintSummary(time.Since(start))

		if a.teaProgram != nil {
			a.teaProgram.Send(updateMsg{
				cycles:      a.Graph.DetectCycles(),
				unresolved:  a.Graph.UnresolvedDependencies(),
				moduleCount: a.Graph.ModuleCount(),
				edgeCount:   a.Graph.ValidEdgeCount(),
			})
		}
	}
}

func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges(ctx),
	)
	if err != nil {
		return err
	}

	roots := make([]string, 0, len(a.Config.Paths))
	for _, p := range a.Config.Paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(a.Config.WorkspaceRoot, p)
		}
		roots = append(roots, p)
	}
	if len(roots) == 0 {
		roots = []string{a.Config.WorkspaceRoot}
	}
	return w.Watch(roots)
}

func (a *App) StartObservability() error {
	if a.Config.Observability.ListenAddr == "" {
		return nil
	}
	a.obsServer = observability.NewServer(a.Config.Observability.ListenAddr, func() observability.HealthStatus {
		return observability.HealthStatus{
			Status:  "ok",
			Modules: a.Graph.ModuleCount(),
			Edges:   a.Graph.ValidEdgeCount(),
		}
	})
	return a.obsServer.Start()
}

func (a *App) PrintSummary(duration time.Duration) {
	cycles := a.Graph.DetectCycles()
	unresolved := a.Graph.UnresolvedDependencies()
	metrics := a.Graph.ComputeMetrics()
	categories := a.Graph.CategoryCounts()

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Scan: %d modules, %d edges in %v\n", a.Graph.ModuleCount(), a.Graph.ValidEdgeCount(), duration)

	if len(categories) > 0 {
		parts := make([]string, 0, len(categories))
		for _, cat := range util.SortedStringKeys(categories) {
			parts = append(parts, fmt.Sprintf("%s=%d", cat, categories[cat]))
		}
		fmt.Printf("Categories: %s\n", strings.Join(parts, " "))
	}

	if len(cycles) > 0 {
		fmt.Printf("FOUND %d DEPENDENCY CYCLES:\n", len(cycles))
		for _, c := range cycles {
			fmt.Printf("   %s\n", strings.Join(c, " -> "))
		}
	} else {
		fmt.Println("No dependency cycles found.")
	}

	if len(unresolved) > 0 {
		fmt.Printf("FOUND %d UNRESOLVED IMPORTS:\n", len(unresolved))
		for _, u := range unresolved {
			fmt.Printf("   %q (%s) in %s\n", u.Raw, u.Kind, u.FromRelativePath)
		}
	} else {
		fmt.Println("All internal imports resolved.")
	}

	if len(metrics) > 0 {
		topDepth := metricLeaders(metrics, func(m graph.ModuleMetrics) int { return m.Depth }, 3, 0)
		topFanIn := metricLeaders(metrics, func(m graph.ModuleMetrics) int { return m.FanIn }, 3, 1)
		topFanOut := metricLeaders(metrics, func(m graph.ModuleMetrics) int { return m.FanOut }, 3, 1)

		fmt.Println("Dependency metrics:")
		if len(topDepth) > 0 {
			fmt.Printf("   Deepest modules: %s\n", strings.Join(topDepth, ", "))
		}
		if len(topFanIn) > 0 {
			fmt.Printf("   Highest fan-in: %s\n", strings.Join(topFanIn, ", "))
		}
		if len(topFanOut) > 0 {
			fmt.Printf("   Highest fan-out: %s\n", strings.Join(topFanOut, ", "))
		}
	}
	fmt.Println(strings.Repeat("-", 40))
}

// metricLeaders returns up to limit "name (value)" entries with value > floor,
// highest first, names breaking ties alphabetically.
func metricLeaders(metrics map[string]graph.ModuleMetrics, value func(graph.ModuleMetrics) int, limit, floor int) []string {
	type entry struct {
		name  string
		value int
	}
	entries := make([]entry, 0, len(metrics))
	for name, m := range metrics {
		if v := value(m); v > floor {
			entries = append(entries, entry{name: name, value: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value > entries[j].value
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s (%d)", e.name, e.value))
	}
	return out
}

func (a *App) RunUI() error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.teaProgram = p

	go func() {
		a.teaProgram.Send(updateMsg{
			cycles:      a.Graph.DetectCycles(),
			unresolved:  a.Graph.UnresolvedDependencies(),
			moduleCount: a.Graph.ModuleCount(),
			edgeCount:   a.Graph.ValidEdgeCount(),
		})
	}()

	_, err := p.Run()
	return err
}
