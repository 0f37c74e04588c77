// # cmd/depmap/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"depmap/internal/config"
	"depmap/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./depmap.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode")
	minify     = flag.Bool("minify", false, "Minify diagram node identifiers")
	paths      = flag.String("paths", "", "Comma-separated paths to restrict analysis to")
	trend      = flag.Bool("trend", false, "Print snapshot trend report and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("depmap v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
				if err == nil {
					output = f
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if flag.NArg() > 0 {
		cfg.WorkspaceRoot = flag.Arg(0)
	}
	if !filepath.IsAbs(cfg.WorkspaceRoot) {
		cwd, _ := os.Getwd()
		cfg.WorkspaceRoot = filepath.Join(cwd, cfg.WorkspaceRoot)
	}
	if *minify {
		cfg.Output.Minify = true
	}
	if *paths != "" {
		cfg.Paths = cfg.Paths[:0]
		for _, p := range strings.Split(*paths, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Paths = append(cfg.Paths, p)
			}
		}
	}

	ctx := context.Background()

	tp, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, VERSION)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if *trend {
		report, err := app.TrendReport()
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Print(report)
		os.Exit(0)
	}

	duration, err := app.Scan(ctx)
	if err != nil {
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}

	if err := app.GenerateOutputs(); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}
	app.RecordSnapshot()

	if !*ui {
		app.PrintSummary(duration)
	}

	if *once {
		return
	}
	if !cfg.Watch.Enabled && !*ui {
		return
	}

	if err := app.StartObservability(); err != nil {
		slog.Error("failed to start observability server", "error", err)
		os.Exit(1)
	}
	if err := app.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := app.RunUI(); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
	} else {
		select {}
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "depmap", "depmap.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "depmap", "depmap.log")
	}

	return "depmap.log"
}
