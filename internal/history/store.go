// # internal/history/store.go
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"depmap/internal/classify"
	"depmap/internal/graph"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// BuildSnapshot derives a snapshot from the current graph state.
func BuildSnapshot(g *graph.Graph) Snapshot {
	categories := g.CategoryCounts()
	maxFanIn, maxFanOut := 0, 0
	for _, m := range g.ComputeMetrics() {
		if m.FanIn > maxFanIn {
			maxFanIn = m.FanIn
		}
		if m.FanOut > maxFanOut {
			maxFanOut = m.FanOut
		}
	}

	return Snapshot{
		ScanID:          uuid.New().String(),
		SchemaVersion:   SchemaVersion,
		Timestamp:       time.Now().UTC(),
		ModuleCount:     g.ModuleCount(),
		EdgeCount:       g.ValidEdgeCount(),
		CycleCount:      len(g.DetectCycles()),
		UnresolvedCount: len(g.UnresolvedDependencies()),
		CoreCount:       categories[string(classify.CategoryCore)],
		ReportCount:     categories[string(classify.CategoryReport)],
		ConfigCount:     categories[string(classify.CategoryConfig)],
		ToolCount:       categories[string(classify.CategoryTool)],
		EntryCount:      categories[string(classify.CategoryEntry)],
		MaxFanIn:        maxFanIn,
		MaxFanOut:       maxFanOut,
	}
}

func (s *Store) SaveSnapshot(snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.ScanID == "" {
		snapshot.ScanID = uuid.New().String()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	query := `
INSERT INTO snapshots (
  scan_id, schema_version, ts_utc, module_count, edge_count, cycle_count,
  unresolved_count, core_count, report_count, config_count, tool_count,
  entry_count, max_fan_in, max_fan_out
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(scan_id) DO UPDATE SET
  ts_utc=excluded.ts_utc,
  module_count=excluded.module_count,
  edge_count=excluded.edge_count,
  cycle_count=excluded.cycle_count,
  unresolved_count=excluded.unresolved_count,
  core_count=excluded.core_count,
  report_count=excluded.report_count,
  config_count=excluded.config_count,
  tool_count=excluded.tool_count,
  entry_count=excluded.entry_count,
  max_fan_in=excluded.max_fan_in,
  max_fan_out=excluded.max_fan_out
`
	return s.withRetry("save snapshot", func() error {
		_, err := s.db.Exec(
			query,
			snapshot.ScanID,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
			snapshot.ModuleCount,
			snapshot.EdgeCount,
			snapshot.CycleCount,
			snapshot.UnresolvedCount,
			snapshot.CoreCount,
			snapshot.ReportCount,
			snapshot.ConfigCount,
			snapshot.ToolCount,
			snapshot.EntryCount,
			snapshot.MaxFanIn,
			snapshot.MaxFanOut,
		)
		return err
	})
}

// LoadSnapshots returns snapshots at or after since, oldest first.
func (s *Store) LoadSnapshots(since time.Time) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT scan_id, schema_version, ts_utc, module_count, edge_count, cycle_count,
  unresolved_count, core_count, report_count, config_count, tool_count,
  entry_count, max_fan_in, max_fan_out
FROM snapshots
WHERE ts_utc >= ?
ORDER BY ts_utc ASC
`
	rows, err := s.db.Query(query, since.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snap Snapshot
		var ts string
		if err := rows.Scan(
			&snap.ScanID,
			&snap.SchemaVersion,
			&ts,
			&snap.ModuleCount,
			&snap.EdgeCount,
			&snap.CycleCount,
			&snap.UnresolvedCount,
			&snap.CoreCount,
			&snap.ReportCount,
			&snap.ConfigCount,
			&snap.ToolCount,
			&snap.EntryCount,
			&snap.MaxFanIn,
			&snap.MaxFanOut,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot timestamp %q: %w", ts, err)
		}
		snap.Timestamp = parsed
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (s *Store) withRetry(op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isLockError(err) {
			return err
		}
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}
	return fmt.Errorf("%s after %d attempts: %w", op, maxAttempts, err)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
