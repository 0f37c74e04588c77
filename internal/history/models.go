// # internal/history/models.go
package history

import "time"

const SchemaVersion = 1

// Snapshot records the shape of one completed scan.
type Snapshot struct {
	ScanID          string    `json:"scan_id"`
	SchemaVersion   int       `json:"schema_version"`
	Timestamp       time.Time `json:"timestamp"`
	ModuleCount     int       `json:"module_count"`
	EdgeCount       int       `json:"edge_count"`
	CycleCount      int       `json:"cycle_count"`
	UnresolvedCount int       `json:"unresolved_count"`
	CoreCount       int       `json:"core_count"`
	ReportCount     int       `json:"report_count"`
	ConfigCount     int       `json:"config_count"`
	ToolCount       int       `json:"tool_count"`
	EntryCount      int       `json:"entry_count"`
	MaxFanIn        int       `json:"max_fan_in"`
	MaxFanOut       int       `json:"max_fan_out"`
}

// TrendPoint is a snapshot plus its deltas against the previous one.
type TrendPoint struct {
	Snapshot
	DeltaModules    int `json:"delta_modules"`
	DeltaEdges      int `json:"delta_edges"`
	DeltaCycles     int `json:"delta_cycles"`
	DeltaUnresolved int `json:"delta_unresolved"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	ScanCount     int          `json:"scan_count"`
	Points        []TrendPoint `json:"points"`
}
