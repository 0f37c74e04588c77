// # internal/history/trends.go
package history

import "fmt"

// BuildTrendReport turns an ordered snapshot series into per-scan deltas.
// Snapshots must be sorted oldest first, as LoadSnapshots returns them.
func BuildTrendReport(snapshots []Snapshot) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{Snapshot: current}
		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaModules = current.ModuleCount - prev.ModuleCount
			point.DeltaEdges = current.EdgeCount - prev.EdgeCount
			point.DeltaCycles = current.CycleCount - prev.CycleCount
			point.DeltaUnresolved = current.UnresolvedCount - prev.UnresolvedCount
		}
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		Since:         snapshots[0].Timestamp,
		Until:         snapshots[len(snapshots)-1].Timestamp,
		ScanCount:     len(points),
		Points:        points,
	}, nil
}
