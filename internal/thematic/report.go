package thematic

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const ReportName = "thematic_analysis_report.txt"

// GlobalPixels carries the pass-wide counts of the index computation,
// reported alongside the zone statistics.
type GlobalPixels struct {
	Valid  int64
	Masked int64
	Total  int64
}

// WriteSummaryReport writes the textual synthesis report: thresholds used,
// per-zone pixel counts, percentage and area, and the global pixel counts.
func WriteSummaryReport(dir string, zones []Zone, stats []ZoneStats, global GlobalPixels) (string, error) {
	path := filepath.Join(dir, ReportName)
	var b strings.Builder

	b.WriteString("THEMATIC ANALYSIS REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	b.WriteString("THRESHOLDS USED:\n")
	b.WriteString(strings.Repeat("-", 20) + "\n")
	for _, zone := range zones {
		fmt.Fprintf(&b, "\n%s:\n", zoneTitle(zone.Name))
		for i, c := range zone.Conditions {
			fmt.Fprintf(&b, "  Condition %d: %s\n", i+1, c)
		}
	}

	b.WriteString("\n\nZONE STATISTICS:\n")
	b.WriteString(strings.Repeat("-", 25) + "\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "\n%s:\n", zoneTitle(s.Zone))
		fmt.Fprintf(&b, "  Detected pixels: %d / %d\n", s.Detected, s.Total)
		fmt.Fprintf(&b, "  Valid pixels:    %d\n", s.Valid)
		fmt.Fprintf(&b, "  Percentage:      %.2f%%\n", s.Percentage())
		fmt.Fprintf(&b, "  Area:            %.2f ha (%.0f m²)\n", s.AreaHa(), s.AreaM2())
	}

	b.WriteString("\n\nGLOBAL PIXELS:\n")
	b.WriteString(strings.Repeat("-", 15) + "\n")
	fmt.Fprintf(&b, "  Valid:  %d\n", global.Valid)
	fmt.Fprintf(&b, "  Masked: %d\n", global.Masked)
	fmt.Fprintf(&b, "  Total:  %d\n", global.Total)

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func zoneTitle(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "_", " "))
}
