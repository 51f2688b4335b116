package thematic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummaryReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	zones := []Zone{
		{
			Name:        "rocky_zone",
			Description: "bare rock",
			Conditions: []Condition{
				{Index: "BSI", Operator: Greater, Threshold: 0.1},
				{Index: "NDVI", Operator: Less, Threshold: 0.2},
			},
		},
	}
	stats := []ZoneStats{
		{Zone: "rocky_zone", Detected: 4, Valid: 100, Total: 100, PixelArea: 0.04},
	}
	global := GlobalPixels{Valid: 100, Masked: 0, Total: 100}

	path, err := WriteSummaryReport(dir, zones, stats, global)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ReportName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)

	assert.Contains(t, report, "THRESHOLDS USED:")
	assert.Contains(t, report, "ROCKY ZONE:")
	assert.Contains(t, report, "BSI > 0.1")
	assert.Contains(t, report, "NDVI < 0.2")
	assert.Contains(t, report, "Detected pixels: 4 / 100")
	assert.Contains(t, report, "Percentage:      4.00%")
	assert.Contains(t, report, "GLOBAL PIXELS:")
	assert.Contains(t, report, "Total:  100")
}

func TestZoneTitle(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "DENSE FOREST", zoneTitle("dense_forest"))
	assert.Equal(t, "WATER", zoneTitle("water"))
}
