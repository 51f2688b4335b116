package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/indices"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/raster"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/thematic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResult() *indices.Result {
	res := &indices.Result{Stats: make(map[indices.Index]*indices.Accumulator)}
	for _, idx := range indices.All() {
		acc := indices.NewAccumulator(idx)
		for i := 0; i < 100; i++ {
			acc.Add(float64(i) / 200)
		}
		res.Stats[idx] = acc
	}
	res.ValidPixels = 700
	res.TotalPixels = 700
	return res
}

func TestExportStatsCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stats.csv")
	require.NoError(t, ExportStatsCSV(testResult(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 8) // header plus one row per index

	assert.Contains(t, lines[0], "index")
	assert.Contains(t, lines[0], "percentile_95")
	assert.True(t, strings.HasPrefix(lines[1], "NDVI,"))
	assert.True(t, strings.HasPrefix(lines[5], "BI_NIR,"))
}

func TestCreateZonesGeoJSON(t *testing.T) {
	t.Parallel()

	profile := raster.Profile{
		Width:        1000,
		Height:       700,
		Bands:        1,
		DataType:     godal.Byte,
		GeoTransform: [6]float64{950000, 0.2, 0, 6540000, 0, -0.2},
	}
	stats := []thematic.ZoneStats{
		{Zone: "rocky_zone", Detected: 4, Valid: 100, Total: 100, PixelArea: 0.04},
		{Zone: "water", Detected: 10, Valid: 100, Total: 100, PixelArea: 0.04},
	}

	path := filepath.Join(t.TempDir(), "zones.geojson")
	require.NoError(t, CreateZonesGeoJSON(profile, stats, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string        `json:"type"`
				Coordinates [][][]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "rocky_zone", fc.Features[0].Properties["zone"])
	assert.InDelta(t, 4.0, fc.Features[0].Properties["percentage"].(float64), 1e-9)

	ring := fc.Features[0].Geometry.Coordinates[0]
	require.Len(t, ring, 5)
	assert.InDelta(t, 950000, ring[0][0], 1e-6)
	assert.InDelta(t, 6540000, ring[0][1], 1e-6)
	assert.InDelta(t, 950000+0.2*1000, ring[1][0], 1e-6)
	assert.InDelta(t, 6540000-0.2*700, ring[2][1], 1e-6)
}

func TestCreateHistogramChart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "histograms.html")
	require.NoError(t, CreateHistogramChart(testResult(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "NDVI")
	assert.Contains(t, html, "BI_NIR")
}
