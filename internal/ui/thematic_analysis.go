package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/indices"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/notification"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/raster"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/thematic"
	"github.com/ortho-guardian/ortho-guardian-cli/output"
)

// ThematicAnalysis handles the UI for classifying thematic zones from the
// computed vegetation index rasters
func ThematicAnalysis() {
	PrintWarning("- The index rasters ({INDEX}.tif) must already be computed.\n- One binary mask ({zone}_map.tif) will be written per zone, plus a text report.")

	indicesDir, err := ReadExistingFile("Enter the directory containing the index rasters: ")
	if err != nil {
		PrintError(err.Error())
		return
	}

	indexPaths := make(map[string]string)
	for _, idx := range indices.All() {
		path := filepath.Join(indicesDir, idx.String()+".tif")
		if _, err := os.Stat(path); err == nil {
			indexPaths[idx.String()] = path
		}
	}
	if len(indexPaths) == 0 {
		PrintError(fmt.Sprintf("no index rasters found in %s", indicesDir))
		return
	}

	summary, haveSummary := loadSummaryHints(indicesDir)

	zones, err := selectZones(summary, haveSummary)
	if err != nil {
		PrintError(err.Error())
		return
	}
	if len(zones) == 0 {
		PrintError("no zones selected")
		return
	}

	outputDir, err := CreateResultDirectory("thematic")
	if err != nil {
		PrintError(err.Error())
		return
	}

	opts := thematicOptions(outputDir)

	var (
		stats     []thematic.ZoneStats
		ranZones  []thematic.Zone
		maskPaths []string
	)
	for _, zone := range zones {
		fmt.Printf("%s\nClassifying zone: %s%s\n", ColorBlue, zone.Name, ColorReset)

		maskPath, zoneStats, pass, err := thematic.ClassifyPass(context.Background(), zone, indexPaths, opts)
		if err != nil {
			PrintError(fmt.Sprintf("zone %s failed: %s", zone.Name, err.Error()))
			notification.SendDiscordErrorNotification(fmt.Sprintf("Ortho Guardian CLI\n\nError classifying zone %s: %s", zone.Name, err.Error()))
			continue
		}

		if pass.Partial() {
			PrintWarning(fmt.Sprintf("%d blocks failed for zone %s, its mask is incomplete", len(pass.Failures), zone.Name))
		}

		fmt.Printf("%sDetected: %d pixels (%.2f%%) | Area: %.2f ha%s\n",
			ColorGreen, zoneStats.Detected, zoneStats.Percentage(), zoneStats.AreaHa(), ColorReset)

		previewPath := strings.TrimSuffix(maskPath, ".tif") + ".png"
		if err := output.CreateMaskPreview(maskPath, previewPath); err != nil {
			PrintError(fmt.Sprintf("failed to render preview for %s: %s", zone.Name, err.Error()))
		}

		stats = append(stats, zoneStats)
		ranZones = append(ranZones, zone)
		maskPaths = append(maskPaths, maskPath)
	}

	if len(stats) == 0 {
		PrintError("no zone produced a mask")
		return
	}

	global := globalPixels(summary, haveSummary, stats[0])
	reportPath, err := thematic.WriteSummaryReport(outputDir, ranZones, stats, global)
	if err != nil {
		PrintError(fmt.Sprintf("failed to write report: %s", err.Error()))
	} else {
		fmt.Println("Report saved to", reportPath)
	}

	if err := writeZonesGeoJSON(maskPaths[0], stats, filepath.Join(outputDir, "thematic_zones.geojson")); err != nil {
		PrintError(fmt.Sprintf("failed to write GeoJSON: %s", err.Error()))
	}

	PrintSuccess(fmt.Sprintf("Thematic analysis complete!\n %d zone masks located at: %s\n Report located at: %s", len(stats), outputDir, reportPath))
	notification.SendDiscordSuccessNotification(fmt.Sprintf("Ortho Guardian CLI\n\nThematic analysis complete!\nZone masks located at: %s", outputDir))
}

func loadSummaryHints(indicesDir string) (indices.Summary, bool) {
	summary, err := indices.LoadSummary(filepath.Join(indicesDir, indices.SummaryName))
	if err != nil {
		return indices.Summary{}, false
	}
	return summary, true
}

func selectZones(summary indices.Summary, haveSummary bool) ([]thematic.Zone, error) {
	fmt.Printf("%s\n1. Run all built-in presets\033[0m\n", ColorBlue)
	fmt.Printf("%s2. Select built-in presets\033[0m\n", ColorBlue)
	fmt.Printf("%s3. Define a custom zone\033[0m\n", ColorBlue)
	fmt.Printf("%s4. Load zones from a YAML file\033[0m\n", ColorBlue)

	choice, err := ReadInt("Enter your choice: ", 1, 4)
	if err != nil {
		return nil, err
	}

	switch choice {
	case 1:
		return thematic.Presets(), nil
	case 2:
		presets := thematic.Presets()
		fmt.Printf("%s\nAvailable presets:%s\n", ColorGreen, ColorReset)
		for i, zone := range presets {
			fmt.Printf("%s%d. %s - %s%s\n", ColorGreen, i+1, zone.Name, zone.Description, ColorReset)
		}
		input := ReadString("Enter preset numbers separated by commas: ")
		var zones []thematic.Zone
		for _, part := range strings.Split(input, ",") {
			var n int
			if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &n); err != nil || n < 1 || n > len(presets) {
				return nil, fmt.Errorf("invalid preset number: %s", part)
			}
			zones = append(zones, presets[n-1])
		}
		return zones, nil
	case 3:
		zone, err := readCustomZone(summary, haveSummary)
		if err != nil {
			return nil, err
		}
		return []thematic.Zone{zone}, nil
	default:
		path, err := ReadExistingFile("Enter the zones YAML file path: ")
		if err != nil {
			return nil, err
		}
		return thematic.LoadZones(path)
	}
}

func readCustomZone(summary indices.Summary, haveSummary bool) (thematic.Zone, error) {
	zone := thematic.Zone{
		Name:        ReadString("Enter the zone name: "),
		Description: ReadString("Enter the zone description: "),
	}

	for {
		fmt.Printf("%s\nAvailable indices:%s\n", ColorGreen, ColorReset)
		for _, idx := range indices.All() {
			name := idx.String()
			hint := thematic.ThresholdHints[name]
			if haveSummary {
				if s, ok := summary.Indices[name]; ok {
					hint = fmt.Sprintf("%s | observed P5 %.3f, mean %.3f, P95 %.3f", hint, s.P5, s.Mean, s.P95)
				}
			}
			fmt.Printf("%s- %-6s %s%s\n", ColorGreen, name, hint, ColorReset)
		}

		name := strings.ToUpper(ReadString("Enter the index name: "))
		if _, err := indices.ParseIndex(name); err != nil {
			PrintError(err.Error())
			continue
		}

		op, err := thematic.ParseOperator(ReadString("Enter the operator (> < >= <=): "))
		if err != nil {
			PrintError(err.Error())
			continue
		}

		threshold, err := ReadFloat("Enter the threshold value: ")
		if err != nil {
			PrintError(err.Error())
			continue
		}

		zone.Conditions = append(zone.Conditions, thematic.Condition{
			Index:     name,
			Operator:  op,
			Threshold: threshold,
		})

		if !ReadYesNo("Add another condition?") {
			break
		}
	}

	return zone, zone.Validate()
}

func globalPixels(summary indices.Summary, haveSummary bool, first thematic.ZoneStats) thematic.GlobalPixels {
	if haveSummary {
		return thematic.GlobalPixels{
			Valid:  summary.ValidPixels,
			Masked: summary.MaskedPixels,
			Total:  summary.TotalPixels,
		}
	}
	return thematic.GlobalPixels{
		Valid:  first.Valid,
		Masked: first.Total - first.Valid,
		Total:  first.Total,
	}
}

func writeZonesGeoJSON(maskPath string, stats []thematic.ZoneStats, outputPath string) error {
	var (
		profile raster.Profile
		ds      *godal.Dataset
		err     error
	)
	raster.WithLock(func() {
		ds, err = raster.OpenRead(maskPath)
		if err != nil {
			return
		}
		defer ds.Close()
		profile, err = raster.ReadProfile(ds)
	})
	if err != nil {
		return err
	}
	return output.CreateZonesGeoJSON(profile, stats, outputPath)
}
