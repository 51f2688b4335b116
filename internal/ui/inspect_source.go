package ui

import (
	"context"
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/properties"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/raster"
)

// InspectSource handles the UI for inspecting a raster source: geometry,
// data type and per-band sample ranges
func InspectSource() {
	path, err := ReadExistingFile("Enter the raster path: ")
	if err != nil {
		PrintError(err.Error())
		return
	}

	var (
		profile  raster.Profile
		dataType godal.DataType
	)
	raster.WithLock(func() {
		var ds *godal.Dataset
		ds, err = raster.OpenRead(path)
		if err != nil {
			return
		}
		defer ds.Close()
		profile, err = raster.ReadProfile(ds)
		dataType = ds.Structure().DataType
	})
	if err != nil {
		PrintError(fmt.Sprintf("failed to open raster: %s", err.Error()))
		return
	}

	fmt.Printf("%s\nRaster: %s%s\n", ColorGreen, path, ColorReset)
	fmt.Printf("%sSize:       %d x %d pixels, %d bands%s\n", ColorGreen, profile.Width, profile.Height, profile.Bands, ColorReset)
	fmt.Printf("%sData type:  %s%s\n", ColorGreen, dataType, ColorReset)
	fmt.Printf("%sResolution: %s m/pixel%s\n", ColorGreen, raster.FormatResolution(profile.Resolution()), ColorReset)
	if profile.NoData != nil {
		fmt.Printf("%sNo-data:    %g%s\n", ColorGreen, *profile.NoData, ColorReset)
	}

	stats, err := raster.ScanStats(context.Background(), path, raster.ScanOptions{
		TileSize:     properties.DefaultTileSize(),
		Workers:      properties.DefaultWorkers(),
		MemoryBudget: properties.MemoryBudgetBytes(),
		Progress:     true,
	})
	if err != nil {
		PrintError(fmt.Sprintf("failed to scan bands: %s", err.Error()))
		return
	}

	fmt.Printf("%s\n%-6s %12s %12s %14s %14s%s\n", ColorGreen, "BAND", "MIN", "MAX", "VALID", "TOTAL", ColorReset)
	for _, b := range stats.Bands {
		fmt.Printf("%s%-6d %12.2f %12.2f %14d %14d%s\n", ColorGreen, b.Band, b.Min, b.Max, b.Valid, b.Total, ColorReset)
	}
}
