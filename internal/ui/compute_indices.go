package ui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ortho-guardian/ortho-guardian-cli/internal/indices"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/notification"
	"github.com/ortho-guardian/ortho-guardian-cli/output"
)

// ComputeIndices handles the UI for computing the vegetation index rasters
// from a fused RGBNIR orthophoto
func ComputeIndices() {
	PrintWarning("- The input must be a fused 4-band RGBNIR raster (NIR, R, G, B).\n- One raster per index plus a 7-band composite will be written.")

	orthoPath, err := ReadExistingFile("Enter the fused RGBNIR raster path: ")
	if err != nil {
		PrintError(err.Error())
		return
	}

	outputDir, err := CreateResultDirectory("indices")
	if err != nil {
		PrintError(err.Error())
		return
	}

	result, err := indices.ComputePass(context.Background(), orthoPath, indicesOptions(outputDir))
	if err != nil {
		PrintError(fmt.Sprintf("index computation failed: %s", err.Error()))
		notification.SendDiscordErrorNotification(fmt.Sprintf("Ortho Guardian CLI\n\nError computing indices: %s", err.Error()))
		return
	}

	if result.Pass.Partial() {
		PrintWarning(fmt.Sprintf("%d blocks failed, index rasters are incomplete:", len(result.Pass.Failures)))
		for _, f := range result.Pass.Failures {
			fmt.Printf("%s- %s%s\n", ColorYellow, f.Error(), ColorReset)
		}
	}

	displayStatistics(result)

	summaryPath := filepath.Join(outputDir, indices.SummaryName)
	if err := result.Summary().Save(summaryPath); err != nil {
		PrintError(fmt.Sprintf("failed to save statistics: %s", err.Error()))
	} else {
		fmt.Println("Statistics saved to", summaryPath)
	}

	csvPath := filepath.Join(outputDir, "vegetation_indices_stats.csv")
	if err := output.ExportStatsCSV(result, csvPath); err != nil {
		PrintError(fmt.Sprintf("failed to export CSV: %s", err.Error()))
	}

	chartPath := filepath.Join(outputDir, "vegetation_indices_histograms.html")
	if err := output.CreateHistogramChart(result, chartPath); err != nil {
		PrintError(fmt.Sprintf("failed to render histograms: %s", err.Error()))
	}

	PrintSuccess(fmt.Sprintf("Index computation complete!\n Index rasters located at: %s\n Composite located at: %s", outputDir, result.CompositePath))
	notification.SendDiscordSuccessNotification(fmt.Sprintf("Ortho Guardian CLI\n\nIndex computation complete!\nIndex rasters located at: %s", outputDir))
}

func displayStatistics(result *indices.Result) {
	fmt.Printf("%s\nIndex statistics:%s\n", ColorGreen, ColorReset)
	fmt.Printf("%s%-8s %12s %10s %10s %10s %10s %10s %10s%s\n",
		ColorGreen, "INDEX", "COUNT", "MIN", "MAX", "MEAN", "STD", "P5", "P95", ColorReset)

	for _, idx := range indices.All() {
		acc, ok := result.Stats[idx]
		if !ok || acc.Count == 0 {
			fmt.Printf("%s%-8s %12d%s\n", ColorYellow, idx.String(), 0, ColorReset)
			continue
		}
		s := acc.Summarize()
		fmt.Printf("%s%-8s %12d %10.4f %10.4f %10.4f %10.4f %10.4f %10.4f%s\n",
			ColorGreen, idx.String(), s.Count, s.Min, s.Max, s.Mean, s.StdDev, s.P5, s.P95, ColorReset)
	}

	fmt.Printf("\nValid pixels:  %d\n", result.ValidPixels)
	fmt.Printf("Masked pixels: %d\n", result.MaskedPixels)
	fmt.Printf("Total pixels:  %d\n", result.TotalPixels)
}
