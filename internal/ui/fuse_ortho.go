package ui

import (
	"context"
	"fmt"

	"github.com/ortho-guardian/ortho-guardian-cli/internal/fusion"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/notification"
)

// FuseOrtho handles the UI for fusing a visible and an infrared orthophoto
// into a single four band RGBNIR raster
func FuseOrtho() {
	PrintWarning("- The visible input must be a 3-band RGB raster (BD ORTHO RVB).\n- The infrared input must be a 3-band IRC raster with near infrared in band 1.\n- Both inputs must cover the same extent in the same projection.")

	visiblePath, err := ReadExistingFile("Enter the visible (RVB) raster path: ")
	if err != nil {
		PrintError(err.Error())
		return
	}

	infraredPath, err := ReadExistingFile("Enter the infrared (IRC) raster path: ")
	if err != nil {
		PrintError(err.Error())
		return
	}

	department := ReadStringDefault("Enter the department code", "00")

	resolution, err := ReadFloatDefault("Enter the target resolution in meters", 0.2)
	if err != nil {
		PrintError(err.Error())
		return
	}
	if resolution <= 0 {
		PrintError("resolution must be positive")
		return
	}

	outputDir, err := CreateResultDirectory(department, "fusion")
	if err != nil {
		PrintError(err.Error())
		return
	}

	opts := fusionOptions(outputDir)
	opts.TargetResolution = resolution
	opts.Department = department

	outPath, pass, err := fusion.Fuse(context.Background(), visiblePath, infraredPath, opts)
	if err != nil {
		PrintError(fmt.Sprintf("fusion failed: %s", err.Error()))
		notification.SendDiscordErrorNotification(fmt.Sprintf("Ortho Guardian CLI\n\nError fusing orthophotos: %s", err.Error()))
		return
	}

	if pass.Partial() {
		PrintWarning(fmt.Sprintf("%d blocks failed, the output raster is incomplete:", len(pass.Failures)))
		for _, f := range pass.Failures {
			fmt.Printf("%s- %s%s\n", ColorYellow, f.Error(), ColorReset)
		}
	}

	PrintSuccess(fmt.Sprintf("Fusion complete!\n %d blocks written\n Fused raster located at: %s", pass.Completed, outPath))
	notification.SendDiscordSuccessNotification(fmt.Sprintf("Ortho Guardian CLI\n\nFusion complete!\nFused raster located at: %s", outPath))
}
