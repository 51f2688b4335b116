package ui

import (
	"fmt"

	"github.com/ortho-guardian/ortho-guardian-cli/internal/download"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/notification"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/properties"
)

// DownloadTiles handles the UI for downloading the BD ORTHO RVB and IRC
// archives for one department
func DownloadTiles() {
	PrintWarning("- The URLs file lists departments (D074) followed by band names (RVB, IRC) and their archive URLs.\n- Archives already on disk are skipped.")

	urlsFile, err := ReadExistingFile("Enter the URLs file path: ")
	if err != nil {
		PrintError(err.Error())
		return
	}

	department := ReadString("Enter the department code (e.g. 74): ")
	if department == "" {
		PrintError("department code cannot be empty")
		return
	}

	downloader := download.NewDownloader(properties.DataPath() + "/ortho")
	files, err := downloader.DownloadDepartment(department, urlsFile)
	if err != nil {
		PrintError(fmt.Sprintf("download failed: %s", err.Error()))
		notification.SendDiscordErrorNotification(fmt.Sprintf("Ortho Guardian CLI\n\nError downloading department %s: %s", department, err.Error()))
		return
	}

	for _, band := range download.Bands {
		fmt.Printf("%s%s: %d raster files%s\n", ColorGreen, band, len(files[band]), ColorReset)
	}

	stats, err := downloader.Stats(department)
	if err == nil {
		fmt.Printf("%s\nOn disk for department %s:%s\n", ColorGreen, department, ColorReset)
		for band, b := range stats.Bands {
			fmt.Printf("%s- %s: %d files, %.2f GB%s\n", ColorGreen, band, b.FileCount, b.TotalSizeGB, ColorReset)
		}
	}

	PrintSuccess(fmt.Sprintf("Download complete!\n Tiles located at: %s/ortho/%s", properties.DataPath(), department))
	notification.SendDiscordSuccessNotification(fmt.Sprintf("Ortho Guardian CLI\n\nDownload complete for department %s", department))
}
