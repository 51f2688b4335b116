package ui

import (
	"fmt"

	"github.com/ortho-guardian/ortho-guardian-cli/internal/thematic"
)

// ListPresets handles the UI for viewing the built-in thematic zone presets
func ListPresets() {
	PrintWarning("To run a custom zone instead, use the thematic analysis option and define it there, or load a YAML file.")

	fmt.Printf("%s\nAvailable presets:%s\n", ColorGreen, ColorReset)
	for _, zone := range thematic.Presets() {
		fmt.Printf("%s- %s: %s%s\n", ColorGreen, zone.Name, zone.Description, ColorReset)
		for _, cond := range zone.Conditions {
			fmt.Printf("%s    %s%s\n", ColorGreen, cond.String(), ColorReset)
		}
	}

	fmt.Printf("%s\nThreshold hints:%s\n", ColorGreen, ColorReset)
	for _, name := range []string{"NDVI", "SAVI", "EVI", "AVI", "BI_NIR", "RATIO", "BSI"} {
		if hint, ok := thematic.ThresholdHints[name]; ok {
			fmt.Printf("%s- %-6s %s%s\n", ColorGreen, name, hint, ColorReset)
		}
	}
}
