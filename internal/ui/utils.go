package ui

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ortho-guardian/ortho-guardian-cli/internal/fusion"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/indices"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/properties"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/thematic"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(message string) {
	fmt.Printf("%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Printf("%s%s%s\n", ColorYellow, message, ColorReset)
}

// PrintError displays an error message with consistent formatting
func PrintError(message string) {
	fmt.Printf("\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(message string) {
	fmt.Printf("\n%s%s%s\n", ColorGreen, message, ColorReset)
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(message string) {
	fmt.Printf("%s%s%s", ColorBlue, message, ColorReset)
}

// ReadString reads a string from stdin with trimming
func ReadString(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	PrintInfo(prompt)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// ReadStringDefault reads a string, falling back to a default on empty input
func ReadStringDefault(prompt, fallback string) string {
	input := ReadString(fmt.Sprintf("%s [%s]: ", prompt, fallback))
	if input == "" {
		return fallback
	}
	return input
}

// ReadInt reads an integer from stdin with validation
func ReadInt(prompt string, min, max int) (int, error) {
	input := ReadString(prompt)

	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}

	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}

	return value, nil
}

// ReadFloat reads a floating point value from stdin
func ReadFloat(prompt string) (float64, error) {
	input := ReadString(prompt)

	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}

	return value, nil
}

// ReadFloatDefault reads a float, falling back to a default on empty input
func ReadFloatDefault(prompt string, fallback float64) (float64, error) {
	input := ReadString(fmt.Sprintf("%s [%g]: ", prompt, fallback))
	if input == "" {
		return fallback, nil
	}

	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}

	return value, nil
}

// ReadYesNo reads a y/n answer, defaulting to no on anything else
func ReadYesNo(prompt string) bool {
	input := strings.ToLower(ReadString(prompt + " (y/n): "))
	return input == "y" || input == "yes"
}

// ReadExistingFile reads a path from stdin and checks that it exists
func ReadExistingFile(prompt string) (string, error) {
	path := ReadString(prompt)
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("cannot access %s: %s", path, err.Error())
	}
	return path, nil
}

// CreateResultDirectory creates the result directory structure
func CreateResultDirectory(parts ...string) (string, error) {
	resultPath := properties.DataPath() + "/result"
	for _, p := range parts {
		resultPath += "/" + p
	}
	err := os.MkdirAll(resultPath, os.ModePerm)
	if err != nil {
		return "", fmt.Errorf("failed to create result folder: %v", err)
	}
	return resultPath, nil
}

func fusionOptions(outputDir string) fusion.Options {
	return fusion.Options{
		EPSG:         properties.DefaultEPSG(),
		OutputDir:    outputDir,
		TileSize:     properties.DefaultTileSize(),
		Workers:      properties.DefaultWorkers(),
		MemoryBudget: properties.MemoryBudgetBytes(),
		Progress:     true,
	}
}

func indicesOptions(outputDir string) indices.Options {
	return indices.Options{
		OutputDir:    outputDir,
		TileSize:     properties.DefaultTileSize(),
		Workers:      properties.DefaultWorkers(),
		MemoryBudget: properties.MemoryBudgetBytes(),
		Progress:     true,
	}
}

func thematicOptions(outputDir string) thematic.Options {
	return thematic.Options{
		OutputDir:    outputDir,
		TileSize:     properties.DefaultTileSize(),
		Workers:      properties.DefaultWorkers(),
		MemoryBudget: properties.MemoryBudgetBytes(),
		Progress:     true,
	}
}
