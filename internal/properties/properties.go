package properties

import (
	"os"
	"runtime"
	"strconv"
)

func RootPath() string {
	if p := os.Getenv("ROOT_PATH"); p != "" {
		return p
	}
	return "."
}

func DataPath() string {
	return RootPath() + "/data"
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

// DefaultTileSize is the side of the square processing blocks, in pixels.
func DefaultTileSize() int {
	return intEnv("ORTHO_TILE_SIZE", 512)
}

func DefaultWorkers() int {
	return intEnv("ORTHO_WORKERS", runtime.NumCPU())
}

// MemoryBudgetBytes caps the total bytes held by in-flight blocks of a pass.
func MemoryBudgetBytes() int64 {
	return int64(intEnv("ORTHO_MEMORY_BUDGET_MB", 2048)) * 1024 * 1024
}

// DefaultEPSG is the coordinate reference used for output naming when the
// profile does not carry one. 2154 is Lambert-93, the French national grid.
func DefaultEPSG() int {
	return intEnv("ORTHO_EPSG", 2154)
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
