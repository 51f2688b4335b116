package raster

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ortho-guardian/ortho-guardian-cli/internal/cache"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/grid"
)

// BandStats is the global valid-pixel range of one band, gathered by a
// block-windowed prescan.
type BandStats struct {
	Band  int     `json:"band"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Valid int64   `json:"valid"`
	Total int64   `json:"total"`
}

type SourceStats struct {
	Path  string      `json:"path"`
	Bands []BandStats `json:"bands"`
}

type ScanOptions struct {
	TileSize     int
	Workers      int
	MemoryBudget int64
	Progress     bool
}

// ScanStats computes per-band min/max over valid samples, excluding the
// no-data sentinel and out-of-range values. Results are cached on path, file
// size and mtime, so repeated runs over the same source are free.
func ScanStats(ctx context.Context, path string, opts ScanOptions) (*SourceStats, error) {
	statsCache := cache.NewFileCache[SourceStats]("band_stats")

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	key := statsCache.GenerateKey(path, fi.Size(), fi.ModTime().UnixNano())
	if cached, ok := statsCache.Get(key); ok {
		return &cached, nil
	}

	ds, err := OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	profile, err := ReadProfile(ds)
	if err != nil {
		return nil, err
	}
	maxSample, err := profile.MaxSample()
	if err != nil {
		return nil, err
	}
	nodata := profile.NoDataValue()

	tiling, err := grid.NewTiling(profile.Width, profile.Height, opts.TileSize)
	if err != nil {
		return nil, err
	}

	stats := &SourceStats{Path: path}
	for b := 0; b < profile.Bands; b++ {
		stats.Bands = append(stats.Bands, BandStats{Band: b + 1, Min: maxSample, Max: 0})
	}

	bands := ds.Bands()
	var mu sync.Mutex

	label := ""
	if opts.Progress {
		label = "Scanning band statistics"
	}
	sched := grid.NewScheduler(opts.Workers, int64(opts.TileSize*opts.TileSize)*int64(profile.Bands)*8, label)
	sched.MemoryBudget = opts.MemoryBudget

	result, err := sched.Run(ctx, tiling, func(b grid.Block) error {
		local := make([]BandStats, profile.Bands)
		for i := range local {
			local[i] = BandStats{Min: maxSample, Max: 0}
		}
		buf := make([]float64, b.Pixels())

		for i := 0; i < profile.Bands; i++ {
			var readErr error
			WithLock(func() {
				readErr = bands[i].Read(b.X, b.Y, buf, b.Width, b.Height)
			})
			if readErr != nil {
				return &BlockIOError{Op: "read", Path: path, Band: i + 1,
					X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Err: readErr}
			}
			for _, v := range buf {
				local[i].Total++
				if v == nodata || v <= 0 || v >= maxSample {
					continue
				}
				local[i].Valid++
				if v < local[i].Min {
					local[i].Min = v
				}
				if v > local[i].Max {
					local[i].Max = v
				}
			}
		}

		mu.Lock()
		for i := range stats.Bands {
			stats.Bands[i].Valid += local[i].Valid
			stats.Bands[i].Total += local[i].Total
			if local[i].Valid > 0 {
				if local[i].Min < stats.Bands[i].Min {
					stats.Bands[i].Min = local[i].Min
				}
				if local[i].Max > stats.Bands[i].Max {
					stats.Bands[i].Max = local[i].Max
				}
			}
		}
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Partial() {
		return nil, fmt.Errorf("band statistics prescan failed on %d blocks, first: %s",
			len(result.Failures), result.Failures[0])
	}

	if err := statsCache.Set(key, *stats); err != nil {
		// Cache refusal is not fatal; the scan already succeeded.
		fmt.Printf("Warning: failed to cache band statistics: %v\n", err)
	}
	return stats, nil
}
