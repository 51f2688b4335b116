package thematic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/grid"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/raster"
)

type Options struct {
	OutputDir    string
	TileSize     int
	Workers      int
	MemoryBudget int64
	FailFast     bool
	Progress     bool
}

// ZoneStats aggregates one zone over a full pass. Percentage and area are
// derived from the pixel counts and the pixel ground size.
type ZoneStats struct {
	Zone      string
	Detected  int64
	Valid     int64
	Total     int64
	PixelArea float64 // m² per pixel
}

func (s ZoneStats) Percentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Detected) / float64(s.Total) * 100
}

func (s ZoneStats) AreaM2() float64 {
	return float64(s.Detected) * s.PixelArea
}

func (s ZoneStats) AreaHa() float64 {
	return s.AreaM2() / 10000
}

// ClassifyPass evaluates one zone over the index rasters and writes its
// binary mask as {zone}_map.tif. Detected pixels are 255; everything else,
// including no-data, is 0. Zones are independent: running several zones over
// the same indices in any order yields the same masks.
func ClassifyPass(ctx context.Context, zone Zone, indexPaths map[string]string, opts Options) (string, ZoneStats, grid.PassResult, error) {
	var (
		stats ZoneStats
		pass  grid.PassResult
	)

	if err := zone.Validate(); err != nil {
		return "", stats, pass, err
	}

	names := zone.IndexNames()
	blockOf := make(map[string]int, len(names))
	for i, name := range names {
		blockOf[name] = i
	}
	condBlock := make([]int, len(zone.Conditions))
	for i, c := range zone.Conditions {
		condBlock[i] = blockOf[c.Index]
	}

	sources := make([]*godal.Dataset, 0, len(names))
	closeSources := func() {
		for _, ds := range sources {
			ds.Close()
		}
	}
	var refProfile raster.Profile
	for i, name := range names {
		path, ok := indexPaths[name]
		if !ok {
			closeSources()
			return "", stats, pass, &raster.InvalidConfigurationError{
				Reason: fmt.Sprintf("zone %q references index %s with no raster", zone.Name, name),
			}
		}
		ds, err := raster.OpenRead(path)
		if err != nil {
			closeSources()
			return "", stats, pass, err
		}
		sources = append(sources, ds)

		profile, err := raster.ReadProfile(ds)
		if err != nil {
			closeSources()
			return "", stats, pass, err
		}
		if i == 0 {
			refProfile = profile
		} else if err := raster.SameGeometry(refProfile, profile); err != nil {
			closeSources()
			return "", stats, pass, err
		}
	}
	defer closeSources()

	nodata := float32(refProfile.NoDataValue())
	stats.Zone = zone.Name
	stats.PixelArea = refProfile.PixelArea()

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", stats, pass, fmt.Errorf("failed to create output directory: %w", err)
	}
	outPath := filepath.Join(opts.OutputDir, zone.Name+"_map.tif")

	maskNoData := float64(NotDetected)
	outProfile := refProfile
	outProfile.Bands = 1
	outProfile.DataType = godal.Byte
	outProfile.NoData = &maskNoData

	out, err := raster.CreateGTiff(outPath, outProfile, opts.TileSize)
	if err != nil {
		return "", stats, pass, err
	}

	tiling, err := grid.NewTiling(refProfile.Width, refProfile.Height, opts.TileSize)
	if err != nil {
		out.Close()
		return "", stats, pass, err
	}

	outBand := out.Bands()[0]
	var mu sync.Mutex

	label := ""
	if opts.Progress {
		label = fmt.Sprintf("Classifying zone %s", zone.Name)
	}
	// One float32 buffer per referenced index plus the byte mask.
	sched := grid.NewScheduler(opts.Workers, int64(opts.TileSize*opts.TileSize)*int64(len(names)*4+1), label)
	sched.MemoryBudget = opts.MemoryBudget
	sched.FailFast = opts.FailFast

	pass, err = sched.Run(ctx, tiling, func(b grid.Block) error {
		n := b.Pixels()
		blocks := make([][]float32, len(names))
		for i, ds := range sources {
			blocks[i] = make([]float32, n)
			var readErr error
			raster.WithLock(func() {
				readErr = ds.Bands()[0].Read(b.X, b.Y, blocks[i], b.Width, b.Height)
			})
			if readErr != nil {
				return &raster.BlockIOError{Op: "read", Path: indexPaths[names[i]], Band: 1,
					X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Err: readErr}
			}
		}

		mask := make([]byte, n)
		detected, valid := evaluateBlock(zone.Conditions, condBlock, blocks, nodata, mask)

		var writeErr error
		raster.WithLock(func() {
			writeErr = outBand.Write(b.X, b.Y, mask, b.Width, b.Height)
		})
		if writeErr != nil {
			return &raster.BlockIOError{Op: "write", Path: outPath, Band: 1,
				X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Err: writeErr}
		}

		mu.Lock()
		stats.Detected += detected
		stats.Valid += valid
		stats.Total += int64(n)
		mu.Unlock()
		return nil
	})

	out.Close()
	if err != nil {
		os.Remove(outPath)
		return "", stats, pass, err
	}
	return outPath, stats, pass, nil
}
