package indices

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

const CompositeName = "vegetation_indices_composite.tif"

type Options struct {
	OutputDir    string
	TileSize     int
	Workers      int
	MemoryBudget int64
	FailFast     bool
	Progress     bool
}

// Result of an index pass: one float32 GTiff per index, a 7-band composite,
// per-index statistics, and global pixel counts.
type Result struct {
	Paths         map[Index]string
	CompositePath string
	Stats         map[Index]*Accumulator
	ValidPixels   int64
	MaskedPixels  int64
	TotalPixels   int64
	Pass          grid.PassResult
}

// Working bytes per block pixel: four uint16 input samples plus seven
// float32 output samples plus float64 scratch.
const blockPixelBytes = 4*2 + 7*4 + 4*8

// ComputePass evaluates all seven indices block-by-block over a fused
// 4-band (NIR, Red, Green, Blue) ortho raster. Pixels that are no-data or
// outside the valid sensor range in any input band are no-data in every
// output and excluded from statistics.
func ComputePass(ctx context.Context, orthoPath string, opts Options) (*Result, error) {
	src, err := raster.OpenRead(orthoPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	profile, err := raster.ReadProfile(src)
	if err != nil {
		return nil, err
	}
	if profile.Bands != 4 {
		return nil, fmt.Errorf("expected a 4-band NIR/R/G/B raster, got %d bands in %s", profile.Bands, orthoPath)
	}
	maxSample, err := profile.MaxSample()
	if err != nil {
		return nil, err
	}
	nodata := profile.NoDataValue()

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	outNoData := float64(raster.FloatNoData)
	outProfile := profile
	outProfile.Bands = 1
	outProfile.DataType = godal.Float32
	outProfile.NoData = &outNoData

	res := &Result{
		Paths: make(map[Index]string),
		Stats: make(map[Index]*Accumulator),
	}

	outputs := make(map[Index]*godal.Dataset)
	closeOutputs := func() {
		for _, ds := range outputs {
			ds.Close()
		}
	}
	for _, idx := range All() {
		path := filepath.Join(opts.OutputDir, idx.String()+".tif")
		ds, err := raster.CreateGTiff(path, outProfile, opts.TileSize)
		if err != nil {
			closeOutputs()
			return nil, err
		}
		outputs[idx] = ds
		res.Paths[idx] = path
		res.Stats[idx] = NewAccumulator(idx)
	}

	compositeProfile := outProfile
	compositeProfile.Bands = len(All())
	compositePath := filepath.Join(opts.OutputDir, CompositeName)
	composite, err := raster.CreateGTiff(compositePath, compositeProfile, opts.TileSize)
	if err != nil {
		closeOutputs()
		return nil, err
	}
	res.CompositePath = compositePath

	tiling, err := grid.NewTiling(profile.Width, profile.Height, opts.TileSize)
	if err != nil {
		closeOutputs()
		composite.Close()
		return nil, err
	}

	srcBands := src.Bands()
	compositeBands := composite.Bands()

	type blockTally struct {
		stats  []*Accumulator
		valid  int64
		masked int64
		total  int64
	}
	var (
		mu      sync.Mutex
		tallies []blockTally
	)

	label := ""
	if opts.Progress {
		label = "Computing vegetation indices"
	}
	sched := grid.NewScheduler(opts.Workers, int64(opts.TileSize*opts.TileSize)*blockPixelBytes, label)
	sched.MemoryBudget = opts.MemoryBudget
	sched.FailFast = opts.FailFast

	pass, err := sched.Run(ctx, tiling, func(b grid.Block) error {
		n := b.Pixels()
		nir := make([]uint16, n)
		red := make([]uint16, n)
		green := make([]uint16, n)
		blue := make([]uint16, n)

		// Fused band order: 1=NIR, 2=Red, 3=Green, 4=Blue.
		for i, buf := range [][]uint16{nir, red, green, blue} {
			var readErr error
			raster.WithLock(func() {
				readErr = srcBands[i].Read(b.X, b.Y, buf, b.Width, b.Height)
			})
			if readErr != nil {
				return &raster.BlockIOError{Op: "read", Path: orthoPath, Band: i + 1,
					X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Err: readErr}
			}
		}

		tally := blockTally{total: int64(n)}
		for _, idx := range All() {
			tally.stats = append(tally.stats, NewAccumulator(idx))
		}

		fields := make([][]float32, len(All()))
		for i := range fields {
			fields[i] = make([]float32, n)
		}

		tally.valid, tally.masked = computeBlock(nir, red, green, blue, nodata, maxSample, fields, tally.stats)

		var writeErr error
		raster.WithLock(func() {
			for i, idx := range All() {
				if writeErr = outputs[idx].Bands()[0].Write(b.X, b.Y, fields[i], b.Width, b.Height); writeErr != nil {
					return
				}
				if writeErr = compositeBands[i].Write(b.X, b.Y, fields[i], b.Width, b.Height); writeErr != nil {
					return
				}
			}
		})
		if writeErr != nil {
			return &raster.BlockIOError{Op: "write", Path: opts.OutputDir, Band: 0,
				X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Err: writeErr}
		}

		mu.Lock()
		tallies = append(tallies, tally)
		mu.Unlock()
		return nil
	})

	closeOutputs()
	composite.Close()
	if err != nil {
		return nil, err
	}
	res.Pass = pass

	// Single reduction step; merge order does not affect the result beyond
	// float rounding.
	for _, tally := range tallies {
		for i, idx := range All() {
			res.Stats[idx].Merge(tally.stats[i])
		}
		res.ValidPixels += tally.valid
		res.MaskedPixels += tally.masked
		res.TotalPixels += tally.total
	}

	return res, nil
}

// computeBlock evaluates every index over one block of band samples, filling
// one field buffer per index in All() order. A pixel whose sample is invalid
// in any band gets FloatNoData in every field and counts as masked; the rest
// feed the per-index accumulators.
func computeBlock(nir, red, green, blue []uint16, nodata, maxSample float64, fields [][]float32, stats []*Accumulator) (valid, masked int64) {
	for p := range nir {
		vNIR, vR, vG, vB := float64(nir[p]), float64(red[p]), float64(green[p]), float64(blue[p])
		if !validSample(vNIR, nodata, maxSample) || !validSample(vR, nodata, maxSample) ||
			!validSample(vG, nodata, maxSample) || !validSample(vB, nodata, maxSample) {
			for i := range fields {
				fields[i][p] = raster.FloatNoData
			}
			masked++
			continue
		}
		valid++

		r := vR / maxSample
		g := vG / maxSample
		bl := vB / maxSample
		ni := vNIR / maxSample
		for i, idx := range All() {
			v := idx.Evaluate(r, g, bl, ni)
			fields[i][p] = float32(v)
			stats[i].Add(v)
		}
	}
	return valid, masked
}

// Samples at the no-data sentinel or outside the open interval
// (0, maxSample) are excluded from computation.
func validSample(v, nodata, maxSample float64) bool {
	if v == nodata {
		return false
	}
	return v > 0 && v < maxSample
}
