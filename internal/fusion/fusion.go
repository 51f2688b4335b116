package fusion

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/airbusgeo/godal"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/grid"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/raster"
)

type Options struct {
	TargetResolution float64
	EPSG             int
	Department       string
	OutputDir        string
	TileSize         int
	Workers          int
	MemoryBudget     int64
	FailFast         bool
	Progress         bool
}

// OutputName follows the upstream ortho product naming, e.g.
// ORTHO_RGBNIR_2m_EPSG2154_D74.tif.
func OutputName(resolution float64, epsg int, department string) string {
	return fmt.Sprintf("ORTHO_RGBNIR_%sm_EPSG%d_D%s.tif",
		raster.FormatResolution(resolution), epsg, department)
}

// Fuse merges a visible RGB source and a false-color IRC (NIR-Red-Green)
// source into one 4-band NIR/R/G/B raster at the target resolution. Both
// inputs are resampled bilinearly when their native resolution differs from
// the target; after resampling their geometry must match exactly or the
// fusion aborts before any output is created.
func Fuse(ctx context.Context, visiblePath, infraredPath string, opts Options) (string, grid.PassResult, error) {
	var pass grid.PassResult

	visible, err := raster.OpenRead(visiblePath)
	if err != nil {
		return "", pass, err
	}
	defer visible.Close()

	infrared, err := raster.OpenRead(infraredPath)
	if err != nil {
		return "", pass, err
	}
	defer infrared.Close()

	visible, closeVis, err := resampleTo(visible, opts.TargetResolution)
	if err != nil {
		return "", pass, fmt.Errorf("failed to resample visible source: %w", err)
	}
	defer closeVis()

	infrared, closeIrc, err := resampleTo(infrared, opts.TargetResolution)
	if err != nil {
		return "", pass, fmt.Errorf("failed to resample infrared source: %w", err)
	}
	defer closeIrc()

	visProfile, err := raster.ReadProfile(visible)
	if err != nil {
		return "", pass, err
	}
	ircProfile, err := raster.ReadProfile(infrared)
	if err != nil {
		return "", pass, err
	}
	if visProfile.Bands != 3 || ircProfile.Bands != 3 {
		return "", pass, fmt.Errorf("expected two 3-band sources, got %d and %d bands",
			visProfile.Bands, ircProfile.Bands)
	}
	if err := raster.SameGeometry(visProfile, ircProfile); err != nil {
		return "", pass, err
	}

	// Bit depth is preserved; 8-bit sources are widened with the 0-255 to
	// 0-65535 linear scale applied upstream, never rescaled radiometrically.
	visScale, err := sampleScale(visProfile.DataType)
	if err != nil {
		return "", pass, fmt.Errorf("visible source: %w", err)
	}
	ircScale, err := sampleScale(ircProfile.DataType)
	if err != nil {
		return "", pass, fmt.Errorf("infrared source: %w", err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", pass, fmt.Errorf("failed to create output directory: %w", err)
	}
	outPath := filepath.Join(opts.OutputDir, OutputName(opts.TargetResolution, opts.EPSG, opts.Department))

	nodata := float64(raster.SourceNoData)
	outProfile := visProfile
	outProfile.Bands = 4
	outProfile.DataType = godal.UInt16
	outProfile.NoData = &nodata

	out, err := raster.CreateGTiff(outPath, outProfile, opts.TileSize)
	if err != nil {
		return "", pass, err
	}

	tiling, err := grid.NewTiling(outProfile.Width, outProfile.Height, opts.TileSize)
	if err != nil {
		out.Close()
		return "", pass, err
	}

	visBands := visible.Bands()
	ircBands := infrared.Bands()
	outBands := out.Bands()
	visNoData := uint16(visProfile.NoDataValue())
	ircNoData := uint16(ircProfile.NoDataValue())

	label := ""
	if opts.Progress {
		label = "Fusing RGB and IRC bands"
	}
	// Three visible bands, one infrared band and four output bands, all uint16.
	sched := grid.NewScheduler(opts.Workers, int64(opts.TileSize*opts.TileSize)*8*2, label)
	sched.MemoryBudget = opts.MemoryBudget
	sched.FailFast = opts.FailFast

	pass, err = sched.Run(ctx, tiling, func(b grid.Block) error {
		n := b.Pixels()
		vis := [3][]uint16{make([]uint16, n), make([]uint16, n), make([]uint16, n)}
		nir := make([]uint16, n)

		for i := 0; i < 3; i++ {
			var readErr error
			raster.WithLock(func() {
				readErr = visBands[i].Read(b.X, b.Y, vis[i], b.Width, b.Height)
			})
			if readErr != nil {
				return &raster.BlockIOError{Op: "read", Path: visiblePath, Band: i + 1,
					X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Err: readErr}
			}
		}
		// Only IRC band 1 (NIR) feeds the output; bands 2 and 3 duplicate the
		// visible red and green.
		var readErr error
		raster.WithLock(func() {
			readErr = ircBands[0].Read(b.X, b.Y, nir, b.Width, b.Height)
		})
		if readErr != nil {
			return &raster.BlockIOError{Op: "read", Path: infraredPath, Band: 1,
				X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Err: readErr}
		}

		outBufs := fuseBlock(vis, nir, visNoData, ircNoData, visScale, ircScale)

		var writeErr error
		raster.WithLock(func() {
			for i := range outBufs {
				if writeErr = outBands[i].Write(b.X, b.Y, outBufs[i], b.Width, b.Height); writeErr != nil {
					return
				}
			}
		})
		if writeErr != nil {
			return &raster.BlockIOError{Op: "write", Path: outPath, Band: 0,
				X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Err: writeErr}
		}
		return nil
	})

	out.Close()
	if err != nil {
		os.Remove(outPath)
		return "", pass, err
	}
	return outPath, pass, nil
}

// fuseBlock merges one block of visible RGB samples and IRC NIR samples into
// the four output bands, ordered 1=NIR, 2=Red, 3=Green, 4=Blue. A no-data
// sample in either source makes the pixel no-data on every output band.
func fuseBlock(vis [3][]uint16, nir []uint16, visNoData, ircNoData, visScale, ircScale uint16) [4][]uint16 {
	n := len(nir)
	out := [4][]uint16{make([]uint16, n), make([]uint16, n), make([]uint16, n), make([]uint16, n)}
	for p := 0; p < n; p++ {
		if nir[p] == ircNoData || vis[0][p] == visNoData ||
			vis[1][p] == visNoData || vis[2][p] == visNoData {
			for i := range out {
				out[i][p] = raster.SourceNoData
			}
			continue
		}
		out[0][p] = widen(nir[p], ircScale)
		out[1][p] = widen(vis[0][p], visScale)
		out[2][p] = widen(vis[1][p], visScale)
		out[3][p] = widen(vis[2][p], visScale)
	}
	return out
}

// resampleTo returns the dataset itself when it is already at the target
// resolution, or a bilinear VRT over it otherwise. The VRT materializes
// nothing; pixels are resampled lazily as blocks are read.
func resampleTo(ds *godal.Dataset, resolution float64) (*godal.Dataset, func(), error) {
	if resolution <= 0 {
		return nil, nil, fmt.Errorf("invalid target resolution %g", resolution)
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get geotransform: %w", err)
	}
	if math.Abs(gt[1]-resolution) < 1e-9 && math.Abs(-gt[5]-resolution) < 1e-9 {
		return ds, func() {}, nil
	}

	res := strconv.FormatFloat(resolution, 'f', -1, 64)
	var vrt *godal.Dataset
	raster.WithLock(func() {
		vrt, err = ds.Translate("", []string{
			"-of", "VRT",
			"-tr", res, res,
			"-r", "bilinear",
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return vrt, func() { vrt.Close() }, nil
}

func sampleScale(dt godal.DataType) (uint16, error) {
	switch dt {
	case godal.Byte:
		return 257, nil // 0-255 -> 0-65535
	case godal.UInt16:
		return 1, nil
	default:
		return 0, fmt.Errorf("unsupported sample type, expected Byte or UInt16")
	}
}

func widen(v uint16, scale uint16) uint16 {
	return v * scale
}
