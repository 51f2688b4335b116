package raster

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/airbusgeo/godal"
)

const (
	// SourceNoData is the sentinel marking invalid pixels in unsigned
	// integer products, following the IGN ortho collar convention.
	SourceNoData = 0

	// FloatNoData is the sentinel marking invalid pixels in float32 index
	// products.
	FloatNoData = -9999.0
)

var gdalMu sync.Mutex

// WithLock serializes access to the GDAL library. Dataset handles are not
// safe for concurrent use, so every read or write issued from a worker must
// go through here.
func WithLock(fn func()) {
	gdalMu.Lock()
	defer gdalMu.Unlock()
	fn()
}

// Profile is the geometry and sample layout of a dataset: everything two
// rasters must agree on before they can be combined.
type Profile struct {
	Width        int
	Height       int
	Bands        int
	DataType     godal.DataType
	GeoTransform [6]float64
	Projection   string
	NoData       *float64
}

func ReadProfile(ds *godal.Dataset) (Profile, error) {
	st := ds.Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		return Profile{}, fmt.Errorf("failed to get geotransform: %w", err)
	}

	p := Profile{
		Width:        st.SizeX,
		Height:       st.SizeY,
		Bands:        st.NBands,
		DataType:     st.DataType,
		GeoTransform: gt,
		Projection:   ds.Projection(),
	}
	if st.NBands > 0 {
		if nd, ok := ds.Bands()[0].NoData(); ok {
			p.NoData = &nd
		}
	}
	return p, nil
}

// Resolution is the pixel width in CRS units.
func (p Profile) Resolution() float64 {
	return p.GeoTransform[1]
}

// PixelArea is the ground surface of one pixel in CRS units squared.
func (p Profile) PixelArea() float64 {
	return math.Abs(p.GeoTransform[1] * p.GeoTransform[5])
}

// NoDataValue returns the declared no-data sentinel, falling back to
// SourceNoData when the dataset declares none.
func (p Profile) NoDataValue() float64 {
	if p.NoData != nil {
		return *p.NoData
	}
	return SourceNoData
}

// MaxSample is the maximum representable value for the profile's unsigned
// sample type, used as the normalization denominator.
func (p Profile) MaxSample() (float64, error) {
	switch p.DataType {
	case godal.Byte:
		return 255, nil
	case godal.UInt16:
		return 65535, nil
	default:
		return 0, fmt.Errorf("unsupported sample type %s, expected unsigned integer", p.DataType)
	}
}

const transformTolerance = 1e-6

// SameGeometry verifies that two rasters share extent, transform and
// coordinate reference exactly. Any difference is a hard error.
func SameGeometry(a, b Profile) error {
	if a.Width != b.Width || a.Height != b.Height {
		return &GeometryMismatchError{
			Reason: fmt.Sprintf("extent %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height),
		}
	}
	for i := range a.GeoTransform {
		if math.Abs(a.GeoTransform[i]-b.GeoTransform[i]) > transformTolerance {
			return &GeometryMismatchError{
				Reason: fmt.Sprintf("geotransform term %d: %g vs %g", i, a.GeoTransform[i], b.GeoTransform[i]),
			}
		}
	}
	if a.Projection != b.Projection {
		return &GeometryMismatchError{Reason: "coordinate reference differs"}
	}
	return nil
}

// OpenRead opens a dataset read-only, downgrading GDAL warnings the way the
// driver emits them for partially written TIFF directories.
func OpenRead(path string) (*godal.Dataset, error) {
	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec <= godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal: %s", msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return ds, nil
}

// CreateGTiff creates a tiled, compressed, BIGTIFF-capable GeoTIFF carrying
// the geometry of the profile. Integer outputs get DEFLATE with a horizontal
// predictor, float outputs plain LZW, matching the upstream products.
func CreateGTiff(path string, p Profile, tileSize int) (*godal.Dataset, error) {
	opts := []string{
		"TILED=YES",
		fmt.Sprintf("BLOCKXSIZE=%d", tileBlockSize(tileSize)),
		fmt.Sprintf("BLOCKYSIZE=%d", tileBlockSize(tileSize)),
		"BIGTIFF=IF_SAFER",
	}
	switch p.DataType {
	case godal.Float32, godal.Float64:
		opts = append(opts, "COMPRESS=LZW")
	default:
		opts = append(opts, "COMPRESS=DEFLATE", "PREDICTOR=2")
	}

	ds, err := godal.Create(godal.GTiff, path, p.Bands, p.DataType, p.Width, p.Height,
		godal.CreationOption(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := ds.SetGeoTransform(p.GeoTransform); err != nil {
		ds.Close()
		return nil, fmt.Errorf("failed to set geotransform on %s: %w", path, err)
	}
	if p.Projection != "" {
		if err := ds.SetProjection(p.Projection); err != nil {
			ds.Close()
			return nil, fmt.Errorf("failed to set projection on %s: %w", path, err)
		}
	}
	if p.NoData != nil {
		for _, band := range ds.Bands() {
			if err := band.SetNoData(*p.NoData); err != nil {
				ds.Close()
				return nil, fmt.Errorf("failed to set nodata on %s: %w", path, err)
			}
		}
	}
	return ds, nil
}

// GTiff block sizes must be multiples of 16.
func tileBlockSize(tileSize int) int {
	if tileSize < 16 {
		return 16
	}
	return tileSize - tileSize%16
}

// FormatResolution renders a resolution for file naming, without trailing
// zeros: 2.0 -> "2", 0.5 -> "0.5".
func FormatResolution(res float64) string {
	return strconv.FormatFloat(res, 'f', -1, 64)
}
