package raster

import (
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() Profile {
	return Profile{
		Width:        1000,
		Height:       700,
		Bands:        3,
		DataType:     godal.UInt16,
		GeoTransform: [6]float64{950000, 0.2, 0, 6540000, 0, -0.2},
		Projection:   `PROJCS["RGF93 v1 / Lambert-93"]`,
	}
}

func TestProfileGeometry(t *testing.T) {
	t.Parallel()

	p := testProfile()
	assert.Equal(t, 0.2, p.Resolution())
	assert.InDelta(t, 0.04, p.PixelArea(), 1e-12)
}

func TestProfileNoDataValue(t *testing.T) {
	t.Parallel()

	p := testProfile()
	assert.Equal(t, float64(SourceNoData), p.NoDataValue())

	nd := 42.0
	p.NoData = &nd
	assert.Equal(t, 42.0, p.NoDataValue())
}

func TestProfileMaxSample(t *testing.T) {
	t.Parallel()

	p := testProfile()
	p.DataType = godal.Byte
	v, err := p.MaxSample()
	require.NoError(t, err)
	assert.Equal(t, 255.0, v)

	p.DataType = godal.UInt16
	v, err = p.MaxSample()
	require.NoError(t, err)
	assert.Equal(t, 65535.0, v)

	p.DataType = godal.Float32
	_, err = p.MaxSample()
	assert.Error(t, err)
}

func TestSameGeometry(t *testing.T) {
	t.Parallel()

	t.Run("identical profiles match", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, SameGeometry(testProfile(), testProfile()))
	})

	t.Run("band count difference is not a geometry mismatch", func(t *testing.T) {
		t.Parallel()
		b := testProfile()
		b.Bands = 4
		assert.NoError(t, SameGeometry(testProfile(), b))
	})

	t.Run("extent mismatch", func(t *testing.T) {
		t.Parallel()
		b := testProfile()
		b.Width = 999
		var gmErr *GeometryMismatchError
		assert.ErrorAs(t, SameGeometry(testProfile(), b), &gmErr)
	})

	t.Run("transform mismatch beyond tolerance", func(t *testing.T) {
		t.Parallel()
		b := testProfile()
		b.GeoTransform[0] += 1
		var gmErr *GeometryMismatchError
		assert.ErrorAs(t, SameGeometry(testProfile(), b), &gmErr)
	})

	t.Run("transform difference within tolerance matches", func(t *testing.T) {
		t.Parallel()
		b := testProfile()
		b.GeoTransform[0] += 1e-9
		assert.NoError(t, SameGeometry(testProfile(), b))
	})

	t.Run("projection mismatch", func(t *testing.T) {
		t.Parallel()
		b := testProfile()
		b.Projection = `PROJCS["WGS 84 / UTM zone 31N"]`
		var gmErr *GeometryMismatchError
		assert.ErrorAs(t, SameGeometry(testProfile(), b), &gmErr)
	})
}

func TestTileBlockSize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 512, tileBlockSize(512))
	assert.Equal(t, 496, tileBlockSize(500))
	assert.Equal(t, 16, tileBlockSize(1))
	assert.Equal(t, 16, tileBlockSize(16))
}

func TestFormatResolution(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "2", FormatResolution(2.0))
	assert.Equal(t, "0.5", FormatResolution(0.5))
	assert.Equal(t, "0.2", FormatResolution(0.2))
}
