package indices

import (
	"testing"

	"github.com/ortho-guardian/ortho-guardian-cli/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxSample = 65535.0

func computeTestBlock(t *testing.T, nir, red, green, blue []uint16) ([][]float32, []*Accumulator, int64, int64) {
	t.Helper()
	fields := make([][]float32, len(All()))
	for i := range fields {
		fields[i] = make([]float32, len(nir))
	}
	var stats []*Accumulator
	for _, idx := range All() {
		stats = append(stats, NewAccumulator(idx))
	}
	valid, masked := computeBlock(nir, red, green, blue, raster.SourceNoData, testMaxSample, fields, stats)
	return fields, stats, valid, masked
}

func TestComputeBlock(t *testing.T) {
	t.Parallel()

	t.Run("no-data in any band blanks every index output", func(t *testing.T) {
		t.Parallel()
		for band := 0; band < 4; band++ {
			bufs := [4][]uint16{{20000, 20000}, {10000, 10000}, {5000, 5000}, {2500, 2500}}
			bufs[band][0] = raster.SourceNoData

			fields, stats, valid, masked := computeTestBlock(t, bufs[0], bufs[1], bufs[2], bufs[3])
			assert.Equal(t, int64(1), valid, "band %d", band+1)
			assert.Equal(t, int64(1), masked, "band %d", band+1)
			for i, idx := range All() {
				assert.Equal(t, float32(raster.FloatNoData), fields[i][0], "band %d, %s", band+1, idx)
				assert.NotEqual(t, float32(raster.FloatNoData), fields[i][1], "band %d, %s", band+1, idx)
				assert.Equal(t, int64(1), stats[i].Count, "band %d, %s", band+1, idx)
			}
		}
	})

	t.Run("saturated samples are masked and excluded from statistics", func(t *testing.T) {
		t.Parallel()
		fields, stats, valid, masked := computeTestBlock(t,
			[]uint16{65535}, []uint16{10000}, []uint16{5000}, []uint16{2500})
		assert.Equal(t, int64(0), valid)
		assert.Equal(t, int64(1), masked)
		for i, idx := range All() {
			assert.Equal(t, float32(raster.FloatNoData), fields[i][0], "%s", idx)
			assert.Equal(t, int64(0), stats[i].Count, "%s", idx)
		}
	})

	t.Run("valid pixels match direct evaluation", func(t *testing.T) {
		t.Parallel()
		fields, stats, valid, masked := computeTestBlock(t,
			[]uint16{20000}, []uint16{10000}, []uint16{5000}, []uint16{2500})
		require.Equal(t, int64(1), valid)
		require.Equal(t, int64(0), masked)

		r := 10000 / testMaxSample
		g := 5000 / testMaxSample
		b := 2500 / testMaxSample
		ni := 20000 / testMaxSample
		for i, idx := range All() {
			want := idx.Evaluate(r, g, b, ni)
			assert.Equal(t, float32(want), fields[i][0], "%s", idx)
			assert.Equal(t, int64(1), stats[i].Count, "%s", idx)
			assert.InDelta(t, want, stats[i].Sum, 1e-12, "%s", idx)
		}
	})

	t.Run("tallies partition the block", func(t *testing.T) {
		t.Parallel()
		nir := []uint16{20000, 0, 20000, 65535, 20000, 20000}
		red := []uint16{10000, 10000, 0, 10000, 10000, 10000}
		green := []uint16{5000, 5000, 5000, 5000, 5000, 5000}
		blue := []uint16{2500, 2500, 2500, 2500, 2500, 2500}

		_, stats, valid, masked := computeTestBlock(t, nir, red, green, blue)
		assert.Equal(t, int64(3), valid)
		assert.Equal(t, int64(3), masked)
		assert.Equal(t, int64(len(nir)), valid+masked)
		for i := range stats {
			assert.Equal(t, valid, stats[i].Count)
		}
	})
}

func TestValidSample(t *testing.T) {
	t.Parallel()

	assert.True(t, validSample(1, 0, 65535))
	assert.True(t, validSample(65534, 0, 65535))
	assert.False(t, validSample(0, 0, 65535), "no-data sentinel")
	assert.False(t, validSample(65535, 0, 65535), "saturated sample")
	assert.False(t, validSample(32768, 32768, 65535), "declared sentinel inside the range")
}
