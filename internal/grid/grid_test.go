package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTiling(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-positive extent", func(t *testing.T) {
		t.Parallel()
		_, err := NewTiling(0, 100, 64)
		assert.Error(t, err)
		_, err = NewTiling(100, -1, 64)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive tile size", func(t *testing.T) {
		t.Parallel()
		_, err := NewTiling(100, 100, 0)
		assert.Error(t, err)
	})

	t.Run("counts rows and columns with partial edges", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(1000, 700, 256)
		require.NoError(t, err)
		assert.Equal(t, 3, tiling.Rows())
		assert.Equal(t, 4, tiling.Cols())
		assert.Equal(t, 12, tiling.Count())
	})

	t.Run("single tile when tile size exceeds extent", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(100, 50, 512)
		require.NoError(t, err)
		assert.Equal(t, 1, tiling.Count())
		b := tiling.Block(0, 0)
		assert.Equal(t, 100, b.Width)
		assert.Equal(t, 50, b.Height)
	})
}

func TestTilingBlocks(t *testing.T) {
	t.Parallel()

	t.Run("covers the extent exactly once", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(1000, 700, 256)
		require.NoError(t, err)

		covered := make([]bool, 1000*700)
		for b := range tiling.Blocks() {
			for y := b.Y; y < b.Y+b.Height; y++ {
				for x := b.X; x < b.X+b.Width; x++ {
					idx := y*1000 + x
					require.False(t, covered[idx], "pixel %d,%d covered twice", x, y)
					covered[idx] = true
				}
			}
		}
		for i, c := range covered {
			require.True(t, c, "pixel index %d never covered", i)
		}
	})

	t.Run("edge blocks are truncated", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(1000, 700, 256)
		require.NoError(t, err)

		b := tiling.Block(2, 3)
		assert.Equal(t, 1000-3*256, b.Width)
		assert.Equal(t, 700-2*256, b.Height)
		assert.Equal(t, 3*256, b.X)
		assert.Equal(t, 2*256, b.Y)
	})

	t.Run("row-major order", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(512, 512, 256)
		require.NoError(t, err)

		var got []Block
		for b := range tiling.Blocks() {
			got = append(got, b)
		}
		require.Len(t, got, 4)
		assert.Equal(t, Block{Row: 0, Col: 0, X: 0, Y: 0, Width: 256, Height: 256}, got[0])
		assert.Equal(t, Block{Row: 0, Col: 1, X: 256, Y: 0, Width: 256, Height: 256}, got[1])
		assert.Equal(t, Block{Row: 1, Col: 0, X: 0, Y: 256, Width: 256, Height: 256}, got[2])
		assert.Equal(t, Block{Row: 1, Col: 1, X: 256, Y: 256, Width: 256, Height: 256}, got[3])
	})

	t.Run("sequence is restartable", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(300, 300, 128)
		require.NoError(t, err)

		var first, second []Block
		for b := range tiling.Blocks() {
			first = append(first, b)
		}
		for b := range tiling.Blocks() {
			second = append(second, b)
		}
		assert.Equal(t, first, second)
	})

	t.Run("early break stops iteration", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(1000, 1000, 100)
		require.NoError(t, err)

		n := 0
		for range tiling.Blocks() {
			n++
			if n == 3 {
				break
			}
		}
		assert.Equal(t, 3, n)
	})
}

func TestBlockPixels(t *testing.T) {
	t.Parallel()
	b := Block{Width: 256, Height: 100}
	assert.Equal(t, 25600, b.Pixels())
}
