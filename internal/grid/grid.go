package grid

import (
	"fmt"
	"iter"
)

// Block is a rectangular sub-window of a raster, the unit of bounded-memory
// processing. X/Y are the pixel offsets of the top-left corner.
type Block struct {
	Row, Col int
	X, Y     int
	Width    int
	Height   int
}

func (b Block) Pixels() int {
	return b.Width * b.Height
}

func (b Block) String() string {
	return fmt.Sprintf("block(%d,%d %dx%d@%d,%d)", b.Row, b.Col, b.Width, b.Height, b.X, b.Y)
}

// Tiling partitions a raster extent into fixed-size square tiles. Edge tiles
// are truncated to the extent, so the blocks cover the raster exactly once
// with no gaps and no overlaps.
type Tiling struct {
	Width    int
	Height   int
	TileSize int
}

func NewTiling(width, height, tileSize int) (Tiling, error) {
	if width <= 0 || height <= 0 {
		return Tiling{}, fmt.Errorf("invalid raster extent %dx%d", width, height)
	}
	if tileSize <= 0 {
		return Tiling{}, fmt.Errorf("invalid tile size %d", tileSize)
	}
	return Tiling{Width: width, Height: height, TileSize: tileSize}, nil
}

func (t Tiling) Rows() int {
	return (t.Height + t.TileSize - 1) / t.TileSize
}

func (t Tiling) Cols() int {
	return (t.Width + t.TileSize - 1) / t.TileSize
}

func (t Tiling) Count() int {
	return t.Rows() * t.Cols()
}

func (t Tiling) Block(row, col int) Block {
	b := Block{
		Row:    row,
		Col:    col,
		X:      col * t.TileSize,
		Y:      row * t.TileSize,
		Width:  t.TileSize,
		Height: t.TileSize,
	}
	if b.X+b.Width > t.Width {
		b.Width = t.Width - b.X
	}
	if b.Y+b.Height > t.Height {
		b.Height = t.Height - b.Y
	}
	return b
}

// Blocks yields the covering tiling in row-major order. The sequence is
// restartable: ranging over it again produces the same blocks.
func (t Tiling) Blocks() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for row := 0; row < t.Rows(); row++ {
			for col := 0; col < t.Cols(); col++ {
				if !yield(t.Block(row, col)) {
					return
				}
			}
		}
	}
}
