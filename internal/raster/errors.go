package raster

import "fmt"

// GeometryMismatchError reports rasters whose grids cannot be combined in one
// operation. It is fatal and raised before any output is written; inputs are
// never silently reprojected.
type GeometryMismatchError struct {
	Reason string
}

func (e *GeometryMismatchError) Error() string {
	return "geometry mismatch: " + e.Reason
}

// BlockIOError wraps a read or write failure for a single block window. The
// pass records it and continues unless configured fail-fast.
type BlockIOError struct {
	Op     string // "read" or "write"
	Path   string
	Band   int
	X, Y   int
	Width  int
	Height int
	Err    error
}

func (e *BlockIOError) Error() string {
	return fmt.Sprintf("block %s %s band %d window %dx%d@%d,%d: %v",
		e.Op, e.Path, e.Band, e.Width, e.Height, e.X, e.Y, e.Err)
}

func (e *BlockIOError) Unwrap() error {
	return e.Err
}

// InvalidConfigurationError reports a malformed zone or index reference. It
// is fatal at validation time, before any block is processed.
type InvalidConfigurationError struct {
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}
