package output

import (
	"fmt"

	"github.com/fogleman/gg"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/raster"
	"github.com/ortho-guardian/ortho-guardian-cli/internal/thematic"
)

const previewMaxDim = 1024

// CreateMaskPreview renders a thematic mask raster to a small PNG: detected
// pixels green, everything else dark gray. Large masks are decimated by
// row-wise nearest sampling so the preview never loads the full raster.
func CreateMaskPreview(maskPath, outputPath string) error {
	ds, err := raster.OpenRead(maskPath)
	if err != nil {
		return err
	}
	defer ds.Close()

	st := ds.Structure()
	step := 1
	for (st.SizeX+step-1)/step > previewMaxDim || (st.SizeY+step-1)/step > previewMaxDim {
		step++
	}
	outW := (st.SizeX + step - 1) / step
	outH := (st.SizeY + step - 1) / step

	band := ds.Bands()[0]
	row := make([]byte, st.SizeX)

	dc := gg.NewContext(outW, outH)
	for y := 0; y < outH; y++ {
		srcY := y * step
		var readErr error
		raster.WithLock(func() {
			readErr = band.Read(0, srcY, row, st.SizeX, 1)
		})
		if readErr != nil {
			return fmt.Errorf("failed to read mask row %d: %w", srcY, readErr)
		}
		for x := 0; x < outW; x++ {
			if row[x*step] == thematic.Detected {
				dc.SetRGB(0.13, 0.70, 0.30)
			} else {
				dc.SetRGB(0.15, 0.15, 0.15)
			}
			dc.SetPixel(x, y)
		}
	}

	if err := dc.SavePNG(outputPath); err != nil {
		return fmt.Errorf("failed to save preview: %w", err)
	}

	fmt.Printf("Mask preview saved to: %s (%dx%d, 1:%d)\n", outputPath, outW, outH, step)
	return nil
}
